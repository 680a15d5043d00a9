package model

import "time"

// DefaultOrgSharePercent is the share of pool earnings the organization keeps
// when it has not configured its own percentage.
const DefaultOrgSharePercent = 20.0

// Organization holds the per-organization settings this subsystem reads:
// the pool earnings split and the default dividend payout method.
type Organization struct {
	ID                   string    `json:"id"`
	Name                 string    `json:"name"`
	SharePercent         float64   `json:"sharePercent"`
	DefaultPayoutMethod  string    `json:"defaultPayoutMethod"`
	CreatedAt            time.Time `json:"createdAt"`
}

// EffectiveSharePercent returns the configured split or the default.
func (o *Organization) EffectiveSharePercent() float64 {
	if o.SharePercent <= 0 {
		return DefaultOrgSharePercent
	}
	return o.SharePercent
}

// EffectivePayoutMethod returns the configured default payout method,
// falling back to lease credit.
func (o *Organization) EffectivePayoutMethod() string {
	if o.DefaultPayoutMethod == "" {
		return PaymentMethodLeaseCredit
	}
	return o.DefaultPayoutMethod
}
