package model

import "time"

// DividendStatus tracks the settlement lifecycle of a dividend record.
// Transitions are one-directional: PENDING -> CHOICE_MADE -> APPLIED | PAID.
type DividendStatus string

const (
	DividendStatusPending    DividendStatus = "PENDING"
	DividendStatusChoiceMade DividendStatus = "CHOICE_MADE"
	DividendStatusApplied    DividendStatus = "APPLIED"
	DividendStatusPaid       DividendStatus = "PAID"
)

// Dividend payout methods. PaymentMethodPending marks a dividend whose tenant
// has not chosen a payout method yet.
const (
	PaymentMethodPending       = "PENDING"
	PaymentMethodLeaseCredit   = "LEASE_CREDIT"
	PaymentMethodCheck         = "CHECK"
	PaymentMethodDirectDeposit = "DIRECT_DEPOSIT"
)

// SecurityDepositDividend is one deposit's prorated share of one year's pool
// earnings. Unique per (deposit, year); recalculation is an idempotent no-op.
type SecurityDepositDividend struct {
	ID               string         `json:"id"`
	OrganizationID   string         `json:"organizationId"`
	DepositID        string         `json:"depositId"`
	PoolID           string         `json:"poolId"`
	LeaseID          string         `json:"leaseId"`
	TenantID         string         `json:"tenantId"`
	Year             int            `json:"year"`
	BaseAmount       float64        `json:"baseAmount"`
	ProrationFactor  float64        `json:"prorationFactor"`
	Amount           float64        `json:"amount"`
	MonthsInPool     int            `json:"monthsInPool"`
	PaymentMethod    string         `json:"paymentMethod"`
	Status           DividendStatus `json:"status"`
	ChoiceAt         *time.Time     `json:"choiceAt,omitempty"`
	PaidAt           *time.Time     `json:"paidAt,omitempty"`
	PaymentReference string         `json:"paymentReference,omitempty"`
	MailingAddress   string         `json:"mailingAddress,omitempty"`
	CreatedBy        string         `json:"createdBy"`
	LastModifiedBy   string         `json:"lastModifiedBy"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
}

// Settled reports whether the dividend has been disbursed or credited.
// Only settled dividends count toward a refund.
func (d *SecurityDepositDividend) Settled() bool {
	return d.Status == DividendStatusApplied || d.Status == DividendStatusPaid
}

// TenantDividend is a dividend enriched with tenant name fields.
// Used by the per-year listing that feeds bulk payout runs.
type TenantDividend struct {
	SecurityDepositDividend
	TenantFirstName string `json:"tenantFirstName"`
	TenantLastName  string `json:"tenantLastName"`
}
