package model

import "time"

// LeaseStatus mirrors the lease lifecycle states this subsystem cares about.
type LeaseStatus string

const (
	LeaseStatusActive LeaseStatus = "ACTIVE"
	LeaseStatusEnded  LeaseStatus = "ENDED"
)

// Lease is a minimal mirror of the lease records owned by the leasing
// subsystem. Only the fields needed for tenant resolution and the
// "lease has ended" predicate are carried here.
type Lease struct {
	ID             string      `json:"id"`
	OrganizationID string      `json:"organizationId"`
	TenantID       string      `json:"tenantId"`
	Unit           string      `json:"unit"`
	StartDate      time.Time   `json:"startDate"`
	EndDate        *time.Time  `json:"endDate,omitempty"`
	Status         LeaseStatus `json:"status"`
}

// Ended reports whether the lease has terminated.
func (l *Lease) Ended(now time.Time) bool {
	if l.Status == LeaseStatusEnded {
		return true
	}
	return l.EndDate != nil && !l.EndDate.After(now)
}

// Tenant is a minimal mirror of the tenant records owned elsewhere;
// names are needed for the per-year dividend listing sort.
type Tenant struct {
	ID             string `json:"id"`
	OrganizationID string `json:"organizationId"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Email          string `json:"email,omitempty"`
}
