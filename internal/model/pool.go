package model

import "time"

// PoolStatus tracks the year-end lifecycle of an investment pool record.
type PoolStatus string

const (
	PoolStatusOpen       PoolStatus = "OPEN"
	PoolStatusCalculated PoolStatus = "CALCULATED"
	PoolStatusClosed     PoolStatus = "CLOSED"
)

// InvestmentPool aggregates one calendar year of pooled deposit performance
// for an organization, including the earnings split between the organization
// and its tenants. Unique per (organization, year).
type InvestmentPool struct {
	ID               string     `json:"id"`
	OrganizationID   string     `json:"organizationId"`
	Year             int        `json:"year"`
	StartingBalance  float64    `json:"startingBalance"`
	EndingBalance    float64    `json:"endingBalance"`
	TotalEarnings    float64    `json:"totalEarnings"`
	ReturnRate       float64    `json:"returnRate"`
	OrgSharePercent  float64    `json:"orgSharePercent"`
	OrgShare         float64    `json:"orgShare"`
	TenantShareTotal float64    `json:"tenantShareTotal"`
	ActiveLeaseCount int        `json:"activeLeaseCount"`
	DividendPerLease float64    `json:"dividendPerLease"`
	Status           PoolStatus `json:"status"`
	CalculatedAt     *time.Time `json:"calculatedAt,omitempty"`
	DistributedAt    *time.Time `json:"distributedAt,omitempty"`
	CreatedBy        string     `json:"createdBy"`
	LastModifiedBy   string     `json:"lastModifiedBy"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}
