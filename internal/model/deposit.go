package model

import "time"

// DepositStatus tracks the refund lifecycle of a security deposit.
// A deposit is HELD from collection until its one-shot refund settlement.
type DepositStatus string

const (
	DepositStatusHeld              DepositStatus = "HELD"
	DepositStatusPartiallyRefunded DepositStatus = "PARTIALLY_REFUNDED"
	DepositStatusRefunded          DepositStatus = "REFUNDED"
)

// SecurityDeposit represents one tenant security deposit tied to a lease.
// At most one non-deleted deposit exists per lease.
type SecurityDeposit struct {
	ID                   string        `json:"id"`
	OrganizationID       string        `json:"organizationId"`
	LeaseID              string        `json:"leaseId"`
	TenantID             string        `json:"tenantId"`
	Amount               float64       `json:"amount"`
	DateReceived         time.Time     `json:"dateReceived"`
	PaymentMethod        string        `json:"paymentMethod"`
	TransactionReference string        `json:"transactionReference,omitempty"`
	Status               DepositStatus `json:"status"`
	InPool               bool          `json:"inPool"`
	PoolEntryDate        *time.Time    `json:"poolEntryDate,omitempty"`
	PoolExitDate         *time.Time    `json:"poolExitDate,omitempty"`
	RefundAmount         *float64      `json:"refundAmount,omitempty"`
	DeductionsAmount     *float64      `json:"deductionsAmount,omitempty"`
	DeductionsReason     string        `json:"deductionsReason,omitempty"`
	RefundMethod         string        `json:"refundMethod,omitempty"`
	RefundReference      string        `json:"refundReference,omitempty"`
	RefundProcessedDate  *time.Time    `json:"refundProcessedDate,omitempty"`
	CreatedBy            string        `json:"createdBy"`
	LastModifiedBy       string        `json:"lastModifiedBy"`
	CreatedAt            time.Time     `json:"createdAt"`
	UpdatedAt            time.Time     `json:"updatedAt"`
}

// Refundable reports whether the deposit is still awaiting its refund settlement.
func (d *SecurityDeposit) Refundable() bool {
	return d.Status == DepositStatusHeld
}
