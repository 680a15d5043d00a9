package request

// CollectDepositRequest represents the request body for recording a newly
// collected security deposit. TenantID is optional; when omitted the tenant
// is resolved from the lease.
type CollectDepositRequest struct {
	LeaseID              string  `json:"leaseId"`
	TenantID             string  `json:"tenantId,omitempty"`
	Amount               float64 `json:"amount"`
	DateReceived         string  `json:"dateReceived,omitempty"`
	PaymentMethod        string  `json:"paymentMethod"`
	TransactionReference string  `json:"transactionReference,omitempty"`
}

// ProcessRefundRequest represents the request body for the one-shot refund
// settlement of a deposit.
type ProcessRefundRequest struct {
	DeductionsAmount float64 `json:"deductionsAmount"`
	DeductionsReason string  `json:"deductionsReason,omitempty"`
	RefundMethod     string  `json:"refundMethod"`
	RefundReference  string  `json:"refundReference,omitempty"`
}
