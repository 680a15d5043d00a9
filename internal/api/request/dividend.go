package request

// RecordChoiceRequest represents the request body for a tenant's dividend
// payout choice. MailingAddress is only meaningful for check payouts.
type RecordChoiceRequest struct {
	PaymentMethod  string `json:"paymentMethod"`
	MailingAddress string `json:"mailingAddress,omitempty"`
}

// ProcessPaymentRequest represents the request body for marking a dividend
// as processed.
type ProcessPaymentRequest struct {
	PaymentReference string `json:"paymentReference,omitempty"`
}
