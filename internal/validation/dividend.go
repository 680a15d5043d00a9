package validation

import (
	"strings"

	"github.com/rentpool/Deposit-Pool-Backend/internal/api/request"
	"github.com/rentpool/Deposit-Pool-Backend/internal/model"
)

// ValidateRecordChoice validates a dividend payout choice request.
//
// Required fields:
//   - paymentMethod: one of LEASE_CREDIT, CHECK, DIRECT_DEPOSIT
//
// A mailing address is required for check payouts.
func ValidateRecordChoice(req request.RecordChoiceRequest) error {
	errors := make(map[string]string)

	switch req.PaymentMethod {
	case model.PaymentMethodLeaseCredit, model.PaymentMethodDirectDeposit:
	case model.PaymentMethodCheck:
		if strings.TrimSpace(req.MailingAddress) == "" {
			errors["mailingAddress"] = "mailingAddress is required for check payouts"
		}
	default:
		errors["paymentMethod"] = "paymentMethod must be LEASE_CREDIT, CHECK or DIRECT_DEPOSIT"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}
