package validation

import (
	"github.com/rentpool/Deposit-Pool-Backend/internal/api/request"
)

// ValidateRecordPerformance validates a pool performance recording request.
// Balances must not be negative; earnings may be (losses are absorbed by
// the organization downstream).
func ValidateRecordPerformance(req request.RecordPerformanceRequest) error {
	errors := make(map[string]string)

	if req.StartingBalance < 0.0 {
		errors["startingBalance"] = "startingBalance cannot be negative"
	}

	if req.EndingBalance < 0.0 {
		errors["endingBalance"] = "endingBalance cannot be negative"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

// ValidateYear checks that a year parameter is a plausible calendar year.
func ValidateYear(year int) error {
	if year < 1900 || year > 9999 {
		return &Error{Fields: map[string]string{"year": "year must be a four-digit calendar year"}}
	}
	return nil
}
