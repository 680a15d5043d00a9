package validation

import (
	"strings"
	"time"

	"github.com/rentpool/Deposit-Pool-Backend/internal/api/request"
)

// ValidateCollectDeposit validates a deposit collection request.
//
// Required fields:
//   - leaseId: Must be a valid UUID
//   - amount: Must be positive
//   - paymentMethod: Must be present
//
// Optional fields (validated if provided):
//   - tenantId: Must be a valid UUID
//   - dateReceived: Must be in YYYY-MM-DD format
//
// Returns a validation Error with field-specific error messages if validation fails.
func ValidateCollectDeposit(req request.CollectDepositRequest) error {
	errors := make(map[string]string)

	if err := ValidateUUID(req.LeaseID); err != nil {
		return err
	}

	if req.TenantID != "" {
		if err := ValidateUUID(req.TenantID); err != nil {
			return err
		}
	}

	if req.Amount <= 0.0 {
		errors["amount"] = "amount must be positive"
	}

	if strings.TrimSpace(req.PaymentMethod) == "" {
		errors["paymentMethod"] = "paymentMethod is required"
	}

	if req.DateReceived != "" {
		_, err := time.Parse("2006-01-02", req.DateReceived)
		if err != nil {
			errors["dateReceived"] = err.Error()
		}
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

// ValidateProcessRefund validates a refund settlement request.
//
// Required fields:
//   - refundMethod: Must be present
//
// Deductions must not be negative.
func ValidateProcessRefund(req request.ProcessRefundRequest) error {
	errors := make(map[string]string)

	if req.DeductionsAmount < 0.0 {
		errors["deductionsAmount"] = "deductionsAmount cannot be negative"
	}

	if strings.TrimSpace(req.RefundMethod) == "" {
		errors["refundMethod"] = "refundMethod is required"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}
