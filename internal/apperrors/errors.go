package apperrors

import "errors"

// Domain entity errors represent missing entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrDepositNotFound indicates that a security deposit with the given ID does not exist.
	ErrDepositNotFound = errors.New("security deposit not found")

	// ErrPoolNotFound indicates that an investment pool record does not exist.
	ErrPoolNotFound = errors.New("investment pool not found")

	// ErrDividendNotFound indicates that a dividend record with the given ID does not exist.
	ErrDividendNotFound = errors.New("dividend not found")

	// ErrLeaseNotFound indicates that a lease with the given ID does not exist.
	ErrLeaseNotFound = errors.New("lease not found")

	// ErrOrganizationNotFound indicates that an organization with the given ID does not exist.
	ErrOrganizationNotFound = errors.New("organization not found")
)

// Business logic errors represent validation failures or constraint violations.
// These errors indicate that an operation cannot be completed due to business rules.
var (
	// ErrDepositExists indicates that a non-deleted deposit already exists for the lease.
	ErrDepositExists = errors.New("security deposit already exists for lease")

	// ErrDepositAlreadyRefunded indicates a refund was attempted on a deposit
	// that has already been settled. Refunds are strictly one-shot.
	ErrDepositAlreadyRefunded = errors.New("security deposit already refunded")

	// ErrMissingTenant indicates no tenant could be resolved at collection time,
	// neither from the explicit parameter nor from the lease.
	ErrMissingTenant = errors.New("no tenant associated with lease")

	// ErrPoolClosed indicates an operation was attempted on a closed pool.
	ErrPoolClosed = errors.New("investment pool is closed")

	// ErrDividendAlreadySettled indicates a choice or payment was attempted on
	// a dividend that is already Applied or Paid. Transitions never revert.
	ErrDividendAlreadySettled = errors.New("dividend already settled")

	// ErrMissingOrganization indicates the caller supplied no organization scope.
	ErrMissingOrganization = errors.New("organization context is required")

	// ErrInvalidUUID indicates that a provided ID is not a valid UUID format.
	ErrInvalidUUID = errors.New("invalid UUID format")

	// ErrNegativeAmount indicates that an amount field has an invalid negative value.
	ErrNegativeAmount = errors.New("amount cannot be negative")
)

// Operation failure errors represent system-level failures when retrieving or
// processing data, not missing entities or validation issues.
var (
	ErrFailedToRetrieveDeposits  = errors.New("failed to retrieve security deposits")
	ErrFailedToRetrieveDeposit   = errors.New("failed to retrieve security deposit")
	ErrFailedToRetrievePools     = errors.New("failed to retrieve investment pools")
	ErrFailedToRetrievePool      = errors.New("failed to retrieve investment pool")
	ErrFailedToRetrieveDividends = errors.New("failed to retrieve dividends")
	ErrFailedToCalculate         = errors.New("failed to calculate dividends")
	ErrFailedToProcessRefund     = errors.New("failed to process refund")
)
