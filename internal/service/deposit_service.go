package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rentpool/Deposit-Pool-Backend/internal/api/request"
	"github.com/rentpool/Deposit-Pool-Backend/internal/apperrors"
	"github.com/rentpool/Deposit-Pool-Backend/internal/model"
	"github.com/rentpool/Deposit-Pool-Backend/internal/repository"
)

// DepositService owns the security deposit lifecycle: collection, pool
// membership toggles and the one-shot refund settlement.
type DepositService struct {
	depositRepo  *repository.DepositRepository
	leaseRepo    *repository.LeaseRepository
	dividendRepo *repository.DividendRepository
}

// NewDepositService creates a new DepositService with the provided repository dependencies.
func NewDepositService(
	depositRepo *repository.DepositRepository,
	leaseRepo *repository.LeaseRepository,
	dividendRepo *repository.DividendRepository,
) *DepositService {
	return &DepositService{
		depositRepo:  depositRepo,
		leaseRepo:    leaseRepo,
		dividendRepo: dividendRepo,
	}
}

// Collect records a newly collected security deposit for a lease.
//
// Fails when the lease does not exist, when a non-deleted deposit already
// exists for the lease, or when no tenant can be resolved from the explicit
// parameter or the lease. The new deposit starts as HELD with no pool
// membership.
func (s *DepositService) Collect(ctx context.Context, orgID string, req request.CollectDepositRequest, performedBy string) (*model.SecurityDeposit, error) {
	lease, err := s.leaseRepo.GetByID(orgID, req.LeaseID)
	if err != nil {
		return nil, err
	}
	if lease == nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrLeaseNotFound, req.LeaseID)
	}

	existing, err := s.depositRepo.GetByLease(orgID, req.LeaseID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrDepositExists, req.LeaseID)
	}

	tenantID := req.TenantID
	if tenantID == "" {
		tenantID = lease.TenantID
	}
	if tenantID == "" {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrMissingTenant, req.LeaseID)
	}

	dateReceived := time.Now().UTC()
	if req.DateReceived != "" {
		dateReceived, err = time.Parse("2006-01-02", req.DateReceived)
		if err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	deposit := &model.SecurityDeposit{
		ID:                   uuid.New().String(),
		OrganizationID:       orgID,
		LeaseID:              req.LeaseID,
		TenantID:             tenantID,
		Amount:               req.Amount,
		DateReceived:         dateReceived,
		PaymentMethod:        req.PaymentMethod,
		TransactionReference: req.TransactionReference,
		Status:               model.DepositStatusHeld,
		InPool:               false,
		CreatedBy:            performedBy,
		LastModifiedBy:       performedBy,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if err := s.depositRepo.Insert(ctx, deposit); err != nil {
		return nil, fmt.Errorf("failed to collect deposit: %w", err)
	}

	return deposit, nil
}

// EnterPool marks the deposit as a pool member and stamps the entry date.
// Idempotent: a deposit already in the pool is returned unchanged.
func (s *DepositService) EnterPool(ctx context.Context, orgID, depositID, performedBy string) (*model.SecurityDeposit, error) {
	return s.setPoolMembership(ctx, orgID, depositID, performedBy, true)
}

// ExitPool removes the deposit from the pool and stamps the exit date.
// Idempotent: a deposit already outside the pool is returned unchanged.
func (s *DepositService) ExitPool(ctx context.Context, orgID, depositID, performedBy string) (*model.SecurityDeposit, error) {
	return s.setPoolMembership(ctx, orgID, depositID, performedBy, false)
}

func (s *DepositService) setPoolMembership(ctx context.Context, orgID, depositID, performedBy string, inPool bool) (*model.SecurityDeposit, error) {
	deposit, err := s.depositRepo.GetByID(orgID, depositID)
	if err != nil {
		return nil, err
	}
	if deposit == nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrDepositNotFound, depositID)
	}

	if deposit.InPool == inPool {
		return deposit, nil
	}

	stamp := time.Now().UTC()
	if err := s.depositRepo.SetPoolMembership(ctx, depositID, inPool, stamp, performedBy); err != nil {
		return nil, err
	}

	deposit.InPool = inPool
	if inPool {
		deposit.PoolEntryDate = &stamp
	} else {
		deposit.PoolExitDate = &stamp
	}
	deposit.LastModifiedBy = performedBy
	deposit.UpdatedAt = stamp

	return deposit, nil
}

// GetDeposit retrieves one deposit. Returns (nil, nil) when absent.
func (s *DepositService) GetDeposit(orgID, depositID string) (*model.SecurityDeposit, error) {
	return s.depositRepo.GetByID(orgID, depositID)
}

// GetDepositByLease retrieves the deposit attached to a lease, if any.
func (s *DepositService) GetDepositByLease(orgID, leaseID string) (*model.SecurityDeposit, error) {
	return s.depositRepo.GetByLease(orgID, leaseID)
}

// ListDeposits retrieves all deposits for the organization, optionally
// filtered by status.
func (s *DepositService) ListDeposits(orgID string, status model.DepositStatus) ([]model.SecurityDeposit, error) {
	return s.depositRepo.List(orgID, status)
}

// ListDepositsInPoolForYear retrieves deposits whose pool membership
// overlapped the given calendar year.
func (s *DepositService) ListDepositsInPoolForYear(orgID string, year int) ([]model.SecurityDeposit, error) {
	start, end := YearBounds(year)
	return s.depositRepo.ListInPoolForYear(orgID, start, end)
}

// ListPendingRefunds retrieves held deposits whose lease has ended.
func (s *DepositService) ListPendingRefunds(orgID string) ([]model.SecurityDeposit, error) {
	return s.depositRepo.ListPendingRefunds(orgID, time.Now().UTC())
}

// CalculateRefundAmount computes the final payout for a deposit:
// principal plus settled dividends minus deductions. Dividends still
// Pending or ChoiceMade do not count; only money actually disbursed or
// credited is included.
func (s *DepositService) CalculateRefundAmount(orgID, depositID string, deductionsAmount float64) (float64, error) {
	deposit, err := s.depositRepo.GetByID(orgID, depositID)
	if err != nil {
		return 0, err
	}
	if deposit == nil {
		return 0, fmt.Errorf("%w: %s", apperrors.ErrDepositNotFound, depositID)
	}

	return s.refundAmount(deposit, deductionsAmount)
}

func (s *DepositService) refundAmount(deposit *model.SecurityDeposit, deductionsAmount float64) (float64, error) {
	dividends, err := s.dividendRepo.ListByDeposit(deposit.OrganizationID, deposit.ID)
	if err != nil {
		return 0, err
	}

	total := decimal.NewFromFloat(deposit.Amount)
	for _, d := range dividends {
		if d.Settled() {
			total = total.Add(decimal.NewFromFloat(d.Amount))
		}
	}
	total = total.Sub(decimal.NewFromFloat(deductionsAmount))

	return total.Round(2).InexactFloat64(), nil
}

// ProcessRefund settles a deposit exactly once.
//
// The deposit exits the pool first so no further dividends accrue, then the
// refund amount is computed and the terminal status persisted: Refunded when
// the payout covers the principal, PartiallyRefunded otherwise. A second call
// fails without touching the deposit.
func (s *DepositService) ProcessRefund(ctx context.Context, orgID, depositID string, req request.ProcessRefundRequest, performedBy string) (*model.SecurityDeposit, error) {
	deposit, err := s.depositRepo.GetByID(orgID, depositID)
	if err != nil {
		return nil, err
	}
	if deposit == nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrDepositNotFound, depositID)
	}
	if !deposit.Refundable() {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrDepositAlreadyRefunded, depositID)
	}

	if deposit.InPool {
		deposit, err = s.ExitPool(ctx, orgID, depositID, performedBy)
		if err != nil {
			return nil, err
		}
	}

	refundAmount, err := s.refundAmount(deposit, req.DeductionsAmount)
	if err != nil {
		return nil, err
	}

	// Status threshold compares against principal only, not
	// principal plus dividends.
	status := model.DepositStatusPartiallyRefunded
	if refundAmount >= deposit.Amount {
		status = model.DepositStatusRefunded
	}

	now := time.Now().UTC()
	deposit.Status = status
	deposit.RefundAmount = &refundAmount
	deposit.DeductionsAmount = &req.DeductionsAmount
	deposit.DeductionsReason = req.DeductionsReason
	deposit.RefundMethod = req.RefundMethod
	deposit.RefundReference = req.RefundReference
	deposit.RefundProcessedDate = &now
	deposit.LastModifiedBy = performedBy
	deposit.UpdatedAt = now

	if err := s.depositRepo.ApplyRefund(ctx, deposit); err != nil {
		return nil, err
	}

	return deposit, nil
}

// YearBounds returns the UTC start and end instants of a calendar year.
func YearBounds(year int) (time.Time, time.Time) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, time.December, 31, 23, 59, 59, 0, time.UTC)
	return start, end
}
