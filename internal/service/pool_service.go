package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rentpool/Deposit-Pool-Backend/internal/apperrors"
	"github.com/rentpool/Deposit-Pool-Backend/internal/model"
	"github.com/rentpool/Deposit-Pool-Backend/internal/repository"
)

// PoolService owns the one-record-per-year investment pool registry and the
// earnings split between organization and tenants.
type PoolService struct {
	poolRepo *repository.PoolRepository
	orgRepo  *repository.OrganizationRepository
}

// NewPoolService creates a new PoolService with the provided repository dependencies.
func NewPoolService(
	poolRepo *repository.PoolRepository,
	orgRepo *repository.OrganizationRepository,
) *PoolService {
	return &PoolService{
		poolRepo: poolRepo,
		orgRepo:  orgRepo,
	}
}

// GetOrCreate returns the pool for (organization, year), creating an Open one
// seeded with the organization's configured share percentage when none exists.
// The unique index on (organization_id, year) backstops concurrent creation;
// an insert that loses the race falls back to the winner's row.
func (s *PoolService) GetOrCreate(ctx context.Context, orgID string, year int, performedBy string) (*model.InvestmentPool, error) {
	pool, err := s.poolRepo.GetByYear(orgID, year)
	if err != nil {
		return nil, err
	}
	if pool != nil {
		return pool, nil
	}

	sharePercent := model.DefaultOrgSharePercent
	org, err := s.orgRepo.GetByID(orgID)
	if err != nil {
		return nil, err
	}
	if org != nil {
		sharePercent = org.EffectiveSharePercent()
	}

	now := time.Now().UTC()
	pool = &model.InvestmentPool{
		ID:              uuid.New().String(),
		OrganizationID:  orgID,
		Year:            year,
		OrgSharePercent: sharePercent,
		Status:          model.PoolStatusOpen,
		CreatedBy:       performedBy,
		LastModifiedBy:  performedBy,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if insertErr := s.poolRepo.Insert(ctx, pool); insertErr != nil {
		existing, err := s.poolRepo.GetByYear(orgID, year)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, insertErr
		}
		return existing, nil
	}

	return pool, nil
}

// RecordPerformance overwrites the pool's financial fields for the year and
// recomputes the return rate and the organization/tenant split.
//
// When total earnings are zero or negative the organization absorbs the full
// loss: both shares are forced to zero so dividends are never negative.
// The pool status is not touched.
func (s *PoolService) RecordPerformance(ctx context.Context, orgID string, year int, startingBalance, endingBalance, totalEarnings float64, performedBy string) (*model.InvestmentPool, error) {
	pool, err := s.GetOrCreate(ctx, orgID, year, performedBy)
	if err != nil {
		return nil, err
	}
	if pool.Status == model.PoolStatusClosed {
		return nil, fmt.Errorf("%w: %d", apperrors.ErrPoolClosed, year)
	}

	pool.StartingBalance = startingBalance
	pool.EndingBalance = endingBalance
	pool.TotalEarnings = totalEarnings

	pool.ReturnRate = 0
	if startingBalance != 0 {
		pool.ReturnRate = decimal.NewFromFloat(totalEarnings).
			Div(decimal.NewFromFloat(startingBalance)).
			Round(6).InexactFloat64()
	}

	pool.OrgShare = 0
	pool.TenantShareTotal = 0
	if totalEarnings > 0 {
		earnings := decimal.NewFromFloat(totalEarnings)
		orgShare := earnings.
			Mul(decimal.NewFromFloat(pool.OrgSharePercent)).
			Div(decimal.NewFromInt(100)).
			Round(2)
		pool.OrgShare = orgShare.InexactFloat64()
		pool.TenantShareTotal = earnings.Sub(orgShare).Round(2).InexactFloat64()
	}

	pool.LastModifiedBy = performedBy
	pool.UpdatedAt = time.Now().UTC()

	if err := s.poolRepo.UpdatePerformance(ctx, pool); err != nil {
		return nil, err
	}

	return pool, nil
}

// Close marks a pool Closed. Terminal; fails when the pool does not exist.
func (s *PoolService) Close(ctx context.Context, orgID, poolID, performedBy string) (*model.InvestmentPool, error) {
	pool, err := s.poolRepo.GetByID(orgID, poolID)
	if err != nil {
		return nil, err
	}
	if pool == nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrPoolNotFound, poolID)
	}

	now := time.Now().UTC()
	pool.Status = model.PoolStatusClosed
	pool.DistributedAt = &now
	pool.LastModifiedBy = performedBy
	pool.UpdatedAt = now

	if err := s.poolRepo.Close(ctx, pool); err != nil {
		return nil, err
	}

	return pool, nil
}

// GetByYear retrieves the pool for a year without creating one.
// Returns (nil, nil) when absent.
func (s *PoolService) GetByYear(orgID string, year int) (*model.InvestmentPool, error) {
	return s.poolRepo.GetByYear(orgID, year)
}

// ListPools retrieves all pools for the organization, most recent year first.
func (s *PoolService) ListPools(orgID string) ([]model.InvestmentPool, error) {
	return s.poolRepo.List(orgID)
}
