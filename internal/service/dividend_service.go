package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/rentpool/Deposit-Pool-Backend/internal/api/request"
	"github.com/rentpool/Deposit-Pool-Backend/internal/apperrors"
	"github.com/rentpool/Deposit-Pool-Backend/internal/model"
	"github.com/rentpool/Deposit-Pool-Backend/internal/repository"
	"github.com/rentpool/Deposit-Pool-Backend/internal/secure"
)

// DividendService derives dividend records from pool performance and each
// deposit's prorated time in the pool, and tracks their settlement.
type DividendService struct {
	dividendRepo *repository.DividendRepository
	depositRepo  *repository.DepositRepository
	orgRepo      *repository.OrganizationRepository
	poolService  *PoolService
	vault        *secure.Vault

	// calcGroup serializes concurrent calculation runs per (org, year);
	// the unique index on (deposit_id, year) is the hard guarantee.
	calcGroup singleflight.Group
}

// NewDividendService creates a new DividendService with the provided dependencies.
func NewDividendService(
	dividendRepo *repository.DividendRepository,
	depositRepo *repository.DepositRepository,
	orgRepo *repository.OrganizationRepository,
	poolService *PoolService,
	vault *secure.Vault,
) *DividendService {
	return &DividendService{
		dividendRepo: dividendRepo,
		depositRepo:  depositRepo,
		orgRepo:      orgRepo,
		poolService:  poolService,
		vault:        vault,
	}
}

// CalculateDividends produces one dividend per qualifying deposit for the
// given year and marks the pool Calculated.
//
// A deposit qualifies when its pool membership overlapped the calendar year.
// The tenant share is split equally across qualifying deposits and prorated
// by each deposit's months in the pool. Re-running is idempotent: pairs that
// already have a dividend are returned unchanged, so a run that failed
// partway is safe to retry.
func (s *DividendService) CalculateDividends(ctx context.Context, orgID string, year int, performedBy string) ([]model.SecurityDepositDividend, error) {
	result, err, _ := s.calcGroup.Do(fmt.Sprintf("%s:%d", orgID, year), func() (any, error) {
		return s.calculate(ctx, orgID, year, performedBy)
	})
	if err != nil {
		return nil, err
	}
	return result.([]model.SecurityDepositDividend), nil
}

func (s *DividendService) calculate(ctx context.Context, orgID string, year int, performedBy string) ([]model.SecurityDepositDividend, error) {
	pool, err := s.poolService.GetOrCreate(ctx, orgID, year, performedBy)
	if err != nil {
		return nil, err
	}
	if pool.Status == model.PoolStatusClosed {
		return nil, fmt.Errorf("%w: %d", apperrors.ErrPoolClosed, year)
	}

	yearStart, yearEnd := YearBounds(year)
	deposits, err := s.depositRepo.ListInPoolForYear(orgID, yearStart, yearEnd)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	// No members or nothing to distribute is a valid terminal outcome.
	if len(deposits) == 0 || pool.TenantShareTotal <= 0 {
		pool.ActiveLeaseCount = 0
		pool.DividendPerLease = 0
		return []model.SecurityDepositDividend{}, s.markCalculated(ctx, pool, now, performedBy)
	}

	// Equal split across deposits, independent of principal.
	perLease := decimal.NewFromFloat(pool.TenantShareTotal).
		Div(decimal.NewFromInt(int64(len(deposits)))).
		Round(2)
	pool.ActiveLeaseCount = len(deposits)
	pool.DividendPerLease = perLease.InexactFloat64()

	defaultMethod := model.PaymentMethodLeaseCredit
	org, err := s.orgRepo.GetByID(orgID)
	if err != nil {
		return nil, err
	}
	if org != nil {
		defaultMethod = org.EffectivePayoutMethod()
	}

	dividends := make([]model.SecurityDepositDividend, 0, len(deposits))
	for i := range deposits {
		deposit := &deposits[i]

		months, factor := prorate(deposit, yearStart, yearEnd)
		amount := perLease.Mul(factor).Round(2)

		dividend := &model.SecurityDepositDividend{
			ID:              uuid.New().String(),
			OrganizationID:  orgID,
			DepositID:       deposit.ID,
			PoolID:          pool.ID,
			LeaseID:         deposit.LeaseID,
			TenantID:        deposit.TenantID,
			Year:            year,
			BaseAmount:      perLease.InexactFloat64(),
			ProrationFactor: factor.InexactFloat64(),
			Amount:          amount.InexactFloat64(),
			MonthsInPool:    months,
			PaymentMethod:   defaultMethod,
			Status:          model.DividendStatusPending,
			CreatedBy:       performedBy,
			LastModifiedBy:  performedBy,
			CreatedAt:       now,
			UpdatedAt:       now,
		}

		created, err := s.dividendRepo.InsertIfAbsent(ctx, dividend)
		if err != nil {
			return nil, err
		}
		if !created {
			existing, err := s.dividendRepo.GetByDepositYear(orgID, deposit.ID, year)
			if err != nil {
				return nil, err
			}
			if existing == nil {
				return nil, fmt.Errorf("%w: deposit %s year %d", apperrors.ErrDividendNotFound, deposit.ID, year)
			}
			dividend = existing
		}

		dividends = append(dividends, *dividend)
	}

	if err := s.markCalculated(ctx, pool, now, performedBy); err != nil {
		return nil, err
	}

	return dividends, nil
}

func (s *DividendService) markCalculated(ctx context.Context, pool *model.InvestmentPool, now time.Time, performedBy string) error {
	pool.Status = model.PoolStatusCalculated
	pool.CalculatedAt = &now
	pool.LastModifiedBy = performedBy
	pool.UpdatedAt = now
	return s.poolService.poolRepo.UpdateCalculation(ctx, pool)
}

// prorate computes the inclusive month count a deposit spent in the pool
// during the year and the resulting factor, clamped to [0, 1].
func prorate(deposit *model.SecurityDeposit, yearStart, yearEnd time.Time) (int, decimal.Decimal) {
	effectiveStart := yearStart
	if deposit.PoolEntryDate != nil && deposit.PoolEntryDate.After(yearStart) {
		effectiveStart = *deposit.PoolEntryDate
	}

	effectiveEnd := yearEnd
	if deposit.PoolExitDate != nil && deposit.PoolExitDate.Before(yearEnd) {
		effectiveEnd = *deposit.PoolExitDate
	}

	months := (effectiveEnd.Year()-effectiveStart.Year())*12 +
		int(effectiveEnd.Month()) - int(effectiveStart.Month()) + 1
	if months < 0 {
		months = 0
	}

	factor := decimal.NewFromInt(int64(months)).Div(decimal.NewFromInt(12))
	if factor.GreaterThan(decimal.NewFromInt(1)) {
		factor = decimal.NewFromInt(1)
	}

	return months, factor
}

// GetDividend retrieves one dividend with its mailing address decrypted.
// Returns (nil, nil) when absent.
func (s *DividendService) GetDividend(orgID, dividendID string) (*model.SecurityDepositDividend, error) {
	dividend, err := s.dividendRepo.GetByID(orgID, dividendID)
	if err != nil || dividend == nil {
		return dividend, err
	}
	dividend.MailingAddress = s.vault.Decrypt(dividend.MailingAddress)
	return dividend, nil
}

// RecordChoice transitions a dividend from Pending to ChoiceMade with the
// tenant's chosen payout method. Mailing addresses are encrypted at rest.
func (s *DividendService) RecordChoice(ctx context.Context, orgID, dividendID string, req request.RecordChoiceRequest, performedBy string) (*model.SecurityDepositDividend, error) {
	dividend, err := s.dividendRepo.GetByID(orgID, dividendID)
	if err != nil {
		return nil, err
	}
	if dividend == nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrDividendNotFound, dividendID)
	}
	if dividend.Settled() {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrDividendAlreadySettled, dividendID)
	}

	encrypted, err := s.vault.Encrypt(req.MailingAddress)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	dividend.PaymentMethod = req.PaymentMethod
	dividend.MailingAddress = encrypted
	dividend.Status = model.DividendStatusChoiceMade
	dividend.ChoiceAt = &now
	dividend.LastModifiedBy = performedBy
	dividend.UpdatedAt = now

	if err := s.dividendRepo.UpdateChoice(ctx, dividend); err != nil {
		return nil, err
	}

	dividend.MailingAddress = req.MailingAddress
	return dividend, nil
}

// ProcessPayment settles a dividend: Applied when the payout method is lease
// credit, Paid otherwise. Records the processed timestamp and reference.
func (s *DividendService) ProcessPayment(ctx context.Context, orgID, dividendID string, req request.ProcessPaymentRequest, performedBy string) (*model.SecurityDepositDividend, error) {
	dividend, err := s.dividendRepo.GetByID(orgID, dividendID)
	if err != nil {
		return nil, err
	}
	if dividend == nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrDividendNotFound, dividendID)
	}
	if dividend.Settled() {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrDividendAlreadySettled, dividendID)
	}

	now := time.Now().UTC()
	if dividend.PaymentMethod == model.PaymentMethodLeaseCredit {
		dividend.Status = model.DividendStatusApplied
	} else {
		dividend.Status = model.DividendStatusPaid
	}
	dividend.PaidAt = &now
	dividend.PaymentReference = req.PaymentReference
	dividend.LastModifiedBy = performedBy
	dividend.UpdatedAt = now

	if err := s.dividendRepo.UpdatePayment(ctx, dividend); err != nil {
		return nil, err
	}

	return dividend, nil
}

// ListTenantDividends retrieves a tenant's dividends across all years,
// most recent year first.
func (s *DividendService) ListTenantDividends(orgID, tenantID string) ([]model.SecurityDepositDividend, error) {
	dividends, err := s.dividendRepo.ListByTenant(orgID, tenantID)
	if err != nil {
		return nil, err
	}
	for i := range dividends {
		dividends[i].MailingAddress = s.vault.Decrypt(dividends[i].MailingAddress)
	}
	return dividends, nil
}

// ListDividendsForYear retrieves all dividends for one year sorted by tenant
// last/first name, for bulk payout runs.
func (s *DividendService) ListDividendsForYear(orgID string, year int) ([]model.TenantDividend, error) {
	dividends, err := s.dividendRepo.ListByYear(orgID, year)
	if err != nil {
		return nil, err
	}
	for i := range dividends {
		dividends[i].MailingAddress = s.vault.Decrypt(dividends[i].MailingAddress)
	}
	return dividends, nil
}
