package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rentpool/Deposit-Pool-Backend/internal/model"
)

// PoolRepository provides data access methods for the investment_pool table.
// One row exists per (organization, year), enforced by a partial unique index.
type PoolRepository struct {
	db *sql.DB
}

// NewPoolRepository creates a new PoolRepository with the provided database connection.
func NewPoolRepository(db *sql.DB) *PoolRepository {
	return &PoolRepository{db: db}
}

const poolColumns = `
	id, organization_id, year, starting_balance, ending_balance, total_earnings,
	return_rate, org_share_percent, org_share, tenant_share_total,
	active_lease_count, dividend_per_lease, status, calculated_at, distributed_at,
	created_by, last_modified_by, created_at, updated_at
`

func scanPool(scan func(dest ...any) error) (*model.InvestmentPool, error) {
	var p model.InvestmentPool
	var createdAtStr, updatedAtStr string
	var calculatedAtStr, distributedAtStr, createdBy, modifiedBy sql.NullString

	err := scan(
		&p.ID,
		&p.OrganizationID,
		&p.Year,
		&p.StartingBalance,
		&p.EndingBalance,
		&p.TotalEarnings,
		&p.ReturnRate,
		&p.OrgSharePercent,
		&p.OrgShare,
		&p.TenantShareTotal,
		&p.ActiveLeaseCount,
		&p.DividendPerLease,
		&p.Status,
		&calculatedAtStr,
		&distributedAtStr,
		&createdBy,
		&modifiedBy,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		return nil, err
	}

	p.CreatedAt, err = ParseTime(createdAtStr)
	if err != nil {
		return nil, err
	}
	p.UpdatedAt, err = ParseTime(updatedAtStr)
	if err != nil {
		return nil, err
	}
	if p.CalculatedAt, err = parseNullTime(calculatedAtStr); err != nil {
		return nil, err
	}
	if p.DistributedAt, err = parseNullTime(distributedAtStr); err != nil {
		return nil, err
	}
	p.CreatedBy = createdBy.String
	p.LastModifiedBy = modifiedBy.String

	return &p, nil
}

// Insert persists a new pool record. The (organization_id, year) unique index
// rejects duplicates under concurrent creation; callers re-fetch on failure.
func (s *PoolRepository) Insert(ctx context.Context, p *model.InvestmentPool) error {
	query := `
		INSERT INTO investment_pool (
			id, organization_id, year, starting_balance, ending_balance,
			total_earnings, return_rate, org_share_percent, org_share,
			tenant_share_total, active_lease_count, dividend_per_lease, status,
			created_by, last_modified_by, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		p.ID,
		p.OrganizationID,
		p.Year,
		p.StartingBalance,
		p.EndingBalance,
		p.TotalEarnings,
		p.ReturnRate,
		p.OrgSharePercent,
		p.OrgShare,
		p.TenantShareTotal,
		p.ActiveLeaseCount,
		p.DividendPerLease,
		p.Status,
		p.CreatedBy,
		p.LastModifiedBy,
		formatTime(&p.CreatedAt),
		formatTime(&p.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert investment pool: %w", err)
	}

	return nil
}

// GetByYear retrieves the pool for (organization, year).
// Returns (nil, nil) when no pool exists yet.
func (s *PoolRepository) GetByYear(orgID string, year int) (*model.InvestmentPool, error) {
	query := `
		SELECT ` + poolColumns + `
		FROM investment_pool
		WHERE organization_id = ? AND year = ? AND deleted_at IS NULL
	`

	row := s.db.QueryRow(query, orgID, year)
	p, err := scanPool(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan investment_pool table results: %w", err)
	}

	return p, nil
}

// GetByID retrieves one pool scoped to the organization.
func (s *PoolRepository) GetByID(orgID, poolID string) (*model.InvestmentPool, error) {
	query := `
		SELECT ` + poolColumns + `
		FROM investment_pool
		WHERE organization_id = ? AND id = ? AND deleted_at IS NULL
	`

	row := s.db.QueryRow(query, orgID, poolID)
	p, err := scanPool(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan investment_pool table results: %w", err)
	}

	return p, nil
}

// List retrieves all pools for the organization, most recent year first.
func (s *PoolRepository) List(orgID string) ([]model.InvestmentPool, error) {
	query := `
		SELECT ` + poolColumns + `
		FROM investment_pool
		WHERE organization_id = ? AND deleted_at IS NULL
		ORDER BY year DESC
	`

	rows, err := s.db.Query(query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to query investment_pool table: %w", err)
	}
	defer rows.Close()

	pools := []model.InvestmentPool{}

	for rows.Next() {
		p, err := scanPool(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan investment_pool table results: %w", err)
		}
		pools = append(pools, *p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating investment_pool table: %w", err)
	}

	return pools, nil
}

// UpdatePerformance overwrites the financial fields and the recomputed split.
// Status is deliberately untouched.
func (s *PoolRepository) UpdatePerformance(ctx context.Context, p *model.InvestmentPool) error {
	query := `
		UPDATE investment_pool
		SET starting_balance = ?, ending_balance = ?, total_earnings = ?,
			return_rate = ?, org_share = ?, tenant_share_total = ?,
			last_modified_by = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	_, err := s.db.ExecContext(ctx, query,
		p.StartingBalance,
		p.EndingBalance,
		p.TotalEarnings,
		p.ReturnRate,
		p.OrgShare,
		p.TenantShareTotal,
		p.LastModifiedBy,
		formatTime(&p.UpdatedAt),
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update investment pool performance: %w", err)
	}

	return nil
}

// UpdateCalculation persists the dividend-run outcome: lease count, per-lease
// amount, Calculated status and the calculation timestamp.
func (s *PoolRepository) UpdateCalculation(ctx context.Context, p *model.InvestmentPool) error {
	query := `
		UPDATE investment_pool
		SET active_lease_count = ?, dividend_per_lease = ?, status = ?,
			calculated_at = ?, last_modified_by = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	_, err := s.db.ExecContext(ctx, query,
		p.ActiveLeaseCount,
		p.DividendPerLease,
		p.Status,
		formatTime(p.CalculatedAt),
		p.LastModifiedBy,
		formatTime(&p.UpdatedAt),
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update investment pool calculation: %w", err)
	}

	return nil
}

// Close marks the pool Closed. Terminal.
func (s *PoolRepository) Close(ctx context.Context, p *model.InvestmentPool) error {
	query := `
		UPDATE investment_pool
		SET status = ?, distributed_at = ?, last_modified_by = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	_, err := s.db.ExecContext(ctx, query,
		p.Status,
		formatTime(p.DistributedAt),
		p.LastModifiedBy,
		formatTime(&p.UpdatedAt),
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to close investment pool: %w", err)
	}

	return nil
}
