package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rentpool/Deposit-Pool-Backend/internal/model"
)

// DividendRepository provides data access methods for the
// security_deposit_dividend table.
type DividendRepository struct {
	db *sql.DB
}

// NewDividendRepository creates a new DividendRepository with the provided database connection.
func NewDividendRepository(db *sql.DB) *DividendRepository {
	return &DividendRepository{db: db}
}

const dividendColumns = `
	id, organization_id, deposit_id, pool_id, lease_id, tenant_id, year,
	base_amount, proration_factor, amount, months_in_pool, payment_method,
	status, choice_at, paid_at, payment_reference, mailing_address,
	created_by, last_modified_by, created_at, updated_at
`

func scanDividend(scan func(dest ...any) error) (*model.SecurityDepositDividend, error) {
	var d model.SecurityDepositDividend
	var createdAtStr, updatedAtStr string
	var choiceAtStr, paidAtStr sql.NullString
	var payRef, mailAddr, createdBy, modifiedBy sql.NullString

	err := scan(
		&d.ID,
		&d.OrganizationID,
		&d.DepositID,
		&d.PoolID,
		&d.LeaseID,
		&d.TenantID,
		&d.Year,
		&d.BaseAmount,
		&d.ProrationFactor,
		&d.Amount,
		&d.MonthsInPool,
		&d.PaymentMethod,
		&d.Status,
		&choiceAtStr,
		&paidAtStr,
		&payRef,
		&mailAddr,
		&createdBy,
		&modifiedBy,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		return nil, err
	}

	d.CreatedAt, err = ParseTime(createdAtStr)
	if err != nil {
		return nil, err
	}
	d.UpdatedAt, err = ParseTime(updatedAtStr)
	if err != nil {
		return nil, err
	}
	if d.ChoiceAt, err = parseNullTime(choiceAtStr); err != nil {
		return nil, err
	}
	if d.PaidAt, err = parseNullTime(paidAtStr); err != nil {
		return nil, err
	}
	d.PaymentReference = payRef.String
	d.MailingAddress = mailAddr.String
	d.CreatedBy = createdBy.String
	d.LastModifiedBy = modifiedBy.String

	return &d, nil
}

// InsertIfAbsent performs an atomic insert-or-ignore on the (deposit_id, year)
// unique index. Returns false when a dividend already existed for the pair,
// which makes recalculation idempotent under concurrent retries.
func (s *DividendRepository) InsertIfAbsent(ctx context.Context, d *model.SecurityDepositDividend) (bool, error) {
	query := `
		INSERT OR IGNORE INTO security_deposit_dividend (
			id, organization_id, deposit_id, pool_id, lease_id, tenant_id, year,
			base_amount, proration_factor, amount, months_in_pool,
			payment_method, status, created_by, last_modified_by,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := s.db.ExecContext(ctx, query,
		d.ID,
		d.OrganizationID,
		d.DepositID,
		d.PoolID,
		d.LeaseID,
		d.TenantID,
		d.Year,
		d.BaseAmount,
		d.ProrationFactor,
		d.Amount,
		d.MonthsInPool,
		d.PaymentMethod,
		d.Status,
		d.CreatedBy,
		d.LastModifiedBy,
		formatTime(&d.CreatedAt),
		formatTime(&d.UpdatedAt),
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert dividend: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read dividend insert result: %w", err)
	}

	return affected > 0, nil
}

// GetByID retrieves one dividend scoped to the organization.
// Returns (nil, nil) when no non-deleted dividend exists.
func (s *DividendRepository) GetByID(orgID, dividendID string) (*model.SecurityDepositDividend, error) {
	query := `
		SELECT ` + dividendColumns + `
		FROM security_deposit_dividend
		WHERE organization_id = ? AND id = ? AND deleted_at IS NULL
	`

	row := s.db.QueryRow(query, orgID, dividendID)
	d, err := scanDividend(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan security_deposit_dividend table results: %w", err)
	}

	return d, nil
}

// GetByDepositYear retrieves the dividend for one (deposit, year) pair.
func (s *DividendRepository) GetByDepositYear(orgID, depositID string, year int) (*model.SecurityDepositDividend, error) {
	query := `
		SELECT ` + dividendColumns + `
		FROM security_deposit_dividend
		WHERE organization_id = ? AND deposit_id = ? AND year = ? AND deleted_at IS NULL
	`

	row := s.db.QueryRow(query, orgID, depositID, year)
	d, err := scanDividend(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan security_deposit_dividend table results: %w", err)
	}

	return d, nil
}

// ListByDeposit retrieves all dividends attached to one deposit, oldest year
// first. The refund calculation filters these down to settled ones.
func (s *DividendRepository) ListByDeposit(orgID, depositID string) ([]model.SecurityDepositDividend, error) {
	query := `
		SELECT ` + dividendColumns + `
		FROM security_deposit_dividend
		WHERE organization_id = ? AND deposit_id = ? AND deleted_at IS NULL
		ORDER BY year ASC
	`

	return s.queryDividends(query, orgID, depositID)
}

// ListByTenant retrieves a tenant's dividends across all years, most recent
// year first.
func (s *DividendRepository) ListByTenant(orgID, tenantID string) ([]model.SecurityDepositDividend, error) {
	query := `
		SELECT ` + dividendColumns + `
		FROM security_deposit_dividend
		WHERE organization_id = ? AND tenant_id = ? AND deleted_at IS NULL
		ORDER BY year DESC
	`

	return s.queryDividends(query, orgID, tenantID)
}

// ListByYear retrieves all dividends for one year with tenant names attached,
// sorted by tenant last/first name for bulk payout runs.
func (s *DividendRepository) ListByYear(orgID string, year int) ([]model.TenantDividend, error) {
	query := `
		SELECT
			d.id, d.organization_id, d.deposit_id, d.pool_id, d.lease_id, d.tenant_id, d.year,
			d.base_amount, d.proration_factor, d.amount, d.months_in_pool, d.payment_method,
			d.status, d.choice_at, d.paid_at, d.payment_reference, d.mailing_address,
			d.created_by, d.last_modified_by, d.created_at, d.updated_at,
			t.first_name, t.last_name
		FROM security_deposit_dividend d
		JOIN tenant t ON d.tenant_id = t.id
		WHERE d.organization_id = ? AND d.year = ? AND d.deleted_at IS NULL
		ORDER BY t.last_name ASC, t.first_name ASC
	`

	rows, err := s.db.Query(query, orgID, year)
	if err != nil {
		return nil, fmt.Errorf("failed to query security_deposit_dividend table: %w", err)
	}
	defer rows.Close()

	dividends := []model.TenantDividend{}

	for rows.Next() {
		var td model.TenantDividend
		d, err := scanDividendWithNames(rows.Scan, &td.TenantFirstName, &td.TenantLastName)
		if err != nil {
			return nil, fmt.Errorf("failed to scan security_deposit_dividend table results: %w", err)
		}
		td.SecurityDepositDividend = *d
		dividends = append(dividends, td)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating security_deposit_dividend table: %w", err)
	}

	return dividends, nil
}

// UpdateChoice persists a tenant's payout choice.
func (s *DividendRepository) UpdateChoice(ctx context.Context, d *model.SecurityDepositDividend) error {
	query := `
		UPDATE security_deposit_dividend
		SET payment_method = ?, mailing_address = ?, status = ?, choice_at = ?,
			last_modified_by = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	_, err := s.db.ExecContext(ctx, query,
		d.PaymentMethod,
		d.MailingAddress,
		d.Status,
		formatTime(d.ChoiceAt),
		d.LastModifiedBy,
		formatTime(&d.UpdatedAt),
		d.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update dividend choice: %w", err)
	}

	return nil
}

// UpdatePayment persists the payment processing outcome.
func (s *DividendRepository) UpdatePayment(ctx context.Context, d *model.SecurityDepositDividend) error {
	query := `
		UPDATE security_deposit_dividend
		SET status = ?, paid_at = ?, payment_reference = ?,
			last_modified_by = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	_, err := s.db.ExecContext(ctx, query,
		d.Status,
		formatTime(d.PaidAt),
		d.PaymentReference,
		d.LastModifiedBy,
		formatTime(&d.UpdatedAt),
		d.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update dividend payment: %w", err)
	}

	return nil
}

func (s *DividendRepository) queryDividends(query string, args ...any) ([]model.SecurityDepositDividend, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query security_deposit_dividend table: %w", err)
	}
	defer rows.Close()

	dividends := []model.SecurityDepositDividend{}

	for rows.Next() {
		d, err := scanDividend(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan security_deposit_dividend table results: %w", err)
		}
		dividends = append(dividends, *d)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating security_deposit_dividend table: %w", err)
	}

	return dividends, nil
}

// scanDividendWithNames scans the dividend columns plus the two tenant name
// columns appended by the per-year join.
func scanDividendWithNames(scan func(dest ...any) error, firstName, lastName *string) (*model.SecurityDepositDividend, error) {
	return scanDividend(func(dest ...any) error {
		dest = append(dest, firstName, lastName)
		return scan(dest...)
	})
}
