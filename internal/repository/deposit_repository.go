package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rentpool/Deposit-Pool-Backend/internal/model"
)

// DepositRepository provides data access methods for the security_deposit table.
// All queries are scoped to an organization and exclude soft-deleted rows.
type DepositRepository struct {
	db *sql.DB
}

// NewDepositRepository creates a new DepositRepository with the provided database connection.
func NewDepositRepository(db *sql.DB) *DepositRepository {
	return &DepositRepository{db: db}
}

const depositColumns = `
	id, organization_id, lease_id, tenant_id, amount, date_received,
	payment_method, transaction_reference, status, in_pool,
	pool_entry_date, pool_exit_date, refund_amount, deductions_amount,
	deductions_reason, refund_method, refund_reference, refund_processed_date,
	created_by, last_modified_by, created_at, updated_at
`

// scanDeposit reads one security_deposit row from the given scanner.
func scanDeposit(scan func(dest ...any) error) (*model.SecurityDeposit, error) {
	var d model.SecurityDeposit
	var dateReceivedStr, createdAtStr, updatedAtStr string
	var txRef, dedReason, refMethod, refRef, createdBy, modifiedBy sql.NullString
	var poolEntryStr, poolExitStr, refundProcessedStr sql.NullString
	var refundAmount, deductionsAmount sql.NullFloat64

	err := scan(
		&d.ID,
		&d.OrganizationID,
		&d.LeaseID,
		&d.TenantID,
		&d.Amount,
		&dateReceivedStr,
		&d.PaymentMethod,
		&txRef,
		&d.Status,
		&d.InPool,
		&poolEntryStr,
		&poolExitStr,
		&refundAmount,
		&deductionsAmount,
		&dedReason,
		&refMethod,
		&refRef,
		&refundProcessedStr,
		&createdBy,
		&modifiedBy,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		return nil, err
	}

	d.DateReceived, err = ParseTime(dateReceivedStr)
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

	if d.PoolEntryDate, err = parseNullTime(poolEntryStr); err != nil {
		return nil, err
	}
	if d.PoolExitDate, err = parseNullTime(poolExitStr); err != nil {
		return nil, err
	}
	if d.RefundProcessedDate, err = parseNullTime(refundProcessedStr); err != nil {
		return nil, err
	}

	if refundAmount.Valid {
		d.RefundAmount = &refundAmount.Float64
	}
	if deductionsAmount.Valid {
		d.DeductionsAmount = &deductionsAmount.Float64
	}
	d.TransactionReference = txRef.String
	d.DeductionsReason = dedReason.String
	d.RefundMethod = refMethod.String
	d.RefundReference = refRef.String
	d.CreatedBy = createdBy.String
	d.LastModifiedBy = modifiedBy.String

	return &d, nil
}

// Insert persists a newly collected deposit. The partial unique index on
// lease_id is the backstop for the one-deposit-per-lease invariant.
func (s *DepositRepository) Insert(ctx context.Context, d *model.SecurityDeposit) error {
	query := `
		INSERT INTO security_deposit (
			id, organization_id, lease_id, tenant_id, amount, date_received,
			payment_method, transaction_reference, status, in_pool,
			created_by, last_modified_by, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		d.ID,
		d.OrganizationID,
		d.LeaseID,
		d.TenantID,
		d.Amount,
		d.DateReceived.Format("2006-01-02"),
		d.PaymentMethod,
		d.TransactionReference,
		d.Status,
		d.InPool,
		d.CreatedBy,
		d.LastModifiedBy,
		formatTime(&d.CreatedAt),
		formatTime(&d.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert security deposit: %w", err)
	}

	return nil
}

// GetByID retrieves one deposit scoped to the organization.
// Returns (nil, nil) when no non-deleted deposit exists.
func (s *DepositRepository) GetByID(orgID, depositID string) (*model.SecurityDeposit, error) {
	query := `
		SELECT ` + depositColumns + `
		FROM security_deposit
		WHERE organization_id = ? AND id = ? AND deleted_at IS NULL
	`

	row := s.db.QueryRow(query, orgID, depositID)
	d, err := scanDeposit(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan security_deposit table results: %w", err)
	}

	return d, nil
}

// GetByLease retrieves the deposit attached to a lease, if any.
func (s *DepositRepository) GetByLease(orgID, leaseID string) (*model.SecurityDeposit, error) {
	query := `
		SELECT ` + depositColumns + `
		FROM security_deposit
		WHERE organization_id = ? AND lease_id = ? AND deleted_at IS NULL
	`

	row := s.db.QueryRow(query, orgID, leaseID)
	d, err := scanDeposit(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan security_deposit table results: %w", err)
	}

	return d, nil
}

// List retrieves all deposits for the organization, newest first,
// optionally filtered by status.
func (s *DepositRepository) List(orgID string, status model.DepositStatus) ([]model.SecurityDeposit, error) {
	query := `
		SELECT ` + depositColumns + `
		FROM security_deposit
		WHERE organization_id = ? AND deleted_at IS NULL
	`
	args := []any{orgID}

	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY date_received DESC, id`

	return s.queryDeposits(query, args...)
}

// ListInPoolForYear retrieves deposits whose pool membership overlapped the
// given calendar year: entry on or before year end, and either no exit or an
// exit on or after year start. This is deliberately an open-interval test,
// not strict calendar-year containment.
func (s *DepositRepository) ListInPoolForYear(orgID string, yearStart, yearEnd time.Time) ([]model.SecurityDeposit, error) {
	query := `
		SELECT ` + depositColumns + `
		FROM security_deposit
		WHERE organization_id = ?
		AND deleted_at IS NULL
		AND pool_entry_date IS NOT NULL
		AND pool_entry_date <= ?
		AND (pool_exit_date IS NULL OR pool_exit_date >= ?)
		ORDER BY pool_entry_date ASC, id
	`

	return s.queryDeposits(query,
		orgID,
		yearEnd.UTC().Format(time.RFC3339),
		yearStart.UTC().Format(time.RFC3339),
	)
}

// ListPendingRefunds retrieves held deposits whose lease has ended.
func (s *DepositRepository) ListPendingRefunds(orgID string, now time.Time) ([]model.SecurityDeposit, error) {
	query := `
		SELECT ` + prefixDepositColumns("d") + `
		FROM security_deposit d
		JOIN lease l ON d.lease_id = l.id
		WHERE d.organization_id = ?
		AND d.deleted_at IS NULL
		AND d.status = ?
		AND (l.status = ? OR (l.end_date IS NOT NULL AND l.end_date <= ?))
		ORDER BY d.date_received ASC, d.id
	`

	return s.queryDeposits(query,
		orgID,
		model.DepositStatusHeld,
		model.LeaseStatusEnded,
		now.UTC().Format("2006-01-02"),
	)
}

// SetPoolMembership toggles the pool flag and stamps the matching
// entry or exit timestamp.
func (s *DepositRepository) SetPoolMembership(ctx context.Context, depositID string, inPool bool, stamp time.Time, performedBy string) error {
	column := "pool_exit_date"
	if inPool {
		column = "pool_entry_date"
	}

	//nolint:gosec // G202: column name selected from two hardcoded values above
	query := `
		UPDATE security_deposit
		SET in_pool = ?, ` + column + ` = ?, last_modified_by = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	_, err := s.db.ExecContext(ctx, query,
		inPool,
		formatTime(&stamp),
		performedBy,
		formatTime(&stamp),
		depositID,
	)
	if err != nil {
		return fmt.Errorf("failed to update pool membership: %w", err)
	}

	return nil
}

// ApplyRefund persists the refund settlement fields and the terminal status.
func (s *DepositRepository) ApplyRefund(ctx context.Context, d *model.SecurityDeposit) error {
	query := `
		UPDATE security_deposit
		SET status = ?, refund_amount = ?, deductions_amount = ?,
			deductions_reason = ?, refund_method = ?, refund_reference = ?,
			refund_processed_date = ?, last_modified_by = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	_, err := s.db.ExecContext(ctx, query,
		d.Status,
		d.RefundAmount,
		d.DeductionsAmount,
		d.DeductionsReason,
		d.RefundMethod,
		d.RefundReference,
		formatTime(d.RefundProcessedDate),
		d.LastModifiedBy,
		formatTime(&d.UpdatedAt),
		d.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update security deposit refund: %w", err)
	}

	return nil
}

func (s *DepositRepository) queryDeposits(query string, args ...any) ([]model.SecurityDeposit, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query security_deposit table: %w", err)
	}
	defer rows.Close()

	deposits := []model.SecurityDeposit{}

	for rows.Next() {
		d, err := scanDeposit(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan security_deposit table results: %w", err)
		}
		deposits = append(deposits, *d)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating security_deposit table: %w", err)
	}

	return deposits, nil
}

// prefixDepositColumns qualifies the shared column list with a table alias
// for joined queries.
func prefixDepositColumns(alias string) string {
	return fmt.Sprintf(`
		%[1]s.id, %[1]s.organization_id, %[1]s.lease_id, %[1]s.tenant_id, %[1]s.amount, %[1]s.date_received,
		%[1]s.payment_method, %[1]s.transaction_reference, %[1]s.status, %[1]s.in_pool,
		%[1]s.pool_entry_date, %[1]s.pool_exit_date, %[1]s.refund_amount, %[1]s.deductions_amount,
		%[1]s.deductions_reason, %[1]s.refund_method, %[1]s.refund_reference, %[1]s.refund_processed_date,
		%[1]s.created_by, %[1]s.last_modified_by, %[1]s.created_at, %[1]s.updated_at
	`, alias)
}
