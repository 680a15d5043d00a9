package repository

import (
	"database/sql"
	"fmt"

	"github.com/rentpool/Deposit-Pool-Backend/internal/model"
)

// LeaseRepository provides read access to the lease mirror owned by the
// leasing subsystem.
type LeaseRepository struct {
	db *sql.DB
}

// NewLeaseRepository creates a new LeaseRepository with the provided database connection.
func NewLeaseRepository(db *sql.DB) *LeaseRepository {
	return &LeaseRepository{db: db}
}

// GetByID retrieves one lease scoped to the organization.
// Returns (nil, nil) when the lease does not exist.
func (s *LeaseRepository) GetByID(orgID, leaseID string) (*model.Lease, error) {
	query := `
		SELECT id, organization_id, tenant_id, unit, start_date, end_date, status
		FROM lease
		WHERE organization_id = ? AND id = ?
	`

	var l model.Lease
	var tenantID, unit sql.NullString
	var startDateStr string
	var endDateStr sql.NullString

	err := s.db.QueryRow(query, orgID, leaseID).Scan(
		&l.ID,
		&l.OrganizationID,
		&tenantID,
		&unit,
		&startDateStr,
		&endDateStr,
		&l.Status,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan lease table results: %w", err)
	}

	if tenantID.Valid {
		l.TenantID = tenantID.String
	}
	if unit.Valid {
		l.Unit = unit.String
	}

	l.StartDate, err = ParseTime(startDateStr)
	if err != nil {
		return nil, err
	}

	l.EndDate, err = parseNullTime(endDateStr)
	if err != nil {
		return nil, err
	}

	return &l, nil
}
