package repository

import (
	"database/sql"
	"fmt"

	"github.com/rentpool/Deposit-Pool-Backend/internal/model"
)

// OrganizationRepository provides read access to the organization settings
// this subsystem consumes: pool share percentage and default payout method.
type OrganizationRepository struct {
	db *sql.DB
}

// NewOrganizationRepository creates a new OrganizationRepository with the provided database connection.
func NewOrganizationRepository(db *sql.DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

// GetByID retrieves one organization. Returns (nil, nil) when the
// organization does not exist.
func (s *OrganizationRepository) GetByID(orgID string) (*model.Organization, error) {
	query := `
		SELECT id, name, share_percent, default_payout_method, created_at
		FROM organization
		WHERE id = ?
	`

	var o model.Organization
	var createdAtStr string

	err := s.db.QueryRow(query, orgID).Scan(
		&o.ID,
		&o.Name,
		&o.SharePercent,
		&o.DefaultPayoutMethod,
		&createdAtStr,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan organization table results: %w", err)
	}

	o.CreatedAt, err = ParseTime(createdAtStr)
	if err != nil {
		return nil, err
	}

	return &o, nil
}

// ListIDs retrieves the IDs of all organizations, for batch runs that walk
// every organization.
func (s *OrganizationRepository) ListIDs() ([]string, error) {
	rows, err := s.db.Query(`SELECT id FROM organization ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query organization table: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan organization table results: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}
