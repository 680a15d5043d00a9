package service

import (
	"database/sql"

	"github.com/rentpool/Deposit-Pool-Backend/internal/database"
	"github.com/rentpool/Deposit-Pool-Backend/internal/model"
)

// Version is the application version, overridable at build time.
var Version = "dev"

// SystemService handles system-related operations
type SystemService struct {
	db *sql.DB
}

// NewSystemService creates a new SystemService
func NewSystemService(db *sql.DB) *SystemService {
	return &SystemService{
		db: db,
	}
}

// CheckHealth checks the health of the system
func (s *SystemService) CheckHealth() error {
	return database.HealthCheck(s.db)
}

// CheckVersion returns application and schema version information.
func (s *SystemService) CheckVersion() (model.VersionInfo, error) {
	var dbVersion string
	err := s.db.QueryRow(
		"SELECT COALESCE(MAX(version_id), 0) FROM goose_db_version",
	).Scan(&dbVersion)
	if err != nil {
		dbVersion = "unknown"
	}

	return model.VersionInfo{
		AppVersion: Version,
		DbVersion:  dbVersion,
	}, nil
}
