package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite" // Test Package
)

// SetupTestDB creates an in-memory SQLite database for testing.
// The database is automatically cleaned up when the test completes.
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    db := testutil.SetupTestDB(t)
//	    // db is ready to use with schema created
//	}
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// In-memory database (destroyed when connection closes)
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		t.Fatalf("Failed to ping test database: %v", err)
	}

	// Configure SQLite for testing
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA timezone = 'UTC'",
		"PRAGMA journal_mode = MEMORY", // Faster for tests
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			t.Fatalf("Failed to set pragma: %v", err)
		}
	}

	// Create schema
	if err := createTestSchema(db); err != nil {
		t.Fatalf("Failed to create test schema: %v", err)
	}

	// Cleanup when test ends
	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// createTestSchema creates all database tables for testing.
// Schema is synchronized with the production migrations.
func createTestSchema(db *sql.DB) error {
	schema := `
		-- Organization settings mirror
		CREATE TABLE organization (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			share_percent FLOAT NOT NULL DEFAULT 20,
			default_payout_method VARCHAR(20) NOT NULL DEFAULT 'LEASE_CREDIT',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		-- Tenant mirror
		CREATE TABLE tenant (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			organization_id VARCHAR(36) NOT NULL,
			first_name VARCHAR(100) NOT NULL,
			last_name VARCHAR(100) NOT NULL,
			email VARCHAR(255),
			FOREIGN KEY(organization_id) REFERENCES organization(id)
		);

		-- Lease mirror
		CREATE TABLE lease (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			organization_id VARCHAR(36) NOT NULL,
			tenant_id VARCHAR(36),
			unit VARCHAR(100),
			start_date DATE NOT NULL,
			end_date DATE,
			status VARCHAR(10) NOT NULL DEFAULT 'ACTIVE',
			FOREIGN KEY(organization_id) REFERENCES organization(id),
			FOREIGN KEY(tenant_id) REFERENCES tenant(id)
		);

		-- Security deposit table
		CREATE TABLE security_deposit (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			organization_id VARCHAR(36) NOT NULL,
			lease_id VARCHAR(36) NOT NULL,
			tenant_id VARCHAR(36) NOT NULL,
			amount FLOAT NOT NULL,
			date_received DATE NOT NULL,
			payment_method VARCHAR(20) NOT NULL,
			transaction_reference VARCHAR(100),
			status VARCHAR(20) NOT NULL DEFAULT 'HELD',
			in_pool BOOLEAN NOT NULL DEFAULT FALSE,
			pool_entry_date DATETIME,
			pool_exit_date DATETIME,
			refund_amount FLOAT,
			deductions_amount FLOAT,
			deductions_reason TEXT,
			refund_method VARCHAR(20),
			refund_reference VARCHAR(100),
			refund_processed_date DATETIME,
			created_by VARCHAR(36),
			last_modified_by VARCHAR(36),
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			deleted_at DATETIME,
			FOREIGN KEY(organization_id) REFERENCES organization(id),
			FOREIGN KEY(lease_id) REFERENCES lease(id),
			FOREIGN KEY(tenant_id) REFERENCES tenant(id)
		);

		CREATE UNIQUE INDEX ux_security_deposit_lease
			ON security_deposit(lease_id) WHERE deleted_at IS NULL;

		-- Investment pool table
		CREATE TABLE investment_pool (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			organization_id VARCHAR(36) NOT NULL,
			year INTEGER NOT NULL,
			starting_balance FLOAT NOT NULL DEFAULT 0,
			ending_balance FLOAT NOT NULL DEFAULT 0,
			total_earnings FLOAT NOT NULL DEFAULT 0,
			return_rate FLOAT NOT NULL DEFAULT 0,
			org_share_percent FLOAT NOT NULL DEFAULT 20,
			org_share FLOAT NOT NULL DEFAULT 0,
			tenant_share_total FLOAT NOT NULL DEFAULT 0,
			active_lease_count INTEGER NOT NULL DEFAULT 0,
			dividend_per_lease FLOAT NOT NULL DEFAULT 0,
			status VARCHAR(20) NOT NULL DEFAULT 'OPEN',
			calculated_at DATETIME,
			distributed_at DATETIME,
			created_by VARCHAR(36),
			last_modified_by VARCHAR(36),
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			deleted_at DATETIME,
			FOREIGN KEY(organization_id) REFERENCES organization(id)
		);

		CREATE UNIQUE INDEX ux_investment_pool_org_year
			ON investment_pool(organization_id, year) WHERE deleted_at IS NULL;

		-- Dividend table
		CREATE TABLE security_deposit_dividend (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			organization_id VARCHAR(36) NOT NULL,
			deposit_id VARCHAR(36) NOT NULL,
			pool_id VARCHAR(36) NOT NULL,
			lease_id VARCHAR(36) NOT NULL,
			tenant_id VARCHAR(36) NOT NULL,
			year INTEGER NOT NULL,
			base_amount FLOAT NOT NULL DEFAULT 0,
			proration_factor FLOAT NOT NULL DEFAULT 0,
			amount FLOAT NOT NULL DEFAULT 0,
			months_in_pool INTEGER NOT NULL DEFAULT 0,
			payment_method VARCHAR(20) NOT NULL DEFAULT 'PENDING',
			status VARCHAR(20) NOT NULL DEFAULT 'PENDING',
			choice_at DATETIME,
			paid_at DATETIME,
			payment_reference VARCHAR(100),
			mailing_address TEXT,
			created_by VARCHAR(36),
			last_modified_by VARCHAR(36),
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			deleted_at DATETIME,
			FOREIGN KEY(organization_id) REFERENCES organization(id),
			FOREIGN KEY(deposit_id) REFERENCES security_deposit(id),
			FOREIGN KEY(pool_id) REFERENCES investment_pool(id),
			FOREIGN KEY(lease_id) REFERENCES lease(id),
			FOREIGN KEY(tenant_id) REFERENCES tenant(id)
		);

		CREATE UNIQUE INDEX ux_dividend_deposit_year
			ON security_deposit_dividend(deposit_id, year);

		-- Goose version table, queried by the system version endpoint
		CREATE TABLE goose_db_version (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			version_id INTEGER NOT NULL,
			is_applied INTEGER NOT NULL,
			tstamp TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);

		-- Indexes for performance
		CREATE INDEX ix_security_deposit_org ON security_deposit(organization_id);
		CREATE INDEX ix_security_deposit_status ON security_deposit(status);
		CREATE INDEX ix_security_deposit_pool_entry ON security_deposit(pool_entry_date);
		CREATE INDEX ix_dividend_tenant ON security_deposit_dividend(tenant_id);
		CREATE INDEX ix_dividend_org_year ON security_deposit_dividend(organization_id, year);
		CREATE INDEX ix_lease_org ON lease(organization_id);
	`

	_, err := db.Exec(schema)
	return err
}

// CleanDatabase truncates all tables in dependency order.
// Useful for reusing the same database across multiple tests.
func CleanDatabase(t *testing.T, db *sql.DB) {
	t.Helper()

	// Order matters: delete children before parents due to foreign keys
	tables := []string{
		"security_deposit_dividend",
		"investment_pool",
		"security_deposit",
		"lease",
		"tenant",
		"organization",
	}

	for _, table := range tables {
		query := "DELETE FROM " + table
		if _, err := db.Exec(query); err != nil {
			t.Fatalf("Failed to clean table %s: %v", table, err)
		}
	}
}

// CountRows returns the number of rows in a table.
// Useful for assertions in tests.
func CountRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()

	var count int
	query := "SELECT COUNT(*) FROM " + table
	err := db.QueryRow(query).Scan(&count)
	if err != nil {
		t.Fatalf("Failed to count rows in %s: %v", table, err)
	}

	return count
}

// AssertRowCount asserts that a table has the expected number of rows.
func AssertRowCount(t *testing.T, db *sql.DB, table string, expected int) {
	t.Helper()

	actual := CountRows(t, db, table)
	if actual != expected {
		t.Errorf("Expected %d rows in %s, got %d", expected, table, actual)
	}
}
