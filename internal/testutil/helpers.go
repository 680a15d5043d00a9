package testutil

import (
	"database/sql"
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/rentpool/Deposit-Pool-Backend/internal/repository"
	"github.com/rentpool/Deposit-Pool-Backend/internal/secure"
	"github.com/rentpool/Deposit-Pool-Backend/internal/service"
)

func NewTestDepositService(t *testing.T, db *sql.DB) *service.DepositService {
	t.Helper()

	depositRepo := repository.NewDepositRepository(db)
	leaseRepo := repository.NewLeaseRepository(db)
	dividendRepo := repository.NewDividendRepository(db)

	return service.NewDepositService(
		depositRepo,
		leaseRepo,
		dividendRepo,
	)
}

func NewTestPoolService(t *testing.T, db *sql.DB) *service.PoolService {
	t.Helper()

	poolRepo := repository.NewPoolRepository(db)
	orgRepo := repository.NewOrganizationRepository(db)

	return service.NewPoolService(
		poolRepo,
		orgRepo,
	)
}

func NewTestDividendService(t *testing.T, db *sql.DB) *service.DividendService {
	t.Helper()

	dividendRepo := repository.NewDividendRepository(db)
	depositRepo := repository.NewDepositRepository(db)
	orgRepo := repository.NewOrganizationRepository(db)
	poolService := NewTestPoolService(t, db)

	return service.NewDividendService(
		dividendRepo,
		depositRepo,
		orgRepo,
		poolService,
		NewTestVault(t),
	)
}

func NewTestSystemService(t *testing.T, db *sql.DB) *service.SystemService {
	t.Helper()

	return service.NewSystemService(db)
}

// NewTestVault creates a Vault with a freshly generated process-local key.
func NewTestVault(t *testing.T) *secure.Vault {
	t.Helper()

	vault, err := secure.NewVault("")
	if err != nil {
		t.Fatalf("Failed to create test vault: %v", err)
	}
	return vault
}

// MakeID generates a UUID string for use in tests.
//
// Example usage:
//
//	id := testutil.MakeID()
//	// Returns: "550e8400-e29b-41d4-a716-446655440000"
func MakeID() string {
	return uuid.New().String()
}

// MakeName generates a unique name for testing.
//
// Example usage:
//
//	name := testutil.MakeName("Test Organization")
//	// Returns: "Test Organization ABC123"
func MakeName(base string) string {
	if base == "" {
		base = "Test"
	}
	return base + " " + randomAlphanumeric(6)
}

// randomAlphanumeric generates a random alphanumeric string of specified length.
func randomAlphanumeric(length int) string {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, length)
	for i := range result {
		//nolint:gosec // G404: Using math/rand for test data generation is acceptable
		result[i] = charset[rand.Intn(len(charset))]
	}
	return string(result)
}
