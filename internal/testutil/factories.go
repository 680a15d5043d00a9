package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/rentpool/Deposit-Pool-Backend/internal/model"
)

// OrganizationBuilder provides a fluent interface for creating test organizations.
//
// Example usage:
//
//	// Simple creation with defaults
//	org := testutil.NewOrganization().Build(t, db)
//
//	// Customized organization
//	org := testutil.NewOrganization().
//	    WithSharePercent(25).
//	    WithDefaultPayoutMethod(model.PaymentMethodCheck).
//	    Build(t, db)
type OrganizationBuilder struct {
	ID                  string
	Name                string
	SharePercent        float64
	DefaultPayoutMethod string
}

// NewOrganization creates an OrganizationBuilder with sensible defaults.
func NewOrganization() *OrganizationBuilder {
	return &OrganizationBuilder{
		ID:                  MakeID(),
		Name:                MakeName("Test Organization"),
		SharePercent:        model.DefaultOrgSharePercent,
		DefaultPayoutMethod: model.PaymentMethodLeaseCredit,
	}
}

// WithID sets a custom ID.
func (b *OrganizationBuilder) WithID(id string) *OrganizationBuilder {
	b.ID = id
	return b
}

// WithName sets a custom name.
func (b *OrganizationBuilder) WithName(name string) *OrganizationBuilder {
	b.Name = name
	return b
}

// WithSharePercent sets the organization's share of pool earnings.
func (b *OrganizationBuilder) WithSharePercent(percent float64) *OrganizationBuilder {
	b.SharePercent = percent
	return b
}

// WithDefaultPayoutMethod sets the default dividend payout method.
func (b *OrganizationBuilder) WithDefaultPayoutMethod(method string) *OrganizationBuilder {
	b.DefaultPayoutMethod = method
	return b
}

// Build creates the organization in the database and returns it.
func (b *OrganizationBuilder) Build(t *testing.T, db *sql.DB) model.Organization {
	t.Helper()

	now := time.Now().UTC()
	query := `
		INSERT INTO organization (id, name, share_percent, default_payout_method, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query, b.ID, b.Name, b.SharePercent, b.DefaultPayoutMethod, now.Format(time.RFC3339))
	if err != nil {
		t.Fatalf("Failed to create test organization: %v", err)
	}

	return model.Organization{
		ID:                  b.ID,
		Name:                b.Name,
		SharePercent:        b.SharePercent,
		DefaultPayoutMethod: b.DefaultPayoutMethod,
		CreatedAt:           now,
	}
}

// TenantBuilder provides a fluent interface for creating test tenants.
type TenantBuilder struct {
	ID             string
	OrganizationID string
	FirstName      string
	LastName       string
	Email          string
}

// NewTenant creates a TenantBuilder scoped to the given organization.
func NewTenant(orgID string) *TenantBuilder {
	return &TenantBuilder{
		ID:             MakeID(),
		OrganizationID: orgID,
		FirstName:      "Test",
		LastName:       MakeName("Tenant"),
		Email:          "tenant@example.com",
	}
}

// WithID sets a custom ID.
func (b *TenantBuilder) WithID(id string) *TenantBuilder {
	b.ID = id
	return b
}

// WithName sets the tenant's first and last name.
func (b *TenantBuilder) WithName(first, last string) *TenantBuilder {
	b.FirstName = first
	b.LastName = last
	return b
}

// Build creates the tenant in the database and returns it.
func (b *TenantBuilder) Build(t *testing.T, db *sql.DB) model.Tenant {
	t.Helper()

	query := `
		INSERT INTO tenant (id, organization_id, first_name, last_name, email)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query, b.ID, b.OrganizationID, b.FirstName, b.LastName, b.Email)
	if err != nil {
		t.Fatalf("Failed to create test tenant: %v", err)
	}

	return model.Tenant{
		ID:             b.ID,
		OrganizationID: b.OrganizationID,
		FirstName:      b.FirstName,
		LastName:       b.LastName,
		Email:          b.Email,
	}
}

// LeaseBuilder provides a fluent interface for creating test leases.
//
// Example usage:
//
//	lease := testutil.NewLease(org.ID, tenant.ID).Build(t, db)
//
//	ended := testutil.NewLease(org.ID, tenant.ID).
//	    Ended(time.Now().AddDate(0, -1, 0)).
//	    Build(t, db)
type LeaseBuilder struct {
	ID             string
	OrganizationID string
	TenantID       string
	Unit           string
	StartDate      time.Time
	EndDate        *time.Time
	Status         model.LeaseStatus
}

// NewLease creates a LeaseBuilder with sensible defaults. Pass an empty
// tenantID for a lease with no tenant attached.
func NewLease(orgID, tenantID string) *LeaseBuilder {
	return &LeaseBuilder{
		ID:             MakeID(),
		OrganizationID: orgID,
		TenantID:       tenantID,
		Unit:           MakeName("Unit"),
		StartDate:      time.Now().UTC().AddDate(-1, 0, 0),
		Status:         model.LeaseStatusActive,
	}
}

// WithID sets a custom ID.
func (b *LeaseBuilder) WithID(id string) *LeaseBuilder {
	b.ID = id
	return b
}

// WithStartDate sets the lease start date.
func (b *LeaseBuilder) WithStartDate(start time.Time) *LeaseBuilder {
	b.StartDate = start
	return b
}

// WithEndDate sets the lease end date without changing the status.
func (b *LeaseBuilder) WithEndDate(end time.Time) *LeaseBuilder {
	b.EndDate = &end
	return b
}

// Ended marks the lease as ended on the given date.
func (b *LeaseBuilder) Ended(end time.Time) *LeaseBuilder {
	b.EndDate = &end
	b.Status = model.LeaseStatusEnded
	return b
}

// Build creates the lease in the database and returns it.
func (b *LeaseBuilder) Build(t *testing.T, db *sql.DB) model.Lease {
	t.Helper()

	var tenantID any
	if b.TenantID != "" {
		tenantID = b.TenantID
	}
	var endDate any
	if b.EndDate != nil {
		endDate = b.EndDate.Format(time.RFC3339)
	}

	query := `
		INSERT INTO lease (id, organization_id, tenant_id, unit, start_date, end_date, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query, b.ID, b.OrganizationID, tenantID, b.Unit,
		b.StartDate.Format(time.RFC3339), endDate, b.Status)
	if err != nil {
		t.Fatalf("Failed to create test lease: %v", err)
	}

	return model.Lease{
		ID:             b.ID,
		OrganizationID: b.OrganizationID,
		TenantID:       b.TenantID,
		Unit:           b.Unit,
		StartDate:      b.StartDate,
		EndDate:        b.EndDate,
		Status:         b.Status,
	}
}

// DepositBuilder provides a fluent interface for creating test deposits.
//
// Example usage:
//
//	deposit := testutil.NewDeposit(org.ID, lease.ID, tenant.ID).
//	    WithAmount(1500).
//	    InPoolSince(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)).
//	    Build(t, db)
type DepositBuilder struct {
	ID             string
	OrganizationID string
	LeaseID        string
	TenantID       string
	Amount         float64
	DateReceived   time.Time
	PaymentMethod  string
	Status         model.DepositStatus
	InPool         bool
	PoolEntryDate  *time.Time
	PoolExitDate   *time.Time
}

// NewDeposit creates a DepositBuilder with sensible defaults.
func NewDeposit(orgID, leaseID, tenantID string) *DepositBuilder {
	return &DepositBuilder{
		ID:             MakeID(),
		OrganizationID: orgID,
		LeaseID:        leaseID,
		TenantID:       tenantID,
		Amount:         1000,
		DateReceived:   time.Now().UTC().AddDate(-1, 0, 0),
		PaymentMethod:  "BANK_TRANSFER",
		Status:         model.DepositStatusHeld,
	}
}

// WithID sets a custom ID.
func (b *DepositBuilder) WithID(id string) *DepositBuilder {
	b.ID = id
	return b
}

// WithAmount sets the deposit principal.
func (b *DepositBuilder) WithAmount(amount float64) *DepositBuilder {
	b.Amount = amount
	return b
}

// WithStatus sets the refund lifecycle status.
func (b *DepositBuilder) WithStatus(status model.DepositStatus) *DepositBuilder {
	b.Status = status
	return b
}

// InPoolSince marks the deposit as a pool member with the given entry date.
func (b *DepositBuilder) InPoolSince(entry time.Time) *DepositBuilder {
	b.InPool = true
	b.PoolEntryDate = &entry
	return b
}

// ExitedPool records a pool exit date and removes the membership flag.
func (b *DepositBuilder) ExitedPool(exit time.Time) *DepositBuilder {
	b.InPool = false
	b.PoolExitDate = &exit
	return b
}

// Build creates the deposit in the database and returns it.
func (b *DepositBuilder) Build(t *testing.T, db *sql.DB) model.SecurityDeposit {
	t.Helper()

	now := time.Now().UTC()
	var entry, exit any
	if b.PoolEntryDate != nil {
		entry = b.PoolEntryDate.Format(time.RFC3339)
	}
	if b.PoolExitDate != nil {
		exit = b.PoolExitDate.Format(time.RFC3339)
	}

	query := `
		INSERT INTO security_deposit (
			id, organization_id, lease_id, tenant_id, amount, date_received,
			payment_method, status, in_pool, pool_entry_date, pool_exit_date,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query,
		b.ID, b.OrganizationID, b.LeaseID, b.TenantID, b.Amount,
		b.DateReceived.Format(time.RFC3339), b.PaymentMethod, b.Status,
		b.InPool, entry, exit,
		now.Format(time.RFC3339), now.Format(time.RFC3339),
	)
	if err != nil {
		t.Fatalf("Failed to create test deposit: %v", err)
	}

	return model.SecurityDeposit{
		ID:             b.ID,
		OrganizationID: b.OrganizationID,
		LeaseID:        b.LeaseID,
		TenantID:       b.TenantID,
		Amount:         b.Amount,
		DateReceived:   b.DateReceived,
		PaymentMethod:  b.PaymentMethod,
		Status:         b.Status,
		InPool:         b.InPool,
		PoolEntryDate:  b.PoolEntryDate,
		PoolExitDate:   b.PoolExitDate,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// PoolBuilder provides a fluent interface for creating test investment pools.
//
// Example usage:
//
//	pool := testutil.NewPool(org.ID, 2024).
//	    WithEarnings(100000, 5000).
//	    Build(t, db)
type PoolBuilder struct {
	ID               string
	OrganizationID   string
	Year             int
	StartingBalance  float64
	EndingBalance    float64
	TotalEarnings    float64
	OrgSharePercent  float64
	OrgShare         float64
	TenantShareTotal float64
	Status           model.PoolStatus
}

// NewPool creates a PoolBuilder with sensible defaults.
func NewPool(orgID string, year int) *PoolBuilder {
	return &PoolBuilder{
		ID:              MakeID(),
		OrganizationID:  orgID,
		Year:            year,
		OrgSharePercent: model.DefaultOrgSharePercent,
		Status:          model.PoolStatusOpen,
	}
}

// WithID sets a custom ID.
func (b *PoolBuilder) WithID(id string) *PoolBuilder {
	b.ID = id
	return b
}

// WithEarnings records balances and earnings. Shares are not derived here;
// use WithShares for an already-split pool.
func (b *PoolBuilder) WithEarnings(startingBalance, totalEarnings float64) *PoolBuilder {
	b.StartingBalance = startingBalance
	b.EndingBalance = startingBalance + totalEarnings
	b.TotalEarnings = totalEarnings
	return b
}

// WithShares sets the organization and tenant shares directly.
func (b *PoolBuilder) WithShares(orgShare, tenantShareTotal float64) *PoolBuilder {
	b.OrgShare = orgShare
	b.TenantShareTotal = tenantShareTotal
	return b
}

// WithStatus sets the pool lifecycle status.
func (b *PoolBuilder) WithStatus(status model.PoolStatus) *PoolBuilder {
	b.Status = status
	return b
}

// Build creates the pool in the database and returns it.
func (b *PoolBuilder) Build(t *testing.T, db *sql.DB) model.InvestmentPool {
	t.Helper()

	now := time.Now().UTC()
	query := `
		INSERT INTO investment_pool (
			id, organization_id, year, starting_balance, ending_balance,
			total_earnings, org_share_percent, org_share, tenant_share_total,
			status, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query,
		b.ID, b.OrganizationID, b.Year, b.StartingBalance, b.EndingBalance,
		b.TotalEarnings, b.OrgSharePercent, b.OrgShare, b.TenantShareTotal,
		b.Status, now.Format(time.RFC3339), now.Format(time.RFC3339),
	)
	if err != nil {
		t.Fatalf("Failed to create test pool: %v", err)
	}

	return model.InvestmentPool{
		ID:               b.ID,
		OrganizationID:   b.OrganizationID,
		Year:             b.Year,
		StartingBalance:  b.StartingBalance,
		EndingBalance:    b.EndingBalance,
		TotalEarnings:    b.TotalEarnings,
		OrgSharePercent:  b.OrgSharePercent,
		OrgShare:         b.OrgShare,
		TenantShareTotal: b.TenantShareTotal,
		Status:           b.Status,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// DividendBuilder provides a fluent interface for creating test dividends.
//
// Example usage:
//
//	dividend := testutil.NewDividend(org.ID, deposit, pool.ID).
//	    WithAmount(150).
//	    WithStatus(model.DividendStatusApplied).
//	    Build(t, db)
type DividendBuilder struct {
	ID              string
	OrganizationID  string
	DepositID       string
	PoolID          string
	LeaseID         string
	TenantID        string
	Year            int
	BaseAmount      float64
	ProrationFactor float64
	Amount          float64
	MonthsInPool    int
	PaymentMethod   string
	Status          model.DividendStatus
}

// NewDividend creates a DividendBuilder keyed to the given deposit and pool.
func NewDividend(orgID string, deposit model.SecurityDeposit, poolID string, year int) *DividendBuilder {
	return &DividendBuilder{
		ID:              MakeID(),
		OrganizationID:  orgID,
		DepositID:       deposit.ID,
		PoolID:          poolID,
		LeaseID:         deposit.LeaseID,
		TenantID:        deposit.TenantID,
		Year:            year,
		BaseAmount:      100,
		ProrationFactor: 1,
		Amount:          100,
		MonthsInPool:    12,
		PaymentMethod:   model.PaymentMethodLeaseCredit,
		Status:          model.DividendStatusPending,
	}
}

// WithID sets a custom ID.
func (b *DividendBuilder) WithID(id string) *DividendBuilder {
	b.ID = id
	return b
}

// WithAmount sets the base and final amount with a full-year factor.
func (b *DividendBuilder) WithAmount(amount float64) *DividendBuilder {
	b.BaseAmount = amount
	b.Amount = amount
	return b
}

// WithProration sets the months in pool and proration factor.
func (b *DividendBuilder) WithProration(months int, factor float64) *DividendBuilder {
	b.MonthsInPool = months
	b.ProrationFactor = factor
	return b
}

// WithStatus sets the settlement status.
func (b *DividendBuilder) WithStatus(status model.DividendStatus) *DividendBuilder {
	b.Status = status
	return b
}

// WithPaymentMethod sets the payout method.
func (b *DividendBuilder) WithPaymentMethod(method string) *DividendBuilder {
	b.PaymentMethod = method
	return b
}

// Build creates the dividend in the database and returns it.
func (b *DividendBuilder) Build(t *testing.T, db *sql.DB) model.SecurityDepositDividend {
	t.Helper()

	now := time.Now().UTC()
	query := `
		INSERT INTO security_deposit_dividend (
			id, organization_id, deposit_id, pool_id, lease_id, tenant_id, year,
			base_amount, proration_factor, amount, months_in_pool,
			payment_method, status, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query,
		b.ID, b.OrganizationID, b.DepositID, b.PoolID, b.LeaseID, b.TenantID, b.Year,
		b.BaseAmount, b.ProrationFactor, b.Amount, b.MonthsInPool,
		b.PaymentMethod, b.Status, now.Format(time.RFC3339), now.Format(time.RFC3339),
	)
	if err != nil {
		t.Fatalf("Failed to create test dividend: %v", err)
	}

	return model.SecurityDepositDividend{
		ID:              b.ID,
		OrganizationID:  b.OrganizationID,
		DepositID:       b.DepositID,
		PoolID:          b.PoolID,
		LeaseID:         b.LeaseID,
		TenantID:        b.TenantID,
		Year:            b.Year,
		BaseAmount:      b.BaseAmount,
		ProrationFactor: b.ProrationFactor,
		Amount:          b.Amount,
		MonthsInPool:    b.MonthsInPool,
		PaymentMethod:   b.PaymentMethod,
		Status:          b.Status,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// Convenience functions

// CreateLeaseWithTenant creates an organization-scoped tenant and an active
// lease for them in one call.
func CreateLeaseWithTenant(t *testing.T, db *sql.DB, orgID string) (model.Tenant, model.Lease) {
	t.Helper()

	tenant := NewTenant(orgID).Build(t, db)
	lease := NewLease(orgID, tenant.ID).Build(t, db)
	return tenant, lease
}

// CreatePooledDeposit creates a tenant, lease and deposit that has been in
// the pool since the given entry date.
func CreatePooledDeposit(t *testing.T, db *sql.DB, orgID string, entry time.Time) model.SecurityDeposit {
	t.Helper()

	_, lease := CreateLeaseWithTenant(t, db, orgID)
	return NewDeposit(orgID, lease.ID, lease.TenantID).InPoolSince(entry).Build(t, db)
}
