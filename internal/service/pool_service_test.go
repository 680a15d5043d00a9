package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rentpool/Deposit-Pool-Backend/internal/apperrors"
	"github.com/rentpool/Deposit-Pool-Backend/internal/model"
	"github.com/rentpool/Deposit-Pool-Backend/internal/testutil"
)

// TestPoolService_GetOrCreate tests the one-pool-per-year registry.
//
// WHY: Every pool operation funnels through getOrCreate; a duplicate pool for
// the same year would split performance and dividends across two records.
func TestPoolService_GetOrCreate(t *testing.T) {
	t.Run("creates an open pool seeded with the organization split", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPoolService(t, db)
		org := testutil.NewOrganization().WithSharePercent(30).Build(t, db)

		// Execute
		pool, err := svc.GetOrCreate(context.Background(), org.ID, 2024, "user-1")

		// Assert
		if err != nil {
			t.Fatalf("GetOrCreate() returned unexpected error: %v", err)
		}
		if pool.Status != model.PoolStatusOpen {
			t.Errorf("Expected status OPEN, got %s", pool.Status)
		}
		if pool.OrgSharePercent != 30 {
			t.Errorf("Expected org share percent 30, got %v", pool.OrgSharePercent)
		}
		testutil.AssertRowCount(t, db, "investment_pool", 1)
	})

	t.Run("repeated calls return the same pool", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPoolService(t, db)
		org := testutil.NewOrganization().Build(t, db)

		first, err := svc.GetOrCreate(context.Background(), org.ID, 2024, "user-1")
		if err != nil {
			t.Fatalf("GetOrCreate() returned unexpected error: %v", err)
		}
		second, err := svc.GetOrCreate(context.Background(), org.ID, 2024, "user-1")
		if err != nil {
			t.Fatalf("second GetOrCreate() returned unexpected error: %v", err)
		}

		if first.ID != second.ID {
			t.Errorf("Expected same pool %s, got %s", first.ID, second.ID)
		}
		testutil.AssertRowCount(t, db, "investment_pool", 1)
	})

	t.Run("falls back to the default split for unknown organizations", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPoolService(t, db)

		pool, err := svc.GetOrCreate(context.Background(), testutil.MakeID(), 2024, "user-1")
		if err != nil {
			t.Fatalf("GetOrCreate() returned unexpected error: %v", err)
		}
		if pool.OrgSharePercent != model.DefaultOrgSharePercent {
			t.Errorf("Expected default share percent, got %v", pool.OrgSharePercent)
		}
	})
}

// TestPoolService_RecordPerformance tests the earnings split.
//
// WHY: The split decides how much money flows back to tenants. Losses must be
// fully absorbed by the organization so no negative dividends can ever occur.
func TestPoolService_RecordPerformance(t *testing.T) {
	t.Run("splits positive earnings between organization and tenants", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPoolService(t, db)
		org := testutil.NewOrganization().WithSharePercent(20).Build(t, db)

		pool, err := svc.RecordPerformance(context.Background(), org.ID, 2024, 100000, 105000, 5000, "user-1")
		if err != nil {
			t.Fatalf("RecordPerformance() returned unexpected error: %v", err)
		}

		if pool.OrgShare != 1000 {
			t.Errorf("Expected org share 1000, got %v", pool.OrgShare)
		}
		if pool.TenantShareTotal != 4000 {
			t.Errorf("Expected tenant share 4000, got %v", pool.TenantShareTotal)
		}
		if pool.ReturnRate != 0.05 {
			t.Errorf("Expected return rate 0.05, got %v", pool.ReturnRate)
		}
		if pool.Status != model.PoolStatusOpen {
			t.Errorf("Expected status untouched at OPEN, got %s", pool.Status)
		}
	})

	t.Run("organization absorbs losses", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPoolService(t, db)
		org := testutil.NewOrganization().Build(t, db)

		pool, err := svc.RecordPerformance(context.Background(), org.ID, 2024, 100000, 98000, -2000, "user-1")
		if err != nil {
			t.Fatalf("RecordPerformance() returned unexpected error: %v", err)
		}

		if pool.OrgShare != 0 || pool.TenantShareTotal != 0 {
			t.Errorf("Expected both shares zero on loss, got org=%v tenants=%v",
				pool.OrgShare, pool.TenantShareTotal)
		}
		if pool.ReturnRate != -0.02 {
			t.Errorf("Expected return rate -0.02, got %v", pool.ReturnRate)
		}
	})

	t.Run("zero starting balance yields zero return rate", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPoolService(t, db)
		org := testutil.NewOrganization().Build(t, db)

		pool, err := svc.RecordPerformance(context.Background(), org.ID, 2024, 0, 0, 0, "user-1")
		if err != nil {
			t.Fatalf("RecordPerformance() returned unexpected error: %v", err)
		}
		if pool.ReturnRate != 0 {
			t.Errorf("Expected return rate 0, got %v", pool.ReturnRate)
		}
	})

	t.Run("rejects a closed pool", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPoolService(t, db)
		org := testutil.NewOrganization().Build(t, db)
		testutil.NewPool(org.ID, 2024).WithStatus(model.PoolStatusClosed).Build(t, db)

		_, err := svc.RecordPerformance(context.Background(), org.ID, 2024, 100000, 105000, 5000, "user-1")
		if !errors.Is(err, apperrors.ErrPoolClosed) {
			t.Errorf("Expected ErrPoolClosed, got %v", err)
		}
	})
}

// TestPoolService_Close tests pool closure.
func TestPoolService_Close(t *testing.T) {
	t.Run("marks the pool closed with a distribution timestamp", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPoolService(t, db)
		org := testutil.NewOrganization().Build(t, db)
		pool := testutil.NewPool(org.ID, 2024).WithStatus(model.PoolStatusCalculated).Build(t, db)

		closed, err := svc.Close(context.Background(), org.ID, pool.ID, "user-1")
		if err != nil {
			t.Fatalf("Close() returned unexpected error: %v", err)
		}

		if closed.Status != model.PoolStatusClosed {
			t.Errorf("Expected status CLOSED, got %s", closed.Status)
		}
		if closed.DistributedAt == nil {
			t.Error("Expected distribution timestamp set")
		}
	})

	t.Run("fails for unknown pool", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPoolService(t, db)
		org := testutil.NewOrganization().Build(t, db)

		_, err := svc.Close(context.Background(), org.ID, testutil.MakeID(), "user-1")
		if !errors.Is(err, apperrors.ErrPoolNotFound) {
			t.Errorf("Expected ErrPoolNotFound, got %v", err)
		}
	})
}

// TestPoolService_ListPools tests the listing order.
func TestPoolService_ListPools(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestPoolService(t, db)
	org := testutil.NewOrganization().Build(t, db)

	testutil.NewPool(org.ID, 2022).Build(t, db)
	testutil.NewPool(org.ID, 2024).Build(t, db)
	testutil.NewPool(org.ID, 2023).Build(t, db)

	pools, err := svc.ListPools(org.ID)
	if err != nil {
		t.Fatalf("ListPools() returned unexpected error: %v", err)
	}

	if len(pools) != 3 {
		t.Fatalf("Expected 3 pools, got %d", len(pools))
	}
	for i, year := range []int{2024, 2023, 2022} {
		if pools[i].Year != year {
			t.Errorf("Expected pools[%d] year %d, got %d", i, year, pools[i].Year)
		}
	}
}
