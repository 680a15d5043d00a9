package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rentpool/Deposit-Pool-Backend/internal/api/request"
	"github.com/rentpool/Deposit-Pool-Backend/internal/apperrors"
	"github.com/rentpool/Deposit-Pool-Backend/internal/model"
	"github.com/rentpool/Deposit-Pool-Backend/internal/testutil"
)

// TestDepositService_Collect tests deposit collection.
//
// WHY: Collection is the entry point of the whole deposit lifecycle. It must
// enforce the one-deposit-per-lease rule and resolve the tenant correctly.
func TestDepositService_Collect(t *testing.T) {
	t.Run("collects a deposit with tenant resolved from lease", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestDepositService(t, db)
		org := testutil.NewOrganization().Build(t, db)
		tenant, lease := testutil.CreateLeaseWithTenant(t, db, org.ID)

		// Execute
		deposit, err := svc.Collect(context.Background(), org.ID, request.CollectDepositRequest{
			LeaseID:       lease.ID,
			Amount:        1200,
			PaymentMethod: "BANK_TRANSFER",
		}, "user-1")

		// Assert
		if err != nil {
			t.Fatalf("Collect() returned unexpected error: %v", err)
		}
		if deposit.TenantID != tenant.ID {
			t.Errorf("Expected tenant %s resolved from lease, got %s", tenant.ID, deposit.TenantID)
		}
		if deposit.Status != model.DepositStatusHeld {
			t.Errorf("Expected status HELD, got %s", deposit.Status)
		}
		if deposit.InPool {
			t.Error("Expected new deposit to start outside the pool")
		}
		testutil.AssertRowCount(t, db, "security_deposit", 1)
	})

	t.Run("explicit tenant overrides the lease tenant", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestDepositService(t, db)
		org := testutil.NewOrganization().Build(t, db)
		_, lease := testutil.CreateLeaseWithTenant(t, db, org.ID)
		other := testutil.NewTenant(org.ID).Build(t, db)

		deposit, err := svc.Collect(context.Background(), org.ID, request.CollectDepositRequest{
			LeaseID:       lease.ID,
			TenantID:      other.ID,
			Amount:        1000,
			PaymentMethod: "CHECK",
		}, "user-1")
		if err != nil {
			t.Fatalf("Collect() returned unexpected error: %v", err)
		}

		if deposit.TenantID != other.ID {
			t.Errorf("Expected explicit tenant %s, got %s", other.ID, deposit.TenantID)
		}
	})

	t.Run("rejects a second deposit on the same lease", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestDepositService(t, db)
		org := testutil.NewOrganization().Build(t, db)
		_, lease := testutil.CreateLeaseWithTenant(t, db, org.ID)

		req := request.CollectDepositRequest{
			LeaseID:       lease.ID,
			Amount:        1000,
			PaymentMethod: "BANK_TRANSFER",
		}
		if _, err := svc.Collect(context.Background(), org.ID, req, "user-1"); err != nil {
			t.Fatalf("first Collect() returned unexpected error: %v", err)
		}

		_, err := svc.Collect(context.Background(), org.ID, req, "user-1")
		if !errors.Is(err, apperrors.ErrDepositExists) {
			t.Errorf("Expected ErrDepositExists, got %v", err)
		}
		testutil.AssertRowCount(t, db, "security_deposit", 1)
	})

	t.Run("fails when lease does not exist", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestDepositService(t, db)
		org := testutil.NewOrganization().Build(t, db)

		_, err := svc.Collect(context.Background(), org.ID, request.CollectDepositRequest{
			LeaseID:       testutil.MakeID(),
			Amount:        1000,
			PaymentMethod: "BANK_TRANSFER",
		}, "user-1")
		if !errors.Is(err, apperrors.ErrLeaseNotFound) {
			t.Errorf("Expected ErrLeaseNotFound, got %v", err)
		}
	})

	t.Run("fails when no tenant can be resolved", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestDepositService(t, db)
		org := testutil.NewOrganization().Build(t, db)
		lease := testutil.NewLease(org.ID, "").Build(t, db)

		_, err := svc.Collect(context.Background(), org.ID, request.CollectDepositRequest{
			LeaseID:       lease.ID,
			Amount:        1000,
			PaymentMethod: "BANK_TRANSFER",
		}, "user-1")
		if !errors.Is(err, apperrors.ErrMissingTenant) {
			t.Errorf("Expected ErrMissingTenant, got %v", err)
		}
	})
}

// TestDepositService_PoolMembership tests the enter/exit pool toggles.
//
// WHY: Pool membership drives dividend eligibility and proration. The
// transitions must stamp dates and be idempotent so repeated calls from a
// retrying client never corrupt the membership window.
func TestDepositService_PoolMembership(t *testing.T) {
	t.Run("enter stamps entry date and is idempotent", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestDepositService(t, db)
		org := testutil.NewOrganization().Build(t, db)
		_, lease := testutil.CreateLeaseWithTenant(t, db, org.ID)
		deposit := testutil.NewDeposit(org.ID, lease.ID, lease.TenantID).Build(t, db)

		entered, err := svc.EnterPool(context.Background(), org.ID, deposit.ID, "user-1")
		if err != nil {
			t.Fatalf("EnterPool() returned unexpected error: %v", err)
		}
		if !entered.InPool || entered.PoolEntryDate == nil {
			t.Fatal("Expected deposit in pool with entry date stamped")
		}

		firstEntry := *entered.PoolEntryDate

		// Second call must not move the entry date
		again, err := svc.EnterPool(context.Background(), org.ID, deposit.ID, "user-1")
		if err != nil {
			t.Fatalf("second EnterPool() returned unexpected error: %v", err)
		}
		if !again.PoolEntryDate.Equal(firstEntry) {
			t.Errorf("Expected entry date unchanged %v, got %v", firstEntry, again.PoolEntryDate)
		}
	})

	t.Run("exit stamps exit date and is idempotent", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestDepositService(t, db)
		org := testutil.NewOrganization().Build(t, db)
		_, lease := testutil.CreateLeaseWithTenant(t, db, org.ID)
		entry := time.Now().UTC().AddDate(0, -6, 0)
		deposit := testutil.NewDeposit(org.ID, lease.ID, lease.TenantID).InPoolSince(entry).Build(t, db)

		exited, err := svc.ExitPool(context.Background(), org.ID, deposit.ID, "user-1")
		if err != nil {
			t.Fatalf("ExitPool() returned unexpected error: %v", err)
		}
		if exited.InPool || exited.PoolExitDate == nil {
			t.Fatal("Expected deposit out of pool with exit date stamped")
		}

		if _, err := svc.ExitPool(context.Background(), org.ID, deposit.ID, "user-1"); err != nil {
			t.Errorf("second ExitPool() returned unexpected error: %v", err)
		}
	})

	t.Run("fails for unknown deposit", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestDepositService(t, db)
		org := testutil.NewOrganization().Build(t, db)

		_, err := svc.EnterPool(context.Background(), org.ID, testutil.MakeID(), "user-1")
		if !errors.Is(err, apperrors.ErrDepositNotFound) {
			t.Errorf("Expected ErrDepositNotFound, got %v", err)
		}
	})
}

// TestDepositService_ListDepositsInPoolForYear tests the year-overlap query.
//
// WHY: Dividend eligibility is decided by this query. A deposit that exited
// before the year started, or entered after it ended, must not appear.
func TestDepositService_ListDepositsInPoolForYear(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestDepositService(t, db)
	org := testutil.NewOrganization().Build(t, db)

	// Member for the whole of 2024
	fullYear := testutil.CreatePooledDeposit(t, db, org.ID,
		time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC))

	// Entered mid-2024
	midYear := testutil.CreatePooledDeposit(t, db, org.ID,
		time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC))

	// Exited in 2023, before the year started
	_, earlyLease := testutil.CreateLeaseWithTenant(t, db, org.ID)
	testutil.NewDeposit(org.ID, earlyLease.ID, earlyLease.TenantID).
		InPoolSince(time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)).
		ExitedPool(time.Date(2023, 6, 30, 0, 0, 0, 0, time.UTC)).
		Build(t, db)

	// Entered after the year ended
	testutil.CreatePooledDeposit(t, db, org.ID,
		time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC))

	deposits, err := svc.ListDepositsInPoolForYear(org.ID, 2024)
	if err != nil {
		t.Fatalf("ListDepositsInPoolForYear() returned unexpected error: %v", err)
	}

	if len(deposits) != 2 {
		t.Fatalf("Expected 2 deposits overlapping 2024, got %d", len(deposits))
	}
	found := map[string]bool{}
	for _, d := range deposits {
		found[d.ID] = true
	}
	if !found[fullYear.ID] || !found[midYear.ID] {
		t.Errorf("Expected deposits %s and %s, got %v", fullYear.ID, midYear.ID, found)
	}
}

// TestDepositService_ListPendingRefunds tests the pending refund queue.
func TestDepositService_ListPendingRefunds(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestDepositService(t, db)
	org := testutil.NewOrganization().Build(t, db)

	// Ended lease with a held deposit: pending refund
	endedTenant := testutil.NewTenant(org.ID).Build(t, db)
	endedLease := testutil.NewLease(org.ID, endedTenant.ID).
		Ended(time.Now().UTC().AddDate(0, -1, 0)).
		Build(t, db)
	pending := testutil.NewDeposit(org.ID, endedLease.ID, endedTenant.ID).Build(t, db)

	// Active lease: not pending
	_, activeLease := testutil.CreateLeaseWithTenant(t, db, org.ID)
	testutil.NewDeposit(org.ID, activeLease.ID, activeLease.TenantID).Build(t, db)

	// Ended lease but already refunded: not pending
	refundedTenant := testutil.NewTenant(org.ID).Build(t, db)
	refundedLease := testutil.NewLease(org.ID, refundedTenant.ID).
		Ended(time.Now().UTC().AddDate(0, -2, 0)).
		Build(t, db)
	testutil.NewDeposit(org.ID, refundedLease.ID, refundedTenant.ID).
		WithStatus(model.DepositStatusRefunded).
		Build(t, db)

	deposits, err := svc.ListPendingRefunds(org.ID)
	if err != nil {
		t.Fatalf("ListPendingRefunds() returned unexpected error: %v", err)
	}

	if len(deposits) != 1 {
		t.Fatalf("Expected 1 pending refund, got %d", len(deposits))
	}
	if deposits[0].ID != pending.ID {
		t.Errorf("Expected deposit %s, got %s", pending.ID, deposits[0].ID)
	}
}

// TestDepositService_ProcessRefund tests the one-shot refund settlement.
//
// WHY: The refund is where the money conservation rule is visible: principal
// plus settled dividends minus deductions. A second refund attempt must be
// rejected without touching the stored deposit.
func TestDepositService_ProcessRefund(t *testing.T) {
	t.Run("refund includes settled dividends and deducts damages", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestDepositService(t, db)
		org := testutil.NewOrganization().Build(t, db)
		_, lease := testutil.CreateLeaseWithTenant(t, db, org.ID)
		deposit := testutil.NewDeposit(org.ID, lease.ID, lease.TenantID).
			WithAmount(1000).
			Build(t, db)
		pool := testutil.NewPool(org.ID, 2024).Build(t, db)

		// One settled, one still pending; only the settled one counts
		testutil.NewDividend(org.ID, deposit, pool.ID, 2024).
			WithAmount(150).
			WithStatus(model.DividendStatusApplied).
			Build(t, db)
		pool2025 := testutil.NewPool(org.ID, 2025).Build(t, db)
		testutil.NewDividend(org.ID, deposit, pool2025.ID, 2025).
			WithAmount(75).
			Build(t, db)

		refunded, err := svc.ProcessRefund(context.Background(), org.ID, deposit.ID, request.ProcessRefundRequest{
			DeductionsAmount: 50,
			DeductionsReason: "carpet damage",
			RefundMethod:     "CHECK",
		}, "user-1")
		if err != nil {
			t.Fatalf("ProcessRefund() returned unexpected error: %v", err)
		}

		// 1000 + 150 - 50
		if refunded.RefundAmount == nil || *refunded.RefundAmount != 1100 {
			t.Errorf("Expected refund amount 1100, got %v", refunded.RefundAmount)
		}
		if refunded.Status != model.DepositStatusRefunded {
			t.Errorf("Expected status REFUNDED, got %s", refunded.Status)
		}
	})

	t.Run("deductions exceeding dividends mark partial refund", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestDepositService(t, db)
		org := testutil.NewOrganization().Build(t, db)
		_, lease := testutil.CreateLeaseWithTenant(t, db, org.ID)
		deposit := testutil.NewDeposit(org.ID, lease.ID, lease.TenantID).
			WithAmount(1000).
			Build(t, db)

		refunded, err := svc.ProcessRefund(context.Background(), org.ID, deposit.ID, request.ProcessRefundRequest{
			DeductionsAmount: 300,
			DeductionsReason: "unpaid rent",
			RefundMethod:     "BANK_TRANSFER",
		}, "user-1")
		if err != nil {
			t.Fatalf("ProcessRefund() returned unexpected error: %v", err)
		}

		if refunded.RefundAmount == nil || *refunded.RefundAmount != 700 {
			t.Errorf("Expected refund amount 700, got %v", refunded.RefundAmount)
		}
		if refunded.Status != model.DepositStatusPartiallyRefunded {
			t.Errorf("Expected status PARTIALLY_REFUNDED, got %s", refunded.Status)
		}
	})

	t.Run("pooled deposit exits the pool before settling", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestDepositService(t, db)
		org := testutil.NewOrganization().Build(t, db)
		_, lease := testutil.CreateLeaseWithTenant(t, db, org.ID)
		deposit := testutil.NewDeposit(org.ID, lease.ID, lease.TenantID).
			InPoolSince(time.Now().UTC().AddDate(-1, 0, 0)).
			Build(t, db)

		refunded, err := svc.ProcessRefund(context.Background(), org.ID, deposit.ID, request.ProcessRefundRequest{
			RefundMethod: "CHECK",
		}, "user-1")
		if err != nil {
			t.Fatalf("ProcessRefund() returned unexpected error: %v", err)
		}

		if refunded.InPool {
			t.Error("Expected deposit out of pool after refund")
		}
		if refunded.PoolExitDate == nil {
			t.Error("Expected exit date stamped on refund")
		}
	})

	t.Run("second refund is rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestDepositService(t, db)
		org := testutil.NewOrganization().Build(t, db)
		_, lease := testutil.CreateLeaseWithTenant(t, db, org.ID)
		deposit := testutil.NewDeposit(org.ID, lease.ID, lease.TenantID).Build(t, db)

		req := request.ProcessRefundRequest{RefundMethod: "CHECK"}
		first, err := svc.ProcessRefund(context.Background(), org.ID, deposit.ID, req, "user-1")
		if err != nil {
			t.Fatalf("first ProcessRefund() returned unexpected error: %v", err)
		}

		_, err = svc.ProcessRefund(context.Background(), org.ID, deposit.ID, req, "user-1")
		if !errors.Is(err, apperrors.ErrDepositAlreadyRefunded) {
			t.Errorf("Expected ErrDepositAlreadyRefunded, got %v", err)
		}

		// The stored deposit is untouched by the failed attempt
		stored, err := svc.GetDeposit(org.ID, deposit.ID)
		if err != nil {
			t.Fatalf("GetDeposit() returned unexpected error: %v", err)
		}
		if *stored.RefundAmount != *first.RefundAmount {
			t.Errorf("Expected refund amount unchanged at %v, got %v", *first.RefundAmount, *stored.RefundAmount)
		}
	})
}

// TestDepositService_CalculateRefundAmount tests the refund preview.
func TestDepositService_CalculateRefundAmount(t *testing.T) {
	t.Run("previews without settling", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestDepositService(t, db)
		org := testutil.NewOrganization().Build(t, db)
		_, lease := testutil.CreateLeaseWithTenant(t, db, org.ID)
		deposit := testutil.NewDeposit(org.ID, lease.ID, lease.TenantID).
			WithAmount(2000).
			Build(t, db)

		amount, err := svc.CalculateRefundAmount(org.ID, deposit.ID, 120.50)
		if err != nil {
			t.Fatalf("CalculateRefundAmount() returned unexpected error: %v", err)
		}
		if amount != 1879.50 {
			t.Errorf("Expected 1879.50, got %v", amount)
		}

		stored, _ := svc.GetDeposit(org.ID, deposit.ID)
		if stored.Status != model.DepositStatusHeld {
			t.Errorf("Expected deposit still HELD after preview, got %s", stored.Status)
		}
	})

	t.Run("fails for unknown deposit", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestDepositService(t, db)
		org := testutil.NewOrganization().Build(t, db)

		_, err := svc.CalculateRefundAmount(org.ID, testutil.MakeID(), 0)
		if !errors.Is(err, apperrors.ErrDepositNotFound) {
			t.Errorf("Expected ErrDepositNotFound, got %v", err)
		}
	})
}
