package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/rentpool/Deposit-Pool-Backend/internal/api/request"
	"github.com/rentpool/Deposit-Pool-Backend/internal/model"
	"github.com/rentpool/Deposit-Pool-Backend/internal/testutil"
)

func setupDividendHandler(t *testing.T) (*DividendHandler, *sql.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return NewDividendHandler(testutil.NewTestDividendService(t, db)), db
}

func createDividend(t *testing.T, db *sql.DB, orgID string) model.SecurityDepositDividend {
	t.Helper()
	_, lease := testutil.CreateLeaseWithTenant(t, db, orgID)
	deposit := testutil.NewDeposit(orgID, lease.ID, lease.TenantID).Build(t, db)
	pool := testutil.NewPool(orgID, 2024).Build(t, db)
	return testutil.NewDividend(orgID, deposit, pool.ID, 2024).Build(t, db)
}

func TestDividendHandler_GetDividend(t *testing.T) {
	t.Run("returns the dividend", func(t *testing.T) {
		handler, db := setupDividendHandler(t)
		org := testutil.NewOrganization().Build(t, db)
		dividend := createDividend(t, db, org.ID)

		req := newOrgRequest(t, http.MethodGet, "/api/dividend/"+dividend.ID, org.ID, nil,
			map[string]string{"uuid": dividend.ID})
		w := serveWithOrg(handler.GetDividend, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var fetched model.SecurityDepositDividend
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&fetched)
		if fetched.ID != dividend.ID {
			t.Errorf("Expected dividend %s, got %s", dividend.ID, fetched.ID)
		}
	})

	t.Run("returns 404 for unknown dividend", func(t *testing.T) {
		handler, db := setupDividendHandler(t)
		org := testutil.NewOrganization().Build(t, db)
		id := testutil.MakeID()

		req := newOrgRequest(t, http.MethodGet, "/api/dividend/"+id, org.ID, nil,
			map[string]string{"uuid": id})
		w := serveWithOrg(handler.GetDividend, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestDividendHandler_RecordChoice(t *testing.T) {
	t.Run("records a payout choice", func(t *testing.T) {
		handler, db := setupDividendHandler(t)
		org := testutil.NewOrganization().Build(t, db)
		dividend := createDividend(t, db, org.ID)

		req := newOrgRequest(t, http.MethodPost, "/api/dividend/"+dividend.ID+"/choice", org.ID,
			request.RecordChoiceRequest{PaymentMethod: model.PaymentMethodDirectDeposit},
			map[string]string{"uuid": dividend.ID})
		w := serveWithOrg(handler.RecordChoice, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var updated model.SecurityDepositDividend
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&updated)
		if updated.Status != model.DividendStatusChoiceMade {
			t.Errorf("Expected status CHOICE_MADE, got %s", updated.Status)
		}
	})

	t.Run("returns 400 for a check choice without mailing address", func(t *testing.T) {
		handler, db := setupDividendHandler(t)
		org := testutil.NewOrganization().Build(t, db)
		dividend := createDividend(t, db, org.ID)

		req := newOrgRequest(t, http.MethodPost, "/api/dividend/"+dividend.ID+"/choice", org.ID,
			request.RecordChoiceRequest{PaymentMethod: model.PaymentMethodCheck},
			map[string]string{"uuid": dividend.ID})
		w := serveWithOrg(handler.RecordChoice, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("returns 409 when the dividend is already settled", func(t *testing.T) {
		handler, db := setupDividendHandler(t)
		org := testutil.NewOrganization().Build(t, db)
		_, lease := testutil.CreateLeaseWithTenant(t, db, org.ID)
		deposit := testutil.NewDeposit(org.ID, lease.ID, lease.TenantID).Build(t, db)
		pool := testutil.NewPool(org.ID, 2024).Build(t, db)
		dividend := testutil.NewDividend(org.ID, deposit, pool.ID, 2024).
			WithStatus(model.DividendStatusPaid).
			Build(t, db)

		req := newOrgRequest(t, http.MethodPost, "/api/dividend/"+dividend.ID+"/choice", org.ID,
			request.RecordChoiceRequest{PaymentMethod: model.PaymentMethodDirectDeposit},
			map[string]string{"uuid": dividend.ID})
		w := serveWithOrg(handler.RecordChoice, req)

		if w.Code != http.StatusConflict {
			t.Errorf("Expected 409, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestDividendHandler_ProcessPayment(t *testing.T) {
	t.Run("settles the dividend", func(t *testing.T) {
		handler, db := setupDividendHandler(t)
		org := testutil.NewOrganization().Build(t, db)
		dividend := createDividend(t, db, org.ID)

		req := newOrgRequest(t, http.MethodPost, "/api/dividend/"+dividend.ID+"/payment", org.ID,
			request.ProcessPaymentRequest{PaymentReference: "REF-001"},
			map[string]string{"uuid": dividend.ID})
		w := serveWithOrg(handler.ProcessPayment, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var settled model.SecurityDepositDividend
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&settled)
		if settled.Status != model.DividendStatusApplied {
			t.Errorf("Expected status APPLIED for lease credit, got %s", settled.Status)
		}

		// Second settlement conflicts
		retry := newOrgRequest(t, http.MethodPost, "/api/dividend/"+dividend.ID+"/payment", org.ID,
			request.ProcessPaymentRequest{},
			map[string]string{"uuid": dividend.ID})
		w = serveWithOrg(handler.ProcessPayment, retry)

		if w.Code != http.StatusConflict {
			t.Errorf("Expected 409 on second payment, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestDividendHandler_ListDividendsForYear(t *testing.T) {
	t.Run("returns the year's dividends with tenant names", func(t *testing.T) {
		handler, db := setupDividendHandler(t)
		org := testutil.NewOrganization().Build(t, db)
		createDividend(t, db, org.ID)

		req := newOrgRequest(t, http.MethodGet, "/api/dividend/year/2024", org.ID, nil,
			map[string]string{"year": "2024"})
		w := serveWithOrg(handler.ListDividendsForYear, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var dividends []model.TenantDividend
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&dividends)
		if len(dividends) != 1 {
			t.Fatalf("Expected 1 dividend, got %d", len(dividends))
		}
		if dividends[0].TenantLastName == "" {
			t.Error("Expected tenant last name populated")
		}
	})

	t.Run("returns 400 for an invalid year", func(t *testing.T) {
		handler, db := setupDividendHandler(t)
		org := testutil.NewOrganization().Build(t, db)

		req := newOrgRequest(t, http.MethodGet, "/api/dividend/year/abc", org.ID, nil,
			map[string]string{"year": "abc"})
		w := serveWithOrg(handler.ListDividendsForYear, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestDividendHandler_ListTenantDividends(t *testing.T) {
	handler, db := setupDividendHandler(t)
	org := testutil.NewOrganization().Build(t, db)
	dividend := createDividend(t, db, org.ID)

	req := newOrgRequest(t, http.MethodGet, "/api/dividend/tenant/"+dividend.TenantID, org.ID, nil,
		map[string]string{"uuid": dividend.TenantID})
	w := serveWithOrg(handler.ListTenantDividends, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var dividends []model.SecurityDepositDividend
	//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
	json.NewDecoder(w.Body).Decode(&dividends)
	if len(dividends) != 1 {
		t.Errorf("Expected 1 dividend, got %d", len(dividends))
	}
}
