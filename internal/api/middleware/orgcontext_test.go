package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rentpool/Deposit-Pool-Backend/internal/api/middleware"
)

func TestRequireOrganization(t *testing.T) {
	const orgID = "550e8400-e29b-41d4-a716-446655440000"

	t.Run("stores organization and user on the context", func(t *testing.T) {
		var gotOrg, gotUser string
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotOrg = middleware.OrganizationFrom(r.Context())
			gotUser = middleware.UserFrom(r.Context())
			w.WriteHeader(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("X-Organization-ID", orgID)
		req.Header.Set("X-User-ID", "user-42")

		w := httptest.NewRecorder()
		middleware.RequireOrganization(next).ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", w.Code)
		}
		if gotOrg != orgID {
			t.Errorf("Expected organization %s, got %s", orgID, gotOrg)
		}
		if gotUser != "user-42" {
			t.Errorf("Expected user user-42, got %s", gotUser)
		}
	})

	t.Run("user header is optional", func(t *testing.T) {
		var gotUser string
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUser = middleware.UserFrom(r.Context())
			w.WriteHeader(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("X-Organization-ID", orgID)

		w := httptest.NewRecorder()
		middleware.RequireOrganization(next).ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", w.Code)
		}
		if gotUser != "" {
			t.Errorf("Expected empty user, got %s", gotUser)
		}
	})

	t.Run("returns 400 when the organization header is missing", func(t *testing.T) {
		handlerCalled := false
		next := http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
			handlerCalled = true
		})

		req := httptest.NewRequest(http.MethodGet, "/test", nil)

		w := httptest.NewRecorder()
		middleware.RequireOrganization(next).ServeHTTP(w, req)

		if handlerCalled {
			t.Error("Expected next handler NOT to be called")
		}
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})

	t.Run("returns 400 for a malformed organization ID", func(t *testing.T) {
		handlerCalled := false
		next := http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
			handlerCalled = true
		})

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("X-Organization-ID", "not-a-uuid")

		w := httptest.NewRecorder()
		middleware.RequireOrganization(next).ServeHTTP(w, req)

		if handlerCalled {
			t.Error("Expected next handler NOT to be called")
		}
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})
}
