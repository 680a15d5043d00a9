package middleware

import (
	"context"
	"net/http"

	"github.com/rentpool/Deposit-Pool-Backend/internal/api/response"
	"github.com/rentpool/Deposit-Pool-Backend/internal/validation"
)

type contextKey string

const (
	organizationKey contextKey = "organizationID"
	userKey         contextKey = "userID"
)

// RequireOrganization extracts the caller's organization scope and acting
// user from the X-Organization-ID and X-User-ID headers and stores them on
// the request context. The organization header is mandatory and must be a
// valid UUID; the surrounding system's session layer is expected to set both.
func RequireOrganization(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		orgID := r.Header.Get("X-Organization-ID")
		if orgID == "" {
			response.RespondError(w, http.StatusBadRequest, "organization context is required", "missing X-Organization-ID header")
			return
		}
		if err := validation.ValidateUUID(orgID); err != nil {
			response.RespondError(w, http.StatusBadRequest, "invalid organization ID", err.Error())
			return
		}

		ctx := context.WithValue(r.Context(), organizationKey, orgID)
		ctx = context.WithValue(ctx, userKey, r.Header.Get("X-User-ID"))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OrganizationFrom returns the organization ID stored by RequireOrganization.
func OrganizationFrom(ctx context.Context) string {
	orgID, _ := ctx.Value(organizationKey).(string)
	return orgID
}

// UserFrom returns the acting user ID stored by RequireOrganization.
// Empty when the caller did not identify a user.
func UserFrom(ctx context.Context) string {
	userID, _ := ctx.Value(userKey).(string)
	return userID
}
