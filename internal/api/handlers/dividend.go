package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rentpool/Deposit-Pool-Backend/internal/api/middleware"
	"github.com/rentpool/Deposit-Pool-Backend/internal/api/request"
	"github.com/rentpool/Deposit-Pool-Backend/internal/api/response"
	"github.com/rentpool/Deposit-Pool-Backend/internal/apperrors"
	"github.com/rentpool/Deposit-Pool-Backend/internal/service"
	"github.com/rentpool/Deposit-Pool-Backend/internal/validation"
)

// DividendHandler handles HTTP requests for dividend endpoints.
type DividendHandler struct {
	dividendService *service.DividendService
}

// NewDividendHandler creates a new DividendHandler with the provided service dependency.
func NewDividendHandler(dividendService *service.DividendService) *DividendHandler {
	return &DividendHandler{
		dividendService: dividendService,
	}
}

// GetDividend handles GET requests to retrieve a single dividend by ID.
//
// Endpoint: GET /api/dividend/{uuid}
// Response: 200 OK with SecurityDepositDividend
// Error: 404 Not Found if the dividend does not exist
func (h *DividendHandler) GetDividend(w http.ResponseWriter, r *http.Request) {
	dividendID := chi.URLParam(r, "uuid")

	dividend, err := h.dividendService.GetDividend(middleware.OrganizationFrom(r.Context()), dividendID)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveDividends.Error(), err.Error())
		return
	}
	if dividend == nil {
		response.RespondError(w, http.StatusNotFound, apperrors.ErrDividendNotFound.Error(), "")
		return
	}

	response.RespondJSON(w, http.StatusOK, dividend)
}

// ListTenantDividends handles GET requests to retrieve a tenant's dividends
// across all years, most recent year first.
//
// Endpoint: GET /api/dividend/tenant/{uuid}
// Response: 200 OK with array of SecurityDepositDividend
func (h *DividendHandler) ListTenantDividends(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "uuid")

	dividends, err := h.dividendService.ListTenantDividends(middleware.OrganizationFrom(r.Context()), tenantID)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveDividends.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, dividends)
}

// ListDividendsForYear handles GET requests to retrieve all dividends for a
// year sorted by tenant name, for bulk payout runs.
//
// Endpoint: GET /api/dividend/year/{year}
// Response: 200 OK with array of TenantDividend
// Error: 400 Bad Request if the year is not a valid calendar year
func (h *DividendHandler) ListDividendsForYear(w http.ResponseWriter, r *http.Request) {
	year, err := yearParam(r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid year", err.Error())
		return
	}

	dividends, err := h.dividendService.ListDividendsForYear(middleware.OrganizationFrom(r.Context()), year)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveDividends.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, dividends)
}

// RecordChoice handles POST requests to record a tenant's payout choice.
//
// Endpoint: POST /api/dividend/{uuid}/choice
// Request Body: RecordChoiceRequest (paymentMethod, and mailingAddress for checks)
// Response: 200 OK with the updated SecurityDepositDividend
// Error: 400 Bad Request if validation fails
// Error: 404 Not Found if the dividend does not exist
// Error: 409 Conflict if the dividend is already settled
func (h *DividendHandler) RecordChoice(w http.ResponseWriter, r *http.Request) {
	dividendID := chi.URLParam(r, "uuid")

	req, err := parseJSON[request.RecordChoiceRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateRecordChoice(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	dividend, err := h.dividendService.RecordChoice(
		r.Context(),
		middleware.OrganizationFrom(r.Context()),
		dividendID,
		req,
		middleware.UserFrom(r.Context()),
	)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrDividendNotFound):
			response.RespondError(w, http.StatusNotFound, apperrors.ErrDividendNotFound.Error(), err.Error())
		case errors.Is(err, apperrors.ErrDividendAlreadySettled):
			response.RespondError(w, http.StatusConflict, apperrors.ErrDividendAlreadySettled.Error(), err.Error())
		default:
			response.RespondError(w, http.StatusInternalServerError, "failed to record payout choice", err.Error())
		}
		return
	}

	response.RespondJSON(w, http.StatusOK, dividend)
}

// ProcessPayment handles POST requests to settle a dividend.
//
// Endpoint: POST /api/dividend/{uuid}/payment
// Request Body: ProcessPaymentRequest (paymentReference)
// Response: 200 OK with the settled SecurityDepositDividend
// Error: 404 Not Found if the dividend does not exist
// Error: 409 Conflict if the dividend is already settled
func (h *DividendHandler) ProcessPayment(w http.ResponseWriter, r *http.Request) {
	dividendID := chi.URLParam(r, "uuid")

	req, err := parseJSON[request.ProcessPaymentRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	dividend, err := h.dividendService.ProcessPayment(
		r.Context(),
		middleware.OrganizationFrom(r.Context()),
		dividendID,
		req,
		middleware.UserFrom(r.Context()),
	)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrDividendNotFound):
			response.RespondError(w, http.StatusNotFound, apperrors.ErrDividendNotFound.Error(), err.Error())
		case errors.Is(err, apperrors.ErrDividendAlreadySettled):
			response.RespondError(w, http.StatusConflict, apperrors.ErrDividendAlreadySettled.Error(), err.Error())
		default:
			response.RespondError(w, http.StatusInternalServerError, "failed to process payment", err.Error())
		}
		return
	}

	response.RespondJSON(w, http.StatusOK, dividend)
}
