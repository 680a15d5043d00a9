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

// PoolHandler handles HTTP requests for investment pool endpoints.
type PoolHandler struct {
	poolService     *service.PoolService
	dividendService *service.DividendService
}

// NewPoolHandler creates a new PoolHandler with the provided service dependencies.
func NewPoolHandler(poolService *service.PoolService, dividendService *service.DividendService) *PoolHandler {
	return &PoolHandler{
		poolService:     poolService,
		dividendService: dividendService,
	}
}

// ListPools handles GET requests to retrieve the organization's pools,
// most recent year first.
//
// Endpoint: GET /api/pool
// Response: 200 OK with array of InvestmentPool
func (h *PoolHandler) ListPools(w http.ResponseWriter, r *http.Request) {
	pools, err := h.poolService.ListPools(middleware.OrganizationFrom(r.Context()))
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrievePools.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, pools)
}

// GetPool handles GET requests to retrieve the pool for a calendar year,
// creating an Open one when none exists yet.
//
// Endpoint: GET /api/pool/year/{year}
// Response: 200 OK with InvestmentPool
// Error: 400 Bad Request if the year is not a valid calendar year
func (h *PoolHandler) GetPool(w http.ResponseWriter, r *http.Request) {
	year, err := yearParam(r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid year", err.Error())
		return
	}

	pool, err := h.poolService.GetOrCreate(
		r.Context(),
		middleware.OrganizationFrom(r.Context()),
		year,
		middleware.UserFrom(r.Context()),
	)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrievePool.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, pool)
}

// RecordPerformance handles POST requests to record a year's investment
// results and recompute the organization/tenant split.
//
// Endpoint: POST /api/pool/year/{year}/performance
// Request Body: RecordPerformanceRequest (startingBalance, endingBalance, totalEarnings)
// Response: 200 OK with the updated InvestmentPool
// Error: 400 Bad Request if validation fails
// Error: 409 Conflict if the pool is closed
func (h *PoolHandler) RecordPerformance(w http.ResponseWriter, r *http.Request) {
	year, err := yearParam(r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid year", err.Error())
		return
	}

	req, err := parseJSON[request.RecordPerformanceRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateRecordPerformance(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	pool, err := h.poolService.RecordPerformance(
		r.Context(),
		middleware.OrganizationFrom(r.Context()),
		year,
		req.StartingBalance,
		req.EndingBalance,
		req.TotalEarnings,
		middleware.UserFrom(r.Context()),
	)
	if err != nil {
		if errors.Is(err, apperrors.ErrPoolClosed) {
			response.RespondError(w, http.StatusConflict, apperrors.ErrPoolClosed.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to record pool performance", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, pool)
}

// CalculateDividends handles POST requests to run the dividend calculation
// for a year. Safe to re-run: existing dividends are returned unchanged.
//
// Endpoint: POST /api/pool/year/{year}/calculate
// Response: 200 OK with array of SecurityDepositDividend
// Error: 400 Bad Request if the year is not a valid calendar year
// Error: 409 Conflict if the pool is closed
func (h *PoolHandler) CalculateDividends(w http.ResponseWriter, r *http.Request) {
	year, err := yearParam(r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid year", err.Error())
		return
	}

	dividends, err := h.dividendService.CalculateDividends(
		r.Context(),
		middleware.OrganizationFrom(r.Context()),
		year,
		middleware.UserFrom(r.Context()),
	)
	if err != nil {
		if errors.Is(err, apperrors.ErrPoolClosed) {
			response.RespondError(w, http.StatusConflict, apperrors.ErrPoolClosed.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToCalculate.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, dividends)
}

// ClosePool handles POST requests to close a pool after distribution.
// Terminal; a closed pool rejects further performance or calculation runs.
//
// Endpoint: POST /api/pool/{uuid}/close
// Response: 200 OK with the closed InvestmentPool
// Error: 404 Not Found if the pool does not exist
func (h *PoolHandler) ClosePool(w http.ResponseWriter, r *http.Request) {
	poolID := chi.URLParam(r, "uuid")

	pool, err := h.poolService.Close(
		r.Context(),
		middleware.OrganizationFrom(r.Context()),
		poolID,
		middleware.UserFrom(r.Context()),
	)
	if err != nil {
		if errors.Is(err, apperrors.ErrPoolNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrPoolNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to close pool", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, pool)
}
