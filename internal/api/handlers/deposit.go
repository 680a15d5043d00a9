package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/rentpool/Deposit-Pool-Backend/internal/api/middleware"
	"github.com/rentpool/Deposit-Pool-Backend/internal/api/request"
	"github.com/rentpool/Deposit-Pool-Backend/internal/api/response"
	"github.com/rentpool/Deposit-Pool-Backend/internal/apperrors"
	"github.com/rentpool/Deposit-Pool-Backend/internal/model"
	"github.com/rentpool/Deposit-Pool-Backend/internal/service"
	"github.com/rentpool/Deposit-Pool-Backend/internal/validation"
)

// DepositHandler handles HTTP requests for security deposit endpoints.
// It serves as the HTTP layer adapter, parsing requests and delegating
// business logic to the depositService.
type DepositHandler struct {
	depositService *service.DepositService
}

// NewDepositHandler creates a new DepositHandler with the provided service dependency.
func NewDepositHandler(depositService *service.DepositService) *DepositHandler {
	return &DepositHandler{
		depositService: depositService,
	}
}

// Collect handles POST requests to record a newly collected deposit.
//
// Endpoint: POST /api/deposit
// Request Body: CollectDepositRequest (leaseId, amount, paymentMethod, and
// optionally tenantId, dateReceived, transactionReference)
// Response: 201 Created with SecurityDeposit
// Error: 400 Bad Request if validation fails or no tenant can be resolved
// Error: 404 Not Found if the lease does not exist
// Error: 409 Conflict if a deposit already exists for the lease
func (h *DepositHandler) Collect(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CollectDepositRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCollectDeposit(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	deposit, err := h.depositService.Collect(
		r.Context(),
		middleware.OrganizationFrom(r.Context()),
		req,
		middleware.UserFrom(r.Context()),
	)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrLeaseNotFound):
			response.RespondError(w, http.StatusNotFound, apperrors.ErrLeaseNotFound.Error(), err.Error())
		case errors.Is(err, apperrors.ErrDepositExists):
			response.RespondError(w, http.StatusConflict, apperrors.ErrDepositExists.Error(), err.Error())
		case errors.Is(err, apperrors.ErrMissingTenant):
			response.RespondError(w, http.StatusBadRequest, apperrors.ErrMissingTenant.Error(), err.Error())
		default:
			response.RespondError(w, http.StatusInternalServerError, "failed to collect deposit", err.Error())
		}
		return
	}

	response.RespondJSON(w, http.StatusCreated, deposit)
}

// ListDeposits handles GET requests to retrieve the organization's deposits,
// optionally filtered by status.
//
// Endpoint: GET /api/deposit?status=HELD
// Response: 200 OK with array of SecurityDeposit
// Error: 500 Internal Server Error if retrieval fails
func (h *DepositHandler) ListDeposits(w http.ResponseWriter, r *http.Request) {
	status := model.DepositStatus(r.URL.Query().Get("status"))

	deposits, err := h.depositService.ListDeposits(middleware.OrganizationFrom(r.Context()), status)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveDeposits.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, deposits)
}

// GetDeposit handles GET requests to retrieve a single deposit by ID.
//
// Endpoint: GET /api/deposit/{uuid}
// Response: 200 OK with SecurityDeposit
// Error: 404 Not Found if the deposit does not exist
func (h *DepositHandler) GetDeposit(w http.ResponseWriter, r *http.Request) {
	depositID := chi.URLParam(r, "uuid")

	deposit, err := h.depositService.GetDeposit(middleware.OrganizationFrom(r.Context()), depositID)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveDeposit.Error(), err.Error())
		return
	}
	if deposit == nil {
		response.RespondError(w, http.StatusNotFound, apperrors.ErrDepositNotFound.Error(), "")
		return
	}

	response.RespondJSON(w, http.StatusOK, deposit)
}

// GetDepositByLease handles GET requests to retrieve the deposit attached
// to a lease.
//
// Endpoint: GET /api/deposit/lease/{uuid}
// Response: 200 OK with SecurityDeposit
// Error: 404 Not Found if the lease has no deposit
func (h *DepositHandler) GetDepositByLease(w http.ResponseWriter, r *http.Request) {
	leaseID := chi.URLParam(r, "uuid")

	deposit, err := h.depositService.GetDepositByLease(middleware.OrganizationFrom(r.Context()), leaseID)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveDeposit.Error(), err.Error())
		return
	}
	if deposit == nil {
		response.RespondError(w, http.StatusNotFound, apperrors.ErrDepositNotFound.Error(), "")
		return
	}

	response.RespondJSON(w, http.StatusOK, deposit)
}

// ListPoolForYear handles GET requests to retrieve the deposits whose pool
// membership overlapped a calendar year.
//
// Endpoint: GET /api/deposit/pool/{year}
// Response: 200 OK with array of SecurityDeposit
// Error: 400 Bad Request if the year is not a valid calendar year
func (h *DepositHandler) ListPoolForYear(w http.ResponseWriter, r *http.Request) {
	year, err := yearParam(r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid year", err.Error())
		return
	}

	deposits, err := h.depositService.ListDepositsInPoolForYear(middleware.OrganizationFrom(r.Context()), year)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveDeposits.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, deposits)
}

// ListPendingRefunds handles GET requests to retrieve held deposits whose
// lease has ended.
//
// Endpoint: GET /api/deposit/pending-refunds
// Response: 200 OK with array of SecurityDeposit
func (h *DepositHandler) ListPendingRefunds(w http.ResponseWriter, r *http.Request) {
	deposits, err := h.depositService.ListPendingRefunds(middleware.OrganizationFrom(r.Context()))
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveDeposits.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, deposits)
}

// EnterPool handles POST requests to mark a deposit as a pool member.
// Idempotent; re-entering is a no-op.
//
// Endpoint: POST /api/deposit/{uuid}/pool/enter
// Response: 200 OK with SecurityDeposit
// Error: 404 Not Found if the deposit does not exist
func (h *DepositHandler) EnterPool(w http.ResponseWriter, r *http.Request) {
	h.setPoolMembership(w, r, true)
}

// ExitPool handles POST requests to remove a deposit from the pool.
// Idempotent; re-exiting is a no-op.
//
// Endpoint: POST /api/deposit/{uuid}/pool/exit
// Response: 200 OK with SecurityDeposit
// Error: 404 Not Found if the deposit does not exist
func (h *DepositHandler) ExitPool(w http.ResponseWriter, r *http.Request) {
	h.setPoolMembership(w, r, false)
}

func (h *DepositHandler) setPoolMembership(w http.ResponseWriter, r *http.Request, enter bool) {
	depositID := chi.URLParam(r, "uuid")
	orgID := middleware.OrganizationFrom(r.Context())
	performedBy := middleware.UserFrom(r.Context())

	var deposit *model.SecurityDeposit
	var err error
	if enter {
		deposit, err = h.depositService.EnterPool(r.Context(), orgID, depositID, performedBy)
	} else {
		deposit, err = h.depositService.ExitPool(r.Context(), orgID, depositID, performedBy)
	}
	if err != nil {
		if errors.Is(err, apperrors.ErrDepositNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrDepositNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to update pool membership", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, deposit)
}

// RefundAmountResponse carries the computed refund figure without
// settling anything.
type RefundAmountResponse struct {
	DepositID        string  `json:"depositId"`
	DeductionsAmount float64 `json:"deductionsAmount"`
	RefundAmount     float64 `json:"refundAmount"`
}

// CalculateRefund handles GET requests to preview the refund amount for a
// deposit: principal plus settled dividends minus deductions.
//
// Endpoint: GET /api/deposit/{uuid}/refund?deductions=150.00
// Response: 200 OK with RefundAmountResponse
// Error: 400 Bad Request if deductions is not a number
// Error: 404 Not Found if the deposit does not exist
func (h *DepositHandler) CalculateRefund(w http.ResponseWriter, r *http.Request) {
	depositID := chi.URLParam(r, "uuid")

	deductions := 0.0
	if raw := r.URL.Query().Get("deductions"); raw != "" {
		var err error
		deductions, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			response.RespondError(w, http.StatusBadRequest, "invalid deductions amount", err.Error())
			return
		}
	}

	amount, err := h.depositService.CalculateRefundAmount(middleware.OrganizationFrom(r.Context()), depositID, deductions)
	if err != nil {
		if errors.Is(err, apperrors.ErrDepositNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrDepositNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveDeposit.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, RefundAmountResponse{
		DepositID:        depositID,
		DeductionsAmount: deductions,
		RefundAmount:     amount,
	})
}

// ProcessRefund handles POST requests to settle a deposit's refund. One-shot:
// a second call for the same deposit is rejected.
//
// Endpoint: POST /api/deposit/{uuid}/refund
// Request Body: ProcessRefundRequest (refundMethod, and optionally
// deductionsAmount, deductionsReason, refundReference)
// Response: 200 OK with the settled SecurityDeposit
// Error: 400 Bad Request if validation fails
// Error: 404 Not Found if the deposit does not exist
// Error: 409 Conflict if the deposit was already refunded
func (h *DepositHandler) ProcessRefund(w http.ResponseWriter, r *http.Request) {
	depositID := chi.URLParam(r, "uuid")

	req, err := parseJSON[request.ProcessRefundRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateProcessRefund(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	deposit, err := h.depositService.ProcessRefund(
		r.Context(),
		middleware.OrganizationFrom(r.Context()),
		depositID,
		req,
		middleware.UserFrom(r.Context()),
	)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrDepositNotFound):
			response.RespondError(w, http.StatusNotFound, apperrors.ErrDepositNotFound.Error(), err.Error())
		case errors.Is(err, apperrors.ErrDepositAlreadyRefunded):
			response.RespondError(w, http.StatusConflict, apperrors.ErrDepositAlreadyRefunded.Error(), err.Error())
		default:
			response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToProcessRefund.Error(), err.Error())
		}
		return
	}

	response.RespondJSON(w, http.StatusOK, deposit)
}
