package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/mangaza/subscription-billing/internal/config"
	"github.com/mangaza/subscription-billing/internal/domain"
	"github.com/mangaza/subscription-billing/internal/service"
	customError "github.com/mangaza/subscription-billing/pkg/errors"
	"github.com/mangaza/subscription-billing/pkg/response"
)

type BillingHandler struct {
	service   *service.BillingService
	config    *config.Config
	validator *validator.Validate
}

func NewBillingHandler(service *service.BillingService, cfg *config.Config) *BillingHandler {
	return &BillingHandler{
		service:   service,
		config:    cfg,
		validator: validator.New(),
	}
}

// CreateLine handles POST /lines
func (h *BillingHandler) CreateLine(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateLineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, "validation failed", err)
		return
	}

	line, err := h.service.CreateLine(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Created(w, line)
}

// DeactivateLine handles DELETE /lines/{lineId}
func (h *BillingHandler) DeactivateLine(w http.ResponseWriter, r *http.Request) {
	lineID, err := parseID(r, "lineId")
	if err != nil {
		response.BadRequest(w, "lineId must be a valid uuid", err)
		return
	}

	if err := h.service.DeactivateLine(r.Context(), lineID); err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, nil)
}

// GetBalanceHistory handles GET /lines/{lineId}/transactions
func (h *BillingHandler) GetBalanceHistory(w http.ResponseWriter, r *http.Request) {
	lineID, err := parseID(r, "lineId")
	if err != nil {
		response.BadRequest(w, "lineId must be a valid uuid", err)
		return
	}

	transactions, err := h.service.GetBalanceHistory(r.Context(), lineID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, transactions)
}

// GetClientOverview handles GET /clients/{clientId}/overview
func (h *BillingHandler) GetClientOverview(w http.ResponseWriter, r *http.Request) {
	clientID := mux.Vars(r)["clientId"]
	if clientID == "" {
		response.BadRequest(w, "clientId is required", nil)
		return
	}

	overview, err := h.service.GetClientOverview(r.Context(), clientID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, overview)
}

// GetUnpaidInvoices handles GET /clients/{clientId}/invoices/unpaid
func (h *BillingHandler) GetUnpaidInvoices(w http.ResponseWriter, r *http.Request) {
	clientID := mux.Vars(r)["clientId"]
	if clientID == "" {
		response.BadRequest(w, "clientId is required", nil)
		return
	}

	invoices, err := h.service.GetUnpaidInvoices(r.Context(), clientID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, invoices)
}

// GetLineInvoices handles GET /lines/{lineId}/invoices?status=all|paid|unpaid|overdue
func (h *BillingHandler) GetLineInvoices(w http.ResponseWriter, r *http.Request) {
	lineID, err := parseID(r, "lineId")
	if err != nil {
		response.BadRequest(w, "lineId must be a valid uuid", err)
		return
	}

	mode := r.URL.Query().Get("status")
	switch mode {
	case "", domain.FilterAll, domain.FilterPaid, domain.FilterUnpaid, domain.FilterOverdue:
	default:
		response.BadRequest(w, "status must be one of all, paid, unpaid, overdue", nil)
		return
	}

	invoices, err := h.service.GetLineInvoices(r.Context(), lineID, mode)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, domain.InvoiceListResponse{LineID: lineID, Invoices: invoices})
}

// GetCoverage handles GET /lines/{lineId}/coverage
func (h *BillingHandler) GetCoverage(w http.ResponseWriter, r *http.Request) {
	lineID, err := parseID(r, "lineId")
	if err != nil {
		response.BadRequest(w, "lineId must be a valid uuid", err)
		return
	}

	coverage, err := h.service.GetCoverage(r.Context(), lineID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, coverage)
}

// PlanAdvancePayment handles POST /advance-payments/plan
func (h *BillingHandler) PlanAdvancePayment(w http.ResponseWriter, r *http.Request) {
	var req domain.AdvancePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, "validation failed", err)
		return
	}

	plan, err := h.service.PlanAdvancePayment(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, plan)
}

// AddBalance handles POST /lines/{lineId}/balance
func (h *BillingHandler) AddBalance(w http.ResponseWriter, r *http.Request) {
	lineID, err := parseID(r, "lineId")
	if err != nil {
		response.BadRequest(w, "lineId must be a valid uuid", err)
		return
	}

	var req domain.AddBalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, "validation failed", err)
		return
	}

	balanceTx, err := h.service.AddBalance(r.Context(), lineID, &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Created(w, balanceTx)
}

// PayInvoice handles POST /invoices/{invoiceId}/payments
func (h *BillingHandler) PayInvoice(w http.ResponseWriter, r *http.Request) {
	invoiceID, err := parseID(r, "invoiceId")
	if err != nil {
		response.BadRequest(w, "invoiceId must be a valid uuid", err)
		return
	}

	var req domain.PayInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, "validation failed", err)
		return
	}

	result, err := h.service.PayInvoice(r.Context(), invoiceID, &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Created(w, result)
}

// PayAllUnpaid handles POST /clients/{clientId}/payments
func (h *BillingHandler) PayAllUnpaid(w http.ResponseWriter, r *http.Request) {
	clientID := mux.Vars(r)["clientId"]
	if clientID == "" {
		response.BadRequest(w, "clientId is required", nil)
		return
	}

	var req domain.GroupPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, "validation failed", err)
		return
	}

	result, err := h.service.PayAllUnpaid(r.Context(), clientID, &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Created(w, result)
}

// GetInvoiceDocument handles GET /invoices/{invoiceId}/document. The
// endpoint serves printable documents to the front office and requires the
// configured bearer token.
func (h *BillingHandler) GetInvoiceDocument(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		response.Unauthorized(w, "missing or invalid bearer token")
		return
	}

	invoiceID, err := parseID(r, "invoiceId")
	if err != nil {
		response.BadRequest(w, "invoiceId must be a valid uuid", err)
		return
	}

	document, err := h.service.GetInvoiceDocument(r.Context(), invoiceID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(document)
}

func (h *BillingHandler) authorized(r *http.Request) bool {
	token := h.config.Server.DocumentToken
	if token == "" {
		return true
	}

	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == token
}

func parseID(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(mux.Vars(r)[name])
}

// writeServiceError maps business error codes to HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	var bizErr *customError.BusinessError
	if !errors.As(err, &bizErr) {
		response.InternalServerError(w, "unexpected error", err)
		return
	}

	switch bizErr.Code {
	case customError.ErrCodeLineNotFound, customError.ErrCodeInvoiceNotFound:
		response.NotFound(w, bizErr.Message)
	case customError.ErrCodeDuplicateRequest, customError.ErrCodeInvoiceAlreadyPaid:
		response.Error(w, http.StatusConflict, bizErr.Message, bizErr.Err)
	case customError.ErrCodeDatabaseError, customError.ErrCodeCacheError:
		response.InternalServerError(w, bizErr.Message, bizErr.Err)
	default:
		response.BadRequest(w, bizErr.Message, bizErr.Err)
	}
}
