package handler

import (
	"net/http"
	"strconv"

	"storefront/internal/model"
	"storefront/internal/service"

	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// DraftOrderHandler handles gift-bag draft orders and their invoices.
type DraftOrderHandler struct {
	service  service.DraftOrderService
	validate *validatorv10.Validate
	logger   zerolog.Logger
}

// NewDraftOrderHandler creates a new draft order handler.
func NewDraftOrderHandler(service service.DraftOrderService, validate *validatorv10.Validate, logger zerolog.Logger) *DraftOrderHandler {
	if validate == nil {
		validate = NewValidator()
	}
	return &DraftOrderHandler{
		service:  service,
		validate: validate,
		logger:   logger.With().Str("handler", "draft-order").Logger(),
	}
}

// Create handles POST /api/shopify/draft-order requests.
func (h *DraftOrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.DraftOrderRequest
	if err := decodeAndValidate(w, r, &req, h.validate); err != nil {
		respondError(w, r, err, "failed to create draft order", h.logger)
		return
	}

	resp, err := h.service.CreateDraftOrder(r.Context(), &req)
	if err != nil {
		respondError(w, r, err, "failed to create draft order", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// ResendInvoice handles POST /api/admin/draft-orders/{id}/send-invoice.
func (h *DraftOrderHandler) ResendInvoice(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, r, http.StatusBadRequest, "draft order ID is required", h.logger)
		return
	}

	resp, err := h.service.ResendInvoice(r.Context(), id)
	if err != nil {
		respondError(w, r, err, "failed to send invoice", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// FailedInvoices handles GET /api/admin/invoices/failed.
func (h *DraftOrderHandler) FailedInvoices(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 || parsed > 500 {
			writeError(w, r, http.StatusBadRequest, "limit must be between 1 and 500", h.logger)
			return
		}
		limit = parsed
	}

	entries, err := h.service.ListFailedInvoices(r.Context(), limit)
	if err != nil {
		respondError(w, r, err, "failed to list invoices", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, model.LedgerListResponse{Entries: entries})
}
