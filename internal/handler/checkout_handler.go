package handler

import (
	"net/http"
	"time"

	"storefront/internal/model"
	"storefront/internal/service"

	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// CookieSettings describes the cart cookie set after checkout.
type CookieSettings struct {
	Name   string
	MaxAge time.Duration
	Secure bool
}

// CheckoutHandler handles cart and checkout HTTP requests.
type CheckoutHandler struct {
	service  service.CheckoutService
	cookie   CookieSettings
	validate *validatorv10.Validate
	logger   zerolog.Logger
}

// NewCheckoutHandler creates a new checkout handler.
func NewCheckoutHandler(service service.CheckoutService, cookie CookieSettings, validate *validatorv10.Validate, logger zerolog.Logger) *CheckoutHandler {
	if cookie.Name == "" {
		cookie.Name = "cartId"
	}
	if validate == nil {
		validate = NewValidator()
	}
	return &CheckoutHandler{
		service:  service,
		cookie:   cookie,
		validate: validate,
		logger:   logger.With().Str("handler", "checkout").Logger(),
	}
}

// Checkout handles POST /api/shopify/checkout requests.
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req model.CheckoutRequest
	if err := decodeAndValidate(w, r, &req, h.validate); err != nil {
		respondError(w, r, err, "failed to create checkout", h.logger)
		return
	}

	resp, err := h.service.CreateCheckout(r.Context(), &req)
	if err != nil {
		respondError(w, r, err, "failed to create checkout", h.logger)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    resp.CartID,
		Path:     "/",
		MaxAge:   int(h.cookie.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusCreated, resp)
}

// Cart handles POST /api/shopify/cart requests.
func (h *CheckoutHandler) Cart(w http.ResponseWriter, r *http.Request) {
	var req model.CartRequest
	if err := decodeAndValidate(w, r, &req, h.validate); err != nil {
		respondError(w, r, err, "failed to create cart", h.logger)
		return
	}

	resp, err := h.service.CreateCart(r.Context(), &req)
	if err != nil {
		respondError(w, r, err, "failed to create cart", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
