package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/smtdev/storefront/internal/domain/catalog"
	"github.com/smtdev/storefront/internal/domain/checkout"
	"github.com/smtdev/storefront/internal/domain/order"
	"github.com/smtdev/storefront/internal/domain/pricing"
)

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Code: status, Message: message})
}

// decodeJSON unmarshals the request body into v and runs struct validation.
func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return false
	}
	if err := h.validate.Struct(v); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// mapError translates domain errors into HTTP responses. Unmatched errors are
// logged and reported as 500 without leaking internals.
func mapError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		itemErr    *catalog.ItemNotFoundError
		lineErr    *order.LineNotFoundError
		gatewayErr *checkout.GatewayError
	)
	switch {
	case errors.As(err, &itemErr):
		writeError(w, http.StatusNotFound, itemErr.Error())
	case errors.Is(err, catalog.ErrNotFound):
		writeError(w, http.StatusNotFound, "item not found")
	case errors.As(err, &lineErr):
		writeError(w, http.StatusNotFound, lineErr.Error())
	case errors.Is(err, order.ErrNotFound):
		writeError(w, http.StatusNotFound, "cart not found")
	case errors.Is(err, pricing.ErrTaxNotFound):
		writeError(w, http.StatusNotFound, "tax rule not found")
	case errors.Is(err, checkout.ErrEmptyOrder):
		writeError(w, http.StatusUnprocessableEntity, "cart is empty")
	case errors.Is(err, checkout.ErrAmountBelowMin):
		writeError(w, http.StatusUnprocessableEntity, "order total below the chargeable minimum")
	case errors.Is(err, checkout.ErrAmountAboveMax):
		writeError(w, http.StatusUnprocessableEntity, "order total above the chargeable maximum")
	case errors.Is(err, checkout.ErrCurrencyMismatch):
		writeError(w, http.StatusUnprocessableEntity, "cart mixes currencies")
	case errors.Is(err, checkout.ErrFractionalAmount):
		writeError(w, http.StatusUnprocessableEntity, "order total is not representable in minor units")
	case errors.As(err, &gatewayErr):
		zctx.From(r.Context()).Warn("Payment gateway error", zap.Error(err))
		writeError(w, http.StatusBadGateway, "payment gateway rejected the request")
	default:
		zctx.From(r.Context()).Error("Internal error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
