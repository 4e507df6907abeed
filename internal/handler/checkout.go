package handler

import (
	"net/http"

	"github.com/go-faster/errors"

	"github.com/smtdev/storefront/internal/session"
)

type checkoutResponse struct {
	PaymentIntentID string `json:"paymentIntentId"`
	ClientSecret    string `json:"clientSecret"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
}

func (h *Handler) createPaymentIntent(w http.ResponseWriter, r *http.Request) {
	orderID, err := h.boundOrderID(r)
	if err != nil {
		if errors.Is(err, session.ErrNoBinding) {
			writeError(w, http.StatusNotFound, "no cart for this session")
			return
		}
		mapError(w, r, err)
		return
	}

	intent, err := h.checkout.CreateIntent(r.Context(), orderID)
	if err != nil {
		mapError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, checkoutResponse{
		PaymentIntentID: intent.ID,
		ClientSecret:    intent.ClientSecret,
		Amount:          intent.AmountMinor,
		Currency:        intent.Currency,
	})
}
