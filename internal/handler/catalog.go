package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/smtdev/storefront/internal/domain/catalog"
	"github.com/smtdev/storefront/internal/domain/pricing"
)

type itemResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Currency    string          `json:"currency"`
}

type taxResponse struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Percentage decimal.Decimal `json:"percentage"`
}

func toItemResponse(item catalog.Item) itemResponse {
	return itemResponse{
		ID:          item.ID,
		Name:        item.Name,
		Description: item.Description,
		Price:       item.Price,
		Currency:    item.Currency,
	}
}

func toTaxResponse(tax pricing.Tax) taxResponse {
	return taxResponse{
		ID:         tax.ID,
		Name:       tax.Name,
		Percentage: tax.Percentage,
	}
}

func (h *Handler) listItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.items.List(r.Context())
	if err != nil {
		mapError(w, r, err)
		return
	}

	resp := make([]itemResponse, len(items))
	for i, item := range items {
		resp[i] = toItemResponse(item)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) getItem(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")
	// Item ids are UUIDs; anything else cannot exist, and must not reach the
	// UUID-typed column.
	if _, err := uuid.Parse(itemID); err != nil {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}

	item, err := h.items.GetByID(r.Context(), itemID)
	if err != nil {
		mapError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toItemResponse(*item))
}

func (h *Handler) listTaxes(w http.ResponseWriter, r *http.Request) {
	taxes, err := h.taxes.List(r.Context())
	if err != nil {
		mapError(w, r, err)
		return
	}

	resp := make([]taxResponse, len(taxes))
	for i, tax := range taxes {
		resp[i] = toTaxResponse(tax)
	}
	writeJSON(w, http.StatusOK, resp)
}
