package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/smtdev/storefront/internal/domain/order"
	"github.com/smtdev/storefront/internal/domain/pricing"
	"github.com/smtdev/storefront/internal/session"
)

type addItemRequest struct {
	ItemID string `json:"itemId" validate:"required,uuid"`
}

type applyDiscountRequest struct {
	Code string `json:"code" validate:"required,max=64"`
}

type applyTaxRequest struct {
	TaxID *string `json:"taxId" validate:"omitempty,uuid"`
}

type cartLineResponse struct {
	Item      itemResponse    `json:"item"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

type discountResponse struct {
	Code       string          `json:"code"`
	Percentage decimal.Decimal `json:"percentage"`
}

type summaryResponse struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	TaxableBase    decimal.Decimal `json:"taxableBase"`
	TaxAmount      decimal.Decimal `json:"taxAmount"`
	Total          decimal.Decimal `json:"total"`
}

type cartResponse struct {
	ID        string             `json:"id"`
	Lines     []cartLineResponse `json:"lines"`
	Discount  *discountResponse  `json:"discount,omitempty"`
	Tax       *taxResponse       `json:"tax,omitempty"`
	Summary   summaryResponse    `json:"summary"`
	CreatedAt time.Time          `json:"createdAt"`
}

// discountRejectedResponse reports an unknown code without failing the cart:
// the previous discount and total stay in effect.
type discountRejectedResponse struct {
	Applied bool   `json:"applied"`
	Message string `json:"message"`
}

func toCartResponse(o *order.Order) cartResponse {
	lines := make([]cartLineResponse, len(o.Lines))
	for i, l := range o.Lines {
		lines[i] = cartLineResponse{
			Item:      toItemResponse(l.Item),
			Quantity:  l.Quantity,
			LineTotal: l.Item.Price.Mul(decimal.NewFromInt(int64(l.Quantity))).Round(2),
		}
	}

	summary := o.Summary()
	resp := cartResponse{
		ID:    o.ID,
		Lines: lines,
		Summary: summaryResponse{
			Subtotal:       summary.Subtotal,
			DiscountAmount: summary.DiscountAmount,
			TaxableBase:    summary.TaxableBase,
			TaxAmount:      summary.TaxAmount,
			Total:          summary.Total,
		},
		CreatedAt: o.CreatedAt,
	}
	if o.Discount != nil {
		resp.Discount = &discountResponse{
			Code:       o.Discount.Code,
			Percentage: o.Discount.Percentage,
		}
	}
	if o.Tax != nil {
		tax := toTaxResponse(*o.Tax)
		resp.Tax = &tax
	}
	return resp
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	orderID, err := h.boundOrderID(r)
	if err != nil {
		if errors.Is(err, session.ErrNoBinding) {
			writeError(w, http.StatusNotFound, "no cart for this session")
			return
		}
		mapError(w, r, err)
		return
	}

	o, err := h.cart.Get(r.Context(), orderID)
	if err != nil {
		mapError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartResponse(o))
}

// addItem is the one operation that may create the cart, so it mints the
// session token and binds it to the order id on success.
func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	token := h.ensureToken(w, r)
	orderID, err := h.sessions.Lookup(r.Context(), token)
	if err != nil {
		if !errors.Is(err, session.ErrNoBinding) {
			mapError(w, r, err)
			return
		}
		orderID = order.NewID()
	}

	o, err := h.cart.AddItem(r.Context(), orderID, req.ItemID)
	if err != nil {
		mapError(w, r, err)
		return
	}

	if err := h.sessions.Bind(r.Context(), token, o.ID); err != nil {
		mapError(w, r, errors.Wrap(err, "bind session"))
		return
	}
	writeJSON(w, http.StatusOK, toCartResponse(o))
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	h.mutateCart(w, r, func(orderID string) (*order.Order, error) {
		return h.cart.RemoveItem(r.Context(), orderID, chi.URLParam(r, "itemID"))
	})
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	h.mutateCart(w, r, func(orderID string) (*order.Order, error) {
		return h.cart.Clear(r.Context(), orderID)
	})
}

func (h *Handler) applyDiscount(w http.ResponseWriter, r *http.Request) {
	var req applyDiscountRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	h.mutateCart(w, r, func(orderID string) (*order.Order, error) {
		o, err := h.cart.ApplyDiscountCode(r.Context(), orderID, req.Code)
		if errors.Is(err, pricing.ErrUnknownCode) {
			writeJSON(w, http.StatusUnprocessableEntity, discountRejectedResponse{
				Applied: false,
				Message: "unknown discount code",
			})
			return nil, errHandled
		}
		return o, err
	})
}

func (h *Handler) removeDiscount(w http.ResponseWriter, r *http.Request) {
	h.mutateCart(w, r, func(orderID string) (*order.Order, error) {
		return h.cart.RemoveDiscount(r.Context(), orderID)
	})
}

func (h *Handler) applyTax(w http.ResponseWriter, r *http.Request) {
	var req applyTaxRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	h.mutateCart(w, r, func(orderID string) (*order.Order, error) {
		return h.cart.ApplyTax(r.Context(), orderID, req.TaxID)
	})
}

// errHandled signals that the mutation callback already wrote the response.
var errHandled = errors.New("response already written")

// mutateCart resolves the session's cart and runs one mutation against it.
// Mutations other than addItem require an existing binding.
func (h *Handler) mutateCart(w http.ResponseWriter, r *http.Request, fn func(orderID string) (*order.Order, error)) {
	orderID, err := h.boundOrderID(r)
	if err != nil {
		if errors.Is(err, session.ErrNoBinding) {
			writeError(w, http.StatusNotFound, "no cart for this session")
			return
		}
		mapError(w, r, err)
		return
	}

	o, err := fn(orderID)
	if err != nil {
		if errors.Is(err, errHandled) {
			return
		}
		mapError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartResponse(o))
}
