// Package handler exposes the storefront over a JSON HTTP API.
package handler

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/smtdev/storefront/internal/domain/catalog"
	"github.com/smtdev/storefront/internal/domain/checkout"
	"github.com/smtdev/storefront/internal/domain/order"
	"github.com/smtdev/storefront/internal/domain/pricing"
	"github.com/smtdev/storefront/internal/session"
)

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// CookieName is the session cookie carrying the shopping session token.
	CookieName string
	// SecureCookies marks the session cookie Secure (HTTPS-only deploys).
	SecureCookies bool
}

// Handler routes storefront requests to the domain services.
type Handler struct {
	cfg      Config
	items    catalog.Repository
	taxes    pricing.TaxRepository
	cart     *order.Service
	checkout *checkout.Service
	sessions session.Store
	validate *validator.Validate
}

// New constructs a Handler with the required domain dependencies.
func New(
	cfg Config,
	items catalog.Repository,
	taxes pricing.TaxRepository,
	cart *order.Service,
	checkoutSvc *checkout.Service,
	sessions session.Store,
) *Handler {
	if cfg.CookieName == "" {
		cfg.CookieName = "smt_session"
	}
	return &Handler{
		cfg:      cfg,
		items:    items,
		taxes:    taxes,
		cart:     cart,
		checkout: checkoutSvc,
		sessions: sessions,
		validate: validator.New(),
	}
}

// Routes returns the /api router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/items", h.listItems)
	r.Get("/items/{itemID}", h.getItem)
	r.Get("/taxes", h.listTaxes)

	r.Route("/cart", func(r chi.Router) {
		r.Get("/", h.getCart)
		r.Delete("/", h.clearCart)
		r.Post("/items", h.addItem)
		r.Delete("/items/{itemID}", h.removeItem)
		r.Post("/discount", h.applyDiscount)
		r.Delete("/discount", h.removeDiscount)
		r.Put("/tax", h.applyTax)
	})

	r.Post("/checkout", h.createPaymentIntent)

	return r
}
