package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smtdev/storefront/internal/domain/catalog"
	"github.com/smtdev/storefront/internal/domain/checkout"
	"github.com/smtdev/storefront/internal/domain/order"
	"github.com/smtdev/storefront/internal/domain/pricing"
	"github.com/smtdev/storefront/internal/session"
)

const (
	mugID     = "5f1f9b85-7e62-45b7-9c19-1f6f0f53a001"
	toteID    = "2b9cf6b2-3c44-4f0a-a0ad-1f6f0f53a002"
	missingID = "00000000-0000-4000-8000-000000000000"
	vatTaxID  = "f3b3a1de-9b1c-4f8e-8a37-1f6f0f53a010"
)

type memItemRepo struct {
	items map[string]catalog.Item
}

func (m *memItemRepo) List(context.Context) ([]catalog.Item, error) {
	out := make([]catalog.Item, 0, len(m.items))
	for _, it := range m.items {
		out = append(out, it)
	}
	return out, nil
}

func (m *memItemRepo) GetByID(_ context.Context, id string) (*catalog.Item, error) {
	it, ok := m.items[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return &it, nil
}

type memDiscountRepo struct {
	discounts map[string]pricing.Discount
}

func (m *memDiscountRepo) FindByCode(_ context.Context, code string) (*pricing.Discount, error) {
	d, ok := m.discounts[code]
	if !ok {
		return nil, pricing.ErrUnknownCode
	}
	return &d, nil
}

type memTaxRepo struct {
	taxes map[string]pricing.Tax
}

func (m *memTaxRepo) List(context.Context) ([]pricing.Tax, error) {
	out := make([]pricing.Tax, 0, len(m.taxes))
	for _, tx := range m.taxes {
		out = append(out, tx)
	}
	return out, nil
}

func (m *memTaxRepo) GetByID(_ context.Context, id string) (*pricing.Tax, error) {
	tx, ok := m.taxes[id]
	if !ok {
		return nil, pricing.ErrTaxNotFound
	}
	return &tx, nil
}

type memOrderRepo struct {
	orders map[string]*order.Order
}

func (m *memOrderRepo) Get(_ context.Context, id string) (*order.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	cp := *o
	cp.Lines = append([]order.Line(nil), o.Lines...)
	return &cp, nil
}

func (m *memOrderRepo) Save(_ context.Context, o *order.Order) error {
	cp := *o
	cp.Lines = append([]order.Line(nil), o.Lines...)
	m.orders[o.ID] = &cp
	return nil
}

type memSessionStore struct {
	bindings map[string]string
}

func (m *memSessionStore) Lookup(_ context.Context, token string) (string, error) {
	id, ok := m.bindings[token]
	if !ok {
		return "", session.ErrNoBinding
	}
	return id, nil
}

func (m *memSessionStore) Bind(_ context.Context, token, orderID string) error {
	m.bindings[token] = orderID
	return nil
}

func (m *memSessionStore) Clear(_ context.Context, token string) error {
	delete(m.bindings, token)
	return nil
}

type mockGateway struct {
	intent *checkout.Intent
	err    error
	calls  int
}

func (m *mockGateway) CreatePaymentIntent(_ context.Context, amount int64, currency string) (*checkout.Intent, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	intent := *m.intent
	intent.AmountMinor = amount
	intent.Currency = currency
	return &intent, nil
}

type env struct {
	server   *httptest.Server
	client   *http.Client
	sessions *memSessionStore
	gateway  *mockGateway
}

func newEnv(t *testing.T) *env {
	t.Helper()

	d := func(s string) decimal.Decimal {
		return decimal.RequireFromString(s)
	}

	items := &memItemRepo{items: map[string]catalog.Item{
		mugID:  {ID: mugID, Name: "Enamel mug", Price: d("10.00"), Currency: "USD"},
		toteID: {ID: toteID, Name: "Canvas tote", Price: d("14.50"), Currency: "USD"},
	}}
	discounts := &memDiscountRepo{discounts: map[string]pricing.Discount{
		"WELCOME10": {ID: "disc-1", Code: "WELCOME10", Percentage: d("10")},
	}}
	taxes := &memTaxRepo{taxes: map[string]pricing.Tax{
		vatTaxID: {ID: vatTaxID, Name: "VAT 5%", Percentage: d("5")},
	}}
	orders := &memOrderRepo{orders: map[string]*order.Order{}}
	sessions := &memSessionStore{bindings: map[string]string{}}
	gateway := &mockGateway{intent: &checkout.Intent{ID: "pi_test", ClientSecret: "pi_test_secret"}}

	h := New(
		Config{CookieName: "smt_session"},
		items,
		taxes,
		order.NewService(items, discounts, taxes, orders),
		checkout.NewService(orders, gateway, checkout.Limits{}),
		sessions,
	)

	server := httptest.NewServer(h.Routes())
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &env{
		server:   server,
		client:   &http.Client{Jar: jar, Timeout: 5 * time.Second},
		sessions: sessions,
		gateway:  gateway,
	}
}

func (e *env) do(t *testing.T, method, path string, body any) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequest(method, e.server.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := e.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func decodeCart(t *testing.T, data []byte) cartResponse {
	t.Helper()
	var resp cartResponse
	require.NoError(t, json.Unmarshal(data, &resp))
	return resp
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

func TestListItems(t *testing.T) {
	e := newEnv(t)

	code, data := e.do(t, http.MethodGet, "/items", nil)
	require.Equal(t, http.StatusOK, code)

	var items []itemResponse
	require.NoError(t, json.Unmarshal(data, &items))
	assert.Len(t, items, 2)
}

func TestGetItem(t *testing.T) {
	e := newEnv(t)

	code, data := e.do(t, http.MethodGet, "/items/"+mugID, nil)
	require.Equal(t, http.StatusOK, code)

	var item itemResponse
	require.NoError(t, json.Unmarshal(data, &item))
	assert.Equal(t, "Enamel mug", item.Name)
	assertDecimal(t, "10.00", item.Price)
}

func TestGetItem_NotFound(t *testing.T) {
	e := newEnv(t)

	code, data := e.do(t, http.MethodGet, "/items/"+missingID, nil)
	assert.Equal(t, http.StatusNotFound, code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(data, &resp))
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestGetItem_MalformedID(t *testing.T) {
	e := newEnv(t)

	code, _ := e.do(t, http.MethodGet, "/items/not-a-uuid", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestListTaxes(t *testing.T) {
	e := newEnv(t)

	code, data := e.do(t, http.MethodGet, "/taxes", nil)
	require.Equal(t, http.StatusOK, code)

	var taxes []taxResponse
	require.NoError(t, json.Unmarshal(data, &taxes))
	require.Len(t, taxes, 1)
	assert.Equal(t, "VAT 5%", taxes[0].Name)
}

func TestGetCart_NoSession(t *testing.T) {
	e := newEnv(t)

	code, _ := e.do(t, http.MethodGet, "/cart", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestAddItem_CreatesCartAndSession(t *testing.T) {
	e := newEnv(t)

	code, data := e.do(t, http.MethodPost, "/cart/items", addItemRequest{ItemID: mugID})
	require.Equal(t, http.StatusOK, code)

	cart := decodeCart(t, data)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 1, cart.Lines[0].Quantity)
	assertDecimal(t, "10.00", cart.Summary.Total)
	assert.Len(t, e.sessions.bindings, 1)

	// Same cookie jar: the follow-up lands on the same cart.
	code, data = e.do(t, http.MethodPost, "/cart/items", addItemRequest{ItemID: mugID})
	require.Equal(t, http.StatusOK, code)

	cart = decodeCart(t, data)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 2, cart.Lines[0].Quantity)
	assertDecimal(t, "20.00", cart.Summary.Total)
	assert.Len(t, e.sessions.bindings, 1)
}

func TestAddItem_UnknownItem(t *testing.T) {
	e := newEnv(t)

	code, _ := e.do(t, http.MethodPost, "/cart/items", addItemRequest{ItemID: missingID})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Empty(t, e.sessions.bindings)
}

func TestAddItem_InvalidBody(t *testing.T) {
	e := newEnv(t)

	code, _ := e.do(t, http.MethodPost, "/cart/items", map[string]string{"itemId": "not-a-uuid"})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestRemoveItem(t *testing.T) {
	e := newEnv(t)
	e.do(t, http.MethodPost, "/cart/items", addItemRequest{ItemID: mugID})
	e.do(t, http.MethodPost, "/cart/items", addItemRequest{ItemID: toteID})

	code, data := e.do(t, http.MethodDelete, "/cart/items/"+toteID, nil)
	require.Equal(t, http.StatusOK, code)

	cart := decodeCart(t, data)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, mugID, cart.Lines[0].Item.ID)
	assertDecimal(t, "10.00", cart.Summary.Total)
}

func TestRemoveItem_NoSuchLine(t *testing.T) {
	e := newEnv(t)
	e.do(t, http.MethodPost, "/cart/items", addItemRequest{ItemID: mugID})

	code, _ := e.do(t, http.MethodDelete, "/cart/items/"+toteID, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestClearCart(t *testing.T) {
	e := newEnv(t)
	e.do(t, http.MethodPost, "/cart/items", addItemRequest{ItemID: mugID})

	code, data := e.do(t, http.MethodDelete, "/cart", nil)
	require.Equal(t, http.StatusOK, code)

	cart := decodeCart(t, data)
	assert.Empty(t, cart.Lines)
	assertDecimal(t, "0", cart.Summary.Total)
}

func TestPricingFlow(t *testing.T) {
	e := newEnv(t)

	// Two mugs at 10.00.
	e.do(t, http.MethodPost, "/cart/items", addItemRequest{ItemID: mugID})
	code, data := e.do(t, http.MethodPost, "/cart/items", addItemRequest{ItemID: mugID})
	require.Equal(t, http.StatusOK, code)
	assertDecimal(t, "20.00", decodeCart(t, data).Summary.Total)

	// 10% discount.
	code, data = e.do(t, http.MethodPost, "/cart/discount", applyDiscountRequest{Code: "WELCOME10"})
	require.Equal(t, http.StatusOK, code)
	cart := decodeCart(t, data)
	require.NotNil(t, cart.Discount)
	assertDecimal(t, "2.00", cart.Summary.DiscountAmount)
	assertDecimal(t, "18.00", cart.Summary.Total)

	// 5% tax on the discounted base.
	code, data = e.do(t, http.MethodPut, "/cart/tax", applyTaxRequest{TaxID: ptr(vatTaxID)})
	require.Equal(t, http.StatusOK, code)
	cart = decodeCart(t, data)
	require.NotNil(t, cart.Tax)
	assertDecimal(t, "0.90", cart.Summary.TaxAmount)
	assertDecimal(t, "18.90", cart.Summary.Total)

	// Dropping the discount re-bases the tax.
	code, data = e.do(t, http.MethodDelete, "/cart/discount", nil)
	require.Equal(t, http.StatusOK, code)
	cart = decodeCart(t, data)
	assert.Nil(t, cart.Discount)
	assertDecimal(t, "1.00", cart.Summary.TaxAmount)
	assertDecimal(t, "21.00", cart.Summary.Total)
}

func TestApplyDiscount_UnknownCode(t *testing.T) {
	e := newEnv(t)
	e.do(t, http.MethodPost, "/cart/items", addItemRequest{ItemID: mugID})

	code, data := e.do(t, http.MethodPost, "/cart/discount", applyDiscountRequest{Code: "NOPE"})
	require.Equal(t, http.StatusUnprocessableEntity, code)

	var resp discountRejectedResponse
	require.NoError(t, json.Unmarshal(data, &resp))
	assert.False(t, resp.Applied)

	// The cart keeps its previous total.
	code, data = e.do(t, http.MethodGet, "/cart", nil)
	require.Equal(t, http.StatusOK, code)
	cart := decodeCart(t, data)
	assert.Nil(t, cart.Discount)
	assertDecimal(t, "10.00", cart.Summary.Total)
}

func TestApplyTax_NullClears(t *testing.T) {
	e := newEnv(t)
	e.do(t, http.MethodPost, "/cart/items", addItemRequest{ItemID: mugID})
	e.do(t, http.MethodPut, "/cart/tax", applyTaxRequest{TaxID: ptr(vatTaxID)})

	code, data := e.do(t, http.MethodPut, "/cart/tax", applyTaxRequest{})
	require.Equal(t, http.StatusOK, code)

	cart := decodeCart(t, data)
	assert.Nil(t, cart.Tax)
	assertDecimal(t, "10.00", cart.Summary.Total)
}

func TestCheckout(t *testing.T) {
	e := newEnv(t)
	e.do(t, http.MethodPost, "/cart/items", addItemRequest{ItemID: mugID})

	code, data := e.do(t, http.MethodPost, "/checkout", nil)
	require.Equal(t, http.StatusOK, code)

	var resp checkoutResponse
	require.NoError(t, json.Unmarshal(data, &resp))
	assert.Equal(t, "pi_test", resp.PaymentIntentID)
	assert.Equal(t, int64(1000), resp.Amount)
	assert.Equal(t, "USD", resp.Currency)
}

func TestCheckout_EmptyCart(t *testing.T) {
	e := newEnv(t)
	e.do(t, http.MethodPost, "/cart/items", addItemRequest{ItemID: mugID})
	e.do(t, http.MethodDelete, "/cart", nil)

	code, _ := e.do(t, http.MethodPost, "/checkout", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Zero(t, e.gateway.calls)
}

func TestCheckout_NoSession(t *testing.T) {
	e := newEnv(t)

	code, _ := e.do(t, http.MethodPost, "/checkout", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestCheckout_GatewayError(t *testing.T) {
	e := newEnv(t)
	e.gateway.err = &checkout.GatewayError{Provider: "stripe", Message: "card declined"}
	e.do(t, http.MethodPost, "/cart/items", addItemRequest{ItemID: mugID})

	code, data := e.do(t, http.MethodPost, "/checkout", nil)
	assert.Equal(t, http.StatusBadGateway, code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(data, &resp))
	assert.NotContains(t, resp.Message, "card declined")
}

func TestMapError_ItemNotFoundSentinel(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	mapError(rec, req, catalog.ErrNotFound)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMapError_Unmatched(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	mapError(rec, req, errors.Wrap(fmt.Errorf("boom"), "load"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func ptr(s string) *string {
	return &s
}
