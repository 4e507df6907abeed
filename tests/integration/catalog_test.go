//go:build integration

package integration

import (
	"net/http"
	"regexp"
	"testing"
)

var uuidPattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

func TestListItems(t *testing.T) {
	client := newSession(t)
	resp := doReq(t, client, http.MethodGet, "/api/items", nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	items := decodeJSON[[]itemResponse](t, resp)
	if len(items) != 4 {
		t.Fatalf("expected 4 items, got %d", len(items))
	}

	for _, it := range items {
		if !uuidPattern.MatchString(it.ID) {
			t.Errorf("item ID %q is not a valid UUID", it.ID)
		}
		if it.Name == "" {
			t.Error("item name is empty")
		}
		if it.Currency != "USD" {
			t.Errorf("item currency: got %q, want USD", it.Currency)
		}
	}
}

func TestGetItem(t *testing.T) {
	client := newSession(t)
	mug := findItem(t, client, "Enamel mug")

	resp := doReq(t, client, http.MethodGet, "/api/items/"+mug.ID, nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	item := decodeJSON[itemResponse](t, resp)
	if item.Price != "10.00" {
		t.Errorf("price: got %q, want 10.00", item.Price)
	}
}

func TestGetItem_NotFound(t *testing.T) {
	client := newSession(t)
	resp := doReq(t, client, http.MethodGet, "/api/items/00000000-0000-4000-8000-000000000000", nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	body := decodeJSON[errorResponse](t, resp)
	if body.Code != http.StatusNotFound {
		t.Errorf("error code: got %d, want 404", body.Code)
	}
}

func TestListTaxes(t *testing.T) {
	client := newSession(t)
	resp := doReq(t, client, http.MethodGet, "/api/taxes", nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	taxes := decodeJSON[[]taxResponse](t, resp)
	if len(taxes) != 2 {
		t.Fatalf("expected 2 tax rules, got %d", len(taxes))
	}
}
