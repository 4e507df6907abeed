package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/smtdev/storefront/internal/session"
)

// sessionToken returns the session token from the request cookie, if any.
func (h *Handler) sessionToken(r *http.Request) (string, bool) {
	c, err := r.Cookie(h.cfg.CookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

// ensureToken returns the request's session token, minting one and setting
// the cookie when the client has none yet.
func (h *Handler) ensureToken(w http.ResponseWriter, r *http.Request) string {
	if token, ok := h.sessionToken(r); ok {
		return token
	}
	token := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     h.cfg.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	return token
}

// boundOrderID resolves the session cookie to its cart id. A missing cookie
// and a missing binding both report session.ErrNoBinding.
func (h *Handler) boundOrderID(r *http.Request) (string, error) {
	token, ok := h.sessionToken(r)
	if !ok {
		return "", session.ErrNoBinding
	}
	orderID, err := h.sessions.Lookup(r.Context(), token)
	if err != nil {
		return "", errors.Wrap(err, "lookup session binding")
	}
	return orderID, nil
}
