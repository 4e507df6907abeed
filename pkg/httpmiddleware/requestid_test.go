package httpmiddleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serveWithRequestID(t *testing.T, header string) (*httptest.ResponseRecorder, string) {
	t.Helper()

	var ctxID string
	next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		ctxID = RequestIDFromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("X-Request-ID", header)
	}
	rec := httptest.NewRecorder()
	RequestID()(next).ServeHTTP(rec, req)
	return rec, ctxID
}

func TestRequestID_GeneratesWhenMissing(t *testing.T) {
	rec, ctxID := serveWithRequestID(t, "")

	id := rec.Header().Get("X-Request-ID")
	require.NotEmpty(t, id)
	_, err := uuid.Parse(id)
	assert.NoError(t, err)
	assert.Equal(t, id, ctxID)
}

func TestRequestID_ReusesValidHeader(t *testing.T) {
	rec, ctxID := serveWithRequestID(t, "trace-42")

	assert.Equal(t, "trace-42", rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "trace-42", ctxID)
}

func TestRequestID_RejectsNonPrintable(t *testing.T) {
	rec, _ := serveWithRequestID(t, "bad\x00id")

	id := rec.Header().Get("X-Request-ID")
	assert.NotEqual(t, "bad\x00id", id)
	_, err := uuid.Parse(id)
	assert.NoError(t, err)
}
