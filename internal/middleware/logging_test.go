package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/snowskye/lead-gateway/pkg/logger"
)

func TestLoggingCorrelationID(t *testing.T) {
	var seen string
	handler := Logging(logger.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetCorrelationID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	// A generated ID reaches both the handler context and the response.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotEmpty(t, seen)
	require.Equal(t, seen, rec.Header().Get("X-Correlation-ID"))

	// A caller-supplied ID is propagated, not replaced.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Correlation-ID", "caller-id")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, "caller-id", seen)
	require.Equal(t, "caller-id", rec.Header().Get("X-Correlation-ID"))
}
