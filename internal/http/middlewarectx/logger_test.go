package middlewarectx

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
)

func TestRequestLogger_OmitsQuery(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	h := middleware.RequestID(RequestLogger(log)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusFound)
	})))

	h.ServeHTTP(httptest.NewRecorder(),
		httptest.NewRequest(http.MethodGet, "/api/license-manager/get?p=my-plugin&e=buyer%40example.com&l=SECRETKEY", nil))

	out := buf.String()
	assert.Contains(t, out, "path=/api/license-manager/get")
	assert.Contains(t, out, "status=302")
	assert.Contains(t, out, "request_id=")
	assert.NotContains(t, out, "buyer")
	assert.NotContains(t, out, "SECRETKEY")
}
