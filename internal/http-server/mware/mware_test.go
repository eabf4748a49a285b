package mware_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/connect-bot/internal/http-server/mware"
)

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	})
	handler := middleware.RequestID(mware.Logger(log)(next))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusTeapot, w.Code)
	out := buf.String()
	assert.Contains(t, out, `"path":"/healthz"`)
	assert.Contains(t, out, `"status":418`)
	assert.Contains(t, out, `"bytes":15`)
	assert.Contains(t, out, `"request_id":"`)
}
