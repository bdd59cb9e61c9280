package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/w-h-a/librarian/server"
)

func TestHandleWithMiddleware(t *testing.T) {
	tag := func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Tag", "librarian")
			h.ServeHTTP(w, r)
		})
	}

	srv := NewServer(server.WithAddress(":0"), WithMiddleware(tag))
	srv.Handle("/health", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}), http.MethodGet)

	router := srv.(interface{ Router() http.Handler }).Router()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "librarian", rec.Header().Get("X-Tag"))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/health", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	assert.Equal(t, ":0", srv.Address())
}
