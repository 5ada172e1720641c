package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

// buildRouter creates a minimal chi.Mux with a set of routes for tests.
// It intentionally does not use Handler.Init() to avoid service/logger setup.
func buildRouter() *chi.Mux {
	router := chi.NewRouter()

	router.Post("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("session"))
	})
	router.Get("/api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Patch("/api/auth/profile", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Get("/api/admin/users", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}

func TestCheckHTTPMethod_TableTest(t *testing.T) {
	router := buildRouter()

	tests := []struct {
		name           string
		method         string
		path           string
		expectedStatus int
	}{
		{
			name:           "registered method passes through",
			method:         http.MethodPost,
			path:           "/api/auth/login",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "GET on POST-only route is reported as not found",
			method:         http.MethodGet,
			path:           "/api/auth/login",
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "DELETE on GET-only route is reported as not found",
			method:         http.MethodDelete,
			path:           "/api/auth/me",
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "PUT on PATCH-only route is reported as not found",
			method:         http.MethodPut,
			path:           "/api/auth/profile",
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "unknown path is not found",
			method:         http.MethodGet,
			path:           "/api/unknown",
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "registered GET route responds",
			method:         http.MethodGet,
			path:           "/api/admin/users",
			expectedStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			rr := httptest.NewRecorder()

			router.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
		})
	}
}

// A disallowed method must not leak the route's existence: the response is
// indistinguishable from a request to an unknown path.
func TestCheckHTTPMethod_NoMethodLeak(t *testing.T) {
	router := buildRouter()

	miss := httptest.NewRecorder()
	router.ServeHTTP(miss, httptest.NewRequest(http.MethodGet, "/api/unknown", nil))

	wrongMethod := httptest.NewRecorder()
	router.ServeHTTP(wrongMethod, httptest.NewRequest(http.MethodGet, "/api/auth/login", nil))

	assert.Equal(t, miss.Code, wrongMethod.Code)
	assert.Empty(t, wrongMethod.Header().Get("Allow"), "Allow header must not be set")
}
