package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

// dashboardHosts is what a deployment with the web dashboard and Plaid Link
// would put in ALLOWED_ORIGINS.
var dashboardHosts = []string{"app.finsync.io", "localhost:5173", " cdn.plaid.com "}

func TestIsOriginAllowed(t *testing.T) {
	tests := []struct {
		name   string
		origin string
		want   bool
	}{
		{"Dashboard", "https://app.finsync.io", true},
		{"Dashboard on another port", "https://app.finsync.io:8443", true},
		{"Vite dev server", "http://localhost:5173", true},
		{"Dev server on wrong port", "http://localhost:3000", false},
		{"Plaid Link with padded config", "https://cdn.plaid.com", true},
		{"Mixed case", "HTTPS://App.FinSync.IO", true},
		{"Sibling subdomain", "https://admin.finsync.io", false},
		{"Lookalike", "https://app.finsync.io.attacker.net", false},
		{"Not a URL", "://app.finsync.io", false},
		{"Opaque origin", "null", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isOriginAllowed(tt.origin, dashboardHosts))
		})
	}
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name            string
		hosts           []string
		method          string
		origin          string
		wantStatus      int
		wantAllowOrigin string
		wantCredentials string
		wantNextCalled  bool
	}{
		{
			name:            "Open when unconfigured",
			hosts:           nil,
			method:          http.MethodGet,
			origin:          "https://anything.example",
			wantStatus:      http.StatusOK,
			wantAllowOrigin: "*",
			wantNextCalled:  true,
		},
		{
			name:            "Dashboard reads transactions",
			hosts:           dashboardHosts,
			method:          http.MethodGet,
			origin:          "https://app.finsync.io",
			wantStatus:      http.StatusOK,
			wantAllowOrigin: "https://app.finsync.io",
			wantCredentials: "true",
			wantNextCalled:  true,
		},
		{
			name:           "Unknown origin gets no headers",
			hosts:          dashboardHosts,
			method:         http.MethodGet,
			origin:         "https://evil.example",
			wantStatus:     http.StatusOK,
			wantNextCalled: true,
		},
		{
			name:           "Server to server call without Origin",
			hosts:          dashboardHosts,
			method:         http.MethodPost,
			wantStatus:     http.StatusOK,
			wantNextCalled: true,
		},
		{
			name:            "Preflight for sync",
			hosts:           dashboardHosts,
			method:          http.MethodOptions,
			origin:          "http://localhost:5173",
			wantStatus:      http.StatusNoContent,
			wantAllowOrigin: "http://localhost:5173",
			wantCredentials: "true",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(tt.method, "/user/1/sync", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if tt.method == http.MethodOptions {
				req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			}
			rr := httptest.NewRecorder()

			CORS(tt.hosts)(next).ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantAllowOrigin, rr.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tt.wantCredentials, rr.Header().Get("Access-Control-Allow-Credentials"))
			assert.Equal(t, tt.wantNextCalled, called)
		})
	}
}
