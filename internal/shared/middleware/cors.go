package middleware

import (
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/cors"
)

// CORS allows browser access from the configured hosts. With no hosts
// configured every origin is allowed without credentials.
func CORS(allowedHosts []string) func(http.Handler) http.Handler {
	opts := cors.Options{
		AllowedMethods:       []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:       []string{"Content-Type", "Authorization", "X-Request-Id"},
		MaxAge:               3600,
		OptionsSuccessStatus: http.StatusNoContent,
	}

	if len(allowedHosts) == 0 {
		opts.AllowedOrigins = []string{"*"}
	} else {
		opts.AllowOriginFunc = func(r *http.Request, origin string) bool {
			return isOriginAllowed(origin, allowedHosts)
		}
		opts.AllowCredentials = true
	}

	return cors.Handler(opts)
}

// isOriginAllowed matches the origin's host against the allowed hosts. A host
// without a port matches any port.
func isOriginAllowed(origin string, allowedHosts []string) bool {
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}

	host := strings.ToLower(u.Host)
	hostWithoutPort, _, err := net.SplitHostPort(host)
	if err != nil {
		hostWithoutPort = host
	}

	for _, allowed := range allowedHosts {
		allowed = strings.ToLower(strings.TrimSpace(allowed))
		if allowed == "" {
			continue
		}
		if host == allowed {
			return true
		}
		if !strings.Contains(allowed, ":") && hostWithoutPort == allowed {
			return true
		}
	}
	return false
}
