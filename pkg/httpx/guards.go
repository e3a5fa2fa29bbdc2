package httpx

import (
	"net/http"
	"slices"
	"strings"
)

// GuardConfig configures the request boundary guards applied to API routes.
type GuardConfig struct {
	// AllowedOrigins is the static CORS allow-list (scheme://host[:port]).
	AllowedOrigins []string

	// APIPrefix limits CORS/CSRF enforcement to matching paths. Security
	// headers are appended to every response regardless. Default "/api/".
	APIPrefix string

	// LoginPath is exempt from the CSRF same-origin check: it precedes
	// possession of a token by definition.
	LoginPath string
}

var mutatingMethods = []string{
	http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete,
}

// BoundaryGuard enforces the CORS allow-list and same-origin (CSRF) rules
// ahead of authentication, and appends security headers to every response.
// Token possession alone does not prove the request came from a trusted page
// context; this is the independent second layer.
func BoundaryGuard(cfg GuardConfig) Middleware {
	prefix := cfg.APIPrefix
	if prefix == "" {
		prefix = "/api/"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			setSecurityHeaders(w.Header())

			if !strings.HasPrefix(r.URL.Path, prefix) {
				next.ServeHTTP(w, r)
				return
			}

			origin := r.Header.Get("Origin")
			allowed := origin == "" || slices.Contains(cfg.AllowedOrigins, origin)

			// Preflight is answered here, never routed.
			if r.Method == http.MethodOptions {
				h := w.Header()
				if allowed && origin != "" {
					h.Set("Access-Control-Allow-Origin", origin)
				}
				h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
				h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-CSRF-Token")
				h.Set("Access-Control-Max-Age", "86400")
				h.Add("Vary", "Origin")
				w.WriteHeader(http.StatusNoContent)
				return
			}

			mutating := slices.Contains(mutatingMethods, r.Method)

			if mutating && !allowed {
				WriteError(w, http.StatusForbidden, "origin not allowed")
				return
			}

			if mutating && r.URL.Path != cfg.LoginPath && !sameOriginOK(r, cfg.AllowedOrigins) {
				WriteError(w, http.StatusForbidden, "blocked: invalid origin")
				return
			}

			if origin != "" && allowed {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
			}

			next.ServeHTTP(w, r)
		})
	}
}

// sameOriginOK implements the CSRF rule: Origin or Referer must either be
// absent (server-side/same-origin call), match the request's own host, or be
// on the allow-list.
func sameOriginOK(r *http.Request, allowedOrigins []string) bool {
	origin := r.Header.Get("Origin")
	referer := r.Header.Get("Referer")
	host := r.Host

	originOK := origin == "" ||
		strings.Contains(origin, host) ||
		slices.Contains(allowedOrigins, origin)

	refererOK := referer == "" ||
		strings.Contains(referer, host) ||
		slices.ContainsFunc(allowedOrigins, func(o string) bool {
			return strings.HasPrefix(referer, o)
		})

	return originOK || refererOK
}

func setSecurityHeaders(h http.Header) {
	for k, v := range map[string]string{
		"X-Frame-Options":        "DENY",
		"X-Content-Type-Options": "nosniff",
		"X-XSS-Protection":       "1; mode=block",
		"Referrer-Policy":        "strict-origin-when-cross-origin",
		"Permissions-Policy":     "camera=(), microphone=(), geolocation=(), payment=()",
	} {
		if h.Get(k) == "" {
			h.Set(k, v)
		}
	}
}
