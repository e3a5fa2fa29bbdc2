package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/femundo/cms/internal/admin/domain"
	"github.com/femundo/cms/internal/admin/permissions"
	"github.com/femundo/cms/internal/admin/service"
	"github.com/femundo/cms/internal/admin/store"
	"github.com/femundo/cms/pkg/httpx"
	"github.com/femundo/cms/pkg/jwtx"
	"github.com/femundo/cms/pkg/slogx"
)

// Authenticate verifies the bearer token and re-fetches the account on
// every request. A valid signature is not enough: the row must still exist
// and be active, so deactivation revokes outstanding tokens immediately.
func Authenticate(verifier jwtx.Verifier, auth *service.AuthService) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token := bearerToken(r)
			if token == "" {
				httpx.WriteError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				httpx.WriteError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			u, err := auth.GetUser(ctx, claims.UserID)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					httpx.WriteError(w, http.StatusUnauthorized, "invalid or expired token")
					return
				}
				slogx.FromContext(ctx).Error("user lookup failed",
					slog.Int64("user_id", claims.UserID), slog.Any("error", err))
				httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
				return
			}
			if !u.IsActive {
				httpx.WriteError(w, http.StatusUnauthorized, "account disabled")
				return
			}

			identity := Identity{
				User:    u,
				Modules: permissions.ResolveModules(u.Role, u.AllowedModules),
			}
			ctx = ContextWithIdentity(ctx, identity)
			ctx = httpx.ContextWithUserID(ctx, strconv.FormatInt(u.ID, 10))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole gates a route on the role hierarchy: the caller's role must
// rank at least as high as minimum. Equivalent to an explicit allow-list of
// minimum-and-above, since permitted role sets are always contiguous upward
// ranges here. Super admins pass every gate regardless of the minimum asked
// for.
func RequireRole(minimum domain.Role) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromContext(r.Context())
			if !ok {
				httpx.WriteError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			if id.User.Role != domain.RoleSuperAdmin && !id.User.Role.AtLeast(minimum) {
				httpx.WriteError(w, http.StatusForbidden, "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireModule gates a route on the caller's effective module grant.
func RequireModule(moduleKey string) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromContext(r.Context())
			if !ok {
				httpx.WriteError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			if !permissions.CanAccess(id.User.Role, id.User.AllowedModules, moduleKey) {
				httpx.WriteError(w, http.StatusForbidden, "module access denied")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
