package httpx

import "context"

type ctxKey string

// CtxKeyUserID carries the authenticated user's id (as a string) for
// middleware that only needs a stable key, like per-user rate limiting.
// Full identity lives in the admin http package's own context.
const CtxKeyUserID ctxKey = "user_id"

// UserIDFromContext returns the authenticated user id string, if any.
func UserIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyUserID).(string); ok {
		return v
	}
	return ""
}

// ContextWithUserID attaches the authenticated user id string.
func ContextWithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CtxKeyUserID, id)
}
