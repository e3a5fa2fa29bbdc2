package http

import (
	"context"

	"github.com/femundo/cms/internal/admin/domain"
)

// Identity is the authenticated caller, resolved fresh from the store on
// this request. Modules is the effective module grant for the role.
type Identity struct {
	User    domain.User
	Modules []string
}

type identityKey struct{}

func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
