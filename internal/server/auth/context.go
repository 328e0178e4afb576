package auth

import (
	"context"

	"github.com/dmitrijs2005/gophsocial/internal/server/models"
)

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id models.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the identity attached by WithIdentity.
// ok is false for anonymous requests.
func IdentityFromContext(ctx context.Context) (models.Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(models.Identity)
	return id, ok
}

// Authorize is the ownership check: the caller may mutate a resource only
// when it owns it.
func Authorize(id models.Identity, ownerID int64) bool {
	return id.UserID > 0 && id.UserID == ownerID
}
