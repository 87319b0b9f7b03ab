package server

import (
	"context"

	"casevault/internal/models"
)

type authContextKey struct{}

func contextWithIdentity(ctx context.Context, identity models.Identity) context.Context {
	return context.WithValue(ctx, authContextKey{}, identity)
}

func identityFromContext(ctx context.Context) (models.Identity, bool) {
	if ctx == nil {
		return models.Identity{}, false
	}
	identity, ok := ctx.Value(authContextKey{}).(models.Identity)
	return identity, ok
}
