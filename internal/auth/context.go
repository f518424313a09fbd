package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/wolfeidau/moontravel/internal/models"
)

// Principal is the identity a request was authorized as.
type Principal struct {
	UserID uuid.UUID
	Role   models.Role
}

type contextKey int

const (
	principalContextKey contextKey = iota
)

// WithPrincipal returns a context carrying principal.
func WithPrincipal(ctx context.Context, principal *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, principal)
}

// PrincipalFromContext extracts the authorized principal from the request context.
// Returns nil if the request did not pass through RequireRole.
func PrincipalFromContext(ctx context.Context) *Principal {
	principal, _ := ctx.Value(principalContextKey).(*Principal)
	return principal
}
