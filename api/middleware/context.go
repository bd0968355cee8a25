package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/angelmondragon/mediashare-backend/pkg/enums"
)

type contextKey string

const ctxIdentity contextKey = "identity"

// Identity is the authenticated caller attached by Auth. It never carries
// credential material.
type Identity struct {
	ID       uuid.UUID
	Username string
	Role     enums.UserRole
}

// IdentityFromContext returns the caller attached by Auth, if any.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	v, ok := ctx.Value(ctxIdentity).(Identity)
	return v, ok
}

func UserIDFromContext(ctx context.Context) string {
	if id, ok := IdentityFromContext(ctx); ok {
		return id.ID.String()
	}
	return ""
}

func RoleFromContext(ctx context.Context) string {
	if id, ok := IdentityFromContext(ctx); ok {
		return string(id.Role)
	}
	return ""
}

// WithIdentity injects the caller into the context. Tests use it to bypass Auth.
func WithIdentity(ctx context.Context, identity Identity) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxIdentity, identity)
}
