package auth

import (
	"context"
	"errors"
	"strings"

	domain "github.com/laundryhub/api/internal/domain"
)

var (
	// ErrTokenExpired signals that the bearer token has expired.
	ErrTokenExpired = errors.New("auth: token expired")
	// ErrTokenInvalid signals a malformed token, a bad signature or an unexpected issuer.
	ErrTokenInvalid = errors.New("auth: token invalid")
)

// Verifier turns a bearer token into an Identity.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// Identity is the authenticated principal attached to a request.
type Identity struct {
	UID      string
	Email    string
	Name     string
	Role     domain.UserRole
	Provider string
}

// HasAnyRole reports whether the identity carries one of roles.
func (i *Identity) HasAnyRole(roles ...domain.UserRole) bool {
	if i == nil {
		return false
	}
	for _, role := range roles {
		if i.Role == role {
			return true
		}
	}
	return false
}

// IsStaff reports whether the identity may use admin endpoints.
func (i *Identity) IsStaff() bool {
	return i.HasAnyRole(domain.UserRoleStaff, domain.UserRoleAdmin)
}

type contextKey struct{}

// WithIdentity stores identity on ctx.
func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, identity)
}

// IdentityFromContext returns the identity stored by the middleware.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	if ctx == nil {
		return nil, false
	}
	identity, ok := ctx.Value(contextKey{}).(*Identity)
	if !ok || identity == nil {
		return nil, false
	}
	return identity, true
}

// roleFromClaim maps a custom claim to a role. Unknown or absent values fall back to user.
func roleFromClaim(raw any) domain.UserRole {
	var candidates []string
	switch v := raw.(type) {
	case string:
		candidates = []string{v}
	case []string:
		candidates = v
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				candidates = append(candidates, s)
			}
		}
	}
	best := domain.UserRoleUser
	for _, candidate := range candidates {
		switch domain.UserRole(strings.ToLower(strings.TrimSpace(candidate))) {
		case domain.UserRoleAdmin:
			return domain.UserRoleAdmin
		case domain.UserRoleStaff:
			best = domain.UserRoleStaff
		}
	}
	return best
}

func claimString(claims map[string]any, key string) string {
	if v, ok := claims[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}
