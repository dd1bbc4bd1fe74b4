package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	domain "github.com/laundryhub/api/internal/domain"
	"github.com/laundryhub/api/internal/platform/httpx"
	"github.com/laundryhub/api/internal/platform/requestctx"
)

// IdentityHook runs once per authenticated request, after verification.
type IdentityHook func(ctx context.Context, identity *Identity) error

// Authenticator turns bearer tokens into request identities.
type Authenticator struct {
	verifier Verifier
	timeout  time.Duration
	hook     IdentityHook
}

// Option customises an Authenticator.
type Option func(*Authenticator)

// WithVerificationTimeout bounds each verification call.
func WithVerificationTimeout(d time.Duration) Option {
	return func(a *Authenticator) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithIdentityHook registers a hook such as profile provisioning. Hook errors are logged and
// do not fail the request.
func WithIdentityHook(hook IdentityHook) Option {
	return func(a *Authenticator) {
		a.hook = hook
	}
}

// NewAuthenticator builds an Authenticator around verifier.
func NewAuthenticator(verifier Verifier, opts ...Option) *Authenticator {
	a := &Authenticator{verifier: verifier, timeout: defaultVerifyTimeout}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

// RequireAuth rejects requests without a valid bearer token. When roles are given the identity
// must carry one of them.
func (a *Authenticator) RequireAuth(roles ...domain.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "authorization header missing or invalid", http.StatusUnauthorized))
				return
			}
			if a == nil || a.verifier == nil {
				httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "authorization service unavailable", http.StatusUnauthorized))
				return
			}

			verifyCtx, cancel := context.WithTimeout(ctx, a.timeout)
			identity, err := a.verifier.Verify(verifyCtx, token)
			cancel()
			if err != nil {
				writeVerificationError(ctx, w, err)
				return
			}
			if len(roles) > 0 && !identity.HasAnyRole(roles...) {
				httpx.WriteError(ctx, w, httpx.NewError("insufficient_role", "identity does not have required role", http.StatusForbidden))
				return
			}

			ctx = WithIdentity(ctx, identity)
			if a.hook != nil {
				if err := a.hook(ctx, identity); err != nil {
					requestctx.Logger(ctx).Warn("auth identity hook failed",
						zap.String("uid", identity.UID),
						zap.Error(err),
					)
				}
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeVerificationError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrTokenExpired):
		httpx.WriteError(ctx, w, httpx.NewError("token_expired", "token expired", http.StatusUnauthorized))
	case errors.Is(err, ErrTokenInvalid):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_token", "token invalid", http.StatusUnauthorized))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("invalid_token", "token verification failed", http.StatusUnauthorized))
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
