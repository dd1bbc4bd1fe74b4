package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	firebaseauth "firebase.google.com/go/v4/auth"

	domain "github.com/laundryhub/api/internal/domain"
)

type stubVerifier struct {
	identity *Identity
	err      error
	received string
}

func (s *stubVerifier) Verify(_ context.Context, token string) (*Identity, error) {
	s.received = token
	if s.err != nil {
		return nil, s.err
	}
	return s.identity, nil
}

func serve(t *testing.T, handler http.Handler, header string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	code, _ := body["error"].(string)
	return code
}

func TestRequireAuthAttachesIdentity(t *testing.T) {
	verifier := &stubVerifier{identity: &Identity{UID: "uid-1", Role: domain.UserRoleUser}}
	var hooked string
	authn := NewAuthenticator(verifier, WithIdentityHook(func(_ context.Context, identity *Identity) error {
		hooked = identity.UID
		return errors.New("profile store down")
	}))

	called := false
	handler := authn.RequireAuth()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		identity, ok := IdentityFromContext(r.Context())
		if !ok || identity.UID != "uid-1" {
			t.Fatalf("expected identity in context, got %+v", identity)
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := serve(t, handler, "Bearer abc.def")
	if !called || rec.Code != http.StatusNoContent {
		t.Fatalf("expected handler to run, status %d", rec.Code)
	}
	if verifier.received != "abc.def" {
		t.Fatalf("unexpected token forwarded: %q", verifier.received)
	}
	if hooked != "uid-1" {
		t.Fatalf("expected hook to run for uid-1")
	}
}

func TestRequireAuthRejections(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		verifier *stubVerifier
		roles    []domain.UserRole
		status   int
		code     string
	}{
		{name: "missing header", status: http.StatusUnauthorized, code: "unauthenticated", verifier: &stubVerifier{}},
		{name: "wrong scheme", header: "Basic abc", status: http.StatusUnauthorized, code: "unauthenticated", verifier: &stubVerifier{}},
		{name: "expired", header: "Bearer t", verifier: &stubVerifier{err: ErrTokenExpired}, status: http.StatusUnauthorized, code: "token_expired"},
		{name: "invalid", header: "Bearer t", verifier: &stubVerifier{err: ErrTokenInvalid}, status: http.StatusUnauthorized, code: "invalid_token"},
		{
			name:     "role",
			header:   "Bearer t",
			verifier: &stubVerifier{identity: &Identity{UID: "uid-1", Role: domain.UserRoleUser}},
			roles:    []domain.UserRole{domain.UserRoleAdmin, domain.UserRoleStaff},
			status:   http.StatusForbidden,
			code:     "insufficient_role",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			handler := NewAuthenticator(tc.verifier).RequireAuth(tc.roles...)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
				t.Fatalf("handler should not run")
			}))
			rec := serve(t, handler, tc.header)
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
			if code := errorCode(t, rec); code != tc.code {
				t.Fatalf("expected %s, got %s", tc.code, code)
			}
		})
	}
}

func TestRequireAuthAllowsStaffOnAdminRoutes(t *testing.T) {
	verifier := &stubVerifier{identity: &Identity{UID: "staff-1", Role: domain.UserRoleStaff}}
	handler := NewAuthenticator(verifier).RequireAuth(domain.UserRoleAdmin, domain.UserRoleStaff)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	if rec := serve(t, handler, "Bearer t"); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

type stubIDTokenVerifier struct {
	token *firebaseauth.Token
	err   error
}

func (s stubIDTokenVerifier) VerifyIDToken(context.Context, string) (*firebaseauth.Token, error) {
	return s.token, s.err
}

func TestFirebaseVerifierMapsClaims(t *testing.T) {
	verifier := NewFirebaseVerifierWithClient(stubIDTokenVerifier{token: &firebaseauth.Token{
		UID: "uid-9",
		Claims: map[string]any{
			"email": "asha@example.com",
			"name":  "Asha",
			"role":  []any{"user", "staff"},
		},
	}})
	identity, err := verifier.Verify(context.Background(), "token")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if identity.UID != "uid-9" || identity.Email != "asha@example.com" || identity.Name != "Asha" {
		t.Fatalf("unexpected identity %+v", identity)
	}
	if identity.Role != domain.UserRoleStaff || !identity.IsStaff() {
		t.Fatalf("expected staff role, got %s", identity.Role)
	}
}

func TestFirebaseVerifierDefaultsToUserRole(t *testing.T) {
	verifier := NewFirebaseVerifierWithClient(stubIDTokenVerifier{token: &firebaseauth.Token{UID: "uid-9", Claims: map[string]any{}}})
	identity, err := verifier.Verify(context.Background(), "token")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if identity.Role != domain.UserRoleUser {
		t.Fatalf("expected user role, got %s", identity.Role)
	}

	failing := NewFirebaseVerifierWithClient(stubIDTokenVerifier{err: errors.New("network")})
	if _, err := failing.Verify(context.Background(), "token"); err == nil {
		t.Fatalf("expected error")
	}
}
