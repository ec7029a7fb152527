package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/cardkraft/backend-cards/internal/common"
)

func okHandler(sawUser *string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := common.UserID(r.Context()); ok {
			*sawUser = id
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestRequireAuthRejectsMissingToken(t *testing.T) {
	mw := Middleware{Verifier: testVerifier()}
	var saw string
	rec := httptest.NewRecorder()
	mw.RequireAuth(okHandler(&saw)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestRequireAuthAcceptsBearerToken(t *testing.T) {
	mw := Middleware{Verifier: testVerifier()}
	var saw string
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, nil))
	rec := httptest.NewRecorder()
	mw.RequireAuth(okHandler(&saw)).ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 got %d", rec.Code)
	}
	if saw != "user-1" {
		t.Fatalf("expected user id on context, got %q", saw)
	}
}

func TestAuthenticatePassesAnonymous(t *testing.T) {
	mw := Middleware{Verifier: testVerifier()}
	var saw string
	rec := httptest.NewRecorder()
	mw.Authenticate(okHandler(&saw)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected anonymous passthrough, got %d", rec.Code)
	}
	if saw != "" {
		t.Fatalf("expected no user id, got %q", saw)
	}
}

func TestRequireRole(t *testing.T) {
	mw := Middleware{Verifier: testVerifier()}
	var saw string
	guard := mw.RequireRole(RoleAdmin)(okHandler(&saw))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, func(b *jwt.Builder) {
		b.Claim("role", "customer")
	}))
	rec := httptest.NewRecorder()
	guard.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for wrong role, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, func(b *jwt.Builder) {
		b.Claim("role", RoleAdmin)
	}))
	rec = httptest.NewRecorder()
	guard.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for admin, got %d", rec.Code)
	}
}
