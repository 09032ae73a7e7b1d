package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/expensahq/expensa/internal/api/ctxkeys"
	pkgauth "github.com/expensahq/expensa/pkg/auth"
)

func TestAuth_ValidToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := pkgauth.GenerateToken("user-1", "manager")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	var gotUser, gotRole string
	handler := Auth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = ctxkeys.Value(r.Context(), ctxkeys.UserID)
		gotRole = ctxkeys.Value(r.Context(), ctxkeys.Role)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/expenses", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if gotUser != "user-1" || gotRole != "manager" {
		t.Errorf("context = (%q, %q)", gotUser, gotRole)
	}
}

func TestAuth_Rejections(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	handler := Auth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("next handler must not run")
	}))

	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic abc123"},
		{"garbage token", "Bearer not-a-jwt"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/expenses", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: status = %d, want 401", tc.name, rec.Code)
		}
	}
}
