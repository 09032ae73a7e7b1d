package handlers

import (
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"

	domainauth "github.com/expensahq/expensa/internal/domain/auth"
)

func newAuthRouter(t *testing.T) *chi.Mux {
	t.Helper()
	h := NewAuthHandler(domainauth.NewService(openHandlerDB(t)))
	r := chi.NewRouter()
	r.Post("/auth/register", h.Register)
	r.Post("/auth/login", h.Login)
	return r
}

func TestRegisterAndLogin(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	router := newAuthRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/auth/register",
		`{"email":"pat@example.com","password":"hunter2-long","displayName":"Pat Doe"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: status = %d: %s", rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	if !env.Success {
		t.Fatalf("envelope = %+v", env)
	}
	body, _ := env.Data.(map[string]any)
	if token, _ := body["token"].(string); token == "" {
		t.Error("register must return a token")
	}

	rec = doJSON(t, router, http.MethodPost, "/auth/login",
		`{"email":"pat@example.com","password":"hunter2-long"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: status = %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodPost, "/auth/login",
		`{"email":"pat@example.com","password":"wrong"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad login: status = %d, want 401", rec.Code)
	}
}

func TestRegister_Validation(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	router := newAuthRouter(t)
	cases := []string{
		`not json`,
		`{"password":"x"}`,
		`{"email":"a@example.com"}`,
	}
	for _, body := range cases {
		rec := doJSON(t, router, http.MethodPost, "/auth/register", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want 400", body, rec.Code)
		}
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	router := newAuthRouter(t)
	body := `{"email":"dup@example.com","password":"first-pass"}`
	if rec := doJSON(t, router, http.MethodPost, "/auth/register", body); rec.Code != http.StatusCreated {
		t.Fatalf("first register: status = %d", rec.Code)
	}
	if rec := doJSON(t, router, http.MethodPost, "/auth/register", body); rec.Code != http.StatusConflict {
		t.Fatalf("second register: status = %d, want 409", rec.Code)
	}
}
