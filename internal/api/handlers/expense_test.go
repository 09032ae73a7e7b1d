package handlers

import (
	"database/sql"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/expensahq/expensa/internal/api/ctxkeys"
	"github.com/expensahq/expensa/internal/domain/expense"
	"github.com/expensahq/expensa/internal/infra/sqlite"
)

func openHandlerDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sqlite.NewDB(":memory:")
	if err != nil {
		t.Fatalf("sqlite.NewDB failed: %v", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if err := sqlite.MigrateUp(db); err != nil {
		t.Fatalf("sqlite.MigrateUp failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// withIdentity injects the context values the auth middleware would set.
func withIdentity(userID, role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := ctxkeys.WithValue(r.Context(), ctxkeys.UserID, userID)
			ctx = ctxkeys.WithValue(ctx, ctxkeys.Role, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func newExpenseRouter(t *testing.T, db *sql.DB, userID, role string) *chi.Mux {
	t.Helper()
	h := NewExpenseHandler(expense.NewStore(db), log.New(io.Discard, "", 0))
	r := chi.NewRouter()
	r.Use(withIdentity(userID, role))
	r.Route("/expenses", func(r chi.Router) {
		r.Post("/", h.CreateExpense)
		r.Get("/", h.ListExpenses)
		r.Get("/pending", h.ListPendingExpenses)
		r.Get("/{id}", h.GetExpense)
		r.Delete("/{id}", h.DeleteExpense)
		r.Post("/{id}/submit", h.SubmitExpense)
		r.Post("/{id}/approve", h.ApproveExpense)
		r.Post("/{id}/reject", h.RejectExpense)
	})
	return r
}

func doJSON(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("response is not a JSON envelope: %v: %s", err, rec.Body.String())
	}
	return env
}

func TestCreateExpense_TruncatesAmount(t *testing.T) {
	t.Parallel()

	router := newExpenseRouter(t, openHandlerDB(t), "user-demo-alice", "employee")
	rec := doJSON(t, router, http.MethodPost, "/expenses",
		`{"categoryId":"cat-meals","amount":25.555,"date":"2025-03-10"}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	if !env.Success || env.Degraded {
		t.Errorf("envelope = %+v", env)
	}

	data, _ := json.Marshal(env.Data)
	var created expense.Expense
	if err := json.Unmarshal(data, &created); err != nil {
		t.Fatalf("data is not an expense: %v", err)
	}
	if created.AmountMinor != 2555 {
		t.Errorf("AmountMinor = %d, want 2555 (truncated)", created.AmountMinor)
	}
	if created.UserID != "user-demo-alice" {
		t.Errorf("UserID = %q, want the authenticated user", created.UserID)
	}
}

func TestCreateExpense_Validation(t *testing.T) {
	t.Parallel()

	router := newExpenseRouter(t, openHandlerDB(t), "user-demo-alice", "employee")
	cases := []string{
		`not json`,
		`{"amount":10,"date":"2025-03-10"}`,
		`{"categoryId":"cat-meals","date":"2025-03-10"}`,
		`{"categoryId":"cat-meals","amount":10}`,
		`{"categoryId":"cat-meals","amount":"abc","date":"2025-03-10"}`,
		`{"categoryId":"cat-meals","amount":-10,"date":"2025-03-10"}`,
	}
	for _, body := range cases {
		rec := doJSON(t, router, http.MethodPost, "/expenses", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want 400", body, rec.Code)
		}
		if env := decodeEnvelope(t, rec); env.Success || env.Error == "" {
			t.Errorf("body %s: envelope = %+v", body, env)
		}
	}
}

func TestGetExpense_NotFound(t *testing.T) {
	t.Parallel()

	router := newExpenseRouter(t, openHandlerDB(t), "user-demo-alice", "employee")
	rec := doJSON(t, router, http.MethodGet, "/expenses/missing-id", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestListExpenses_BadStatus(t *testing.T) {
	t.Parallel()

	router := newExpenseRouter(t, openHandlerDB(t), "user-demo-alice", "employee")
	rec := doJSON(t, router, http.MethodGet, "/expenses?status=archived", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestExpenseLifecycleOverHTTP(t *testing.T) {
	t.Parallel()

	db := openHandlerDB(t)
	employee := newExpenseRouter(t, db, "user-demo-alice", "employee")
	manager := newExpenseRouter(t, db, "user-demo-marco", "manager")

	rec := doJSON(t, employee, http.MethodPost, "/expenses",
		`{"categoryId":"cat-travel","amount":42.00,"date":"2025-03-10","description":"client visit"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status = %d: %s", rec.Code, rec.Body.String())
	}
	data, _ := json.Marshal(decodeEnvelope(t, rec).Data)
	var created expense.Expense
	if err := json.Unmarshal(data, &created); err != nil {
		t.Fatalf("decode created expense: %v", err)
	}

	if rec := doJSON(t, employee, http.MethodPost, "/expenses/"+created.ID+"/submit", ""); rec.Code != http.StatusOK {
		t.Fatalf("submit: status = %d: %s", rec.Code, rec.Body.String())
	}

	// An employee must not approve.
	if rec := doJSON(t, employee, http.MethodPost, "/expenses/"+created.ID+"/approve", ""); rec.Code != http.StatusForbidden {
		t.Fatalf("employee approve: status = %d, want 403", rec.Code)
	}

	if rec := doJSON(t, manager, http.MethodPost, "/expenses/"+created.ID+"/approve", ""); rec.Code != http.StatusOK {
		t.Fatalf("manager approve: status = %d: %s", rec.Code, rec.Body.String())
	}

	// Approving again is no longer a valid transition.
	if rec := doJSON(t, manager, http.MethodPost, "/expenses/"+created.ID+"/approve", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("double approve: status = %d, want 400", rec.Code)
	}

	rec = doJSON(t, employee, http.MethodGet, "/expenses/"+created.ID, "")
	data, _ = json.Marshal(decodeEnvelope(t, rec).Data)
	var got expense.Expense
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("decode expense: %v", err)
	}
	if got.Status != expense.StatusApproved {
		t.Errorf("status = %q, want approved", got.Status)
	}
	if got.ReviewerID == nil || *got.ReviewerID != "user-demo-marco" {
		t.Errorf("ReviewerID = %v", got.ReviewerID)
	}
}

func TestListExpenses_DegradedEnvelope(t *testing.T) {
	t.Parallel()

	db := openHandlerDB(t)
	router := newExpenseRouter(t, db, "user-demo-alice", "employee")
	_ = db.Close()

	rec := doJSON(t, router, http.MethodGet, "/expenses", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, faults must not become HTTP errors", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if !env.Success || !env.Degraded {
		t.Errorf("envelope = %+v, want success with degraded", env)
	}
	if env.Notice == "" {
		t.Error("degraded response needs a notice")
	}
	if env.Data == nil {
		t.Error("degraded response must still carry fallback data")
	}
}

func TestDeleteExpense_DraftOnly(t *testing.T) {
	t.Parallel()

	db := openHandlerDB(t)
	router := newExpenseRouter(t, db, "user-demo-alice", "employee")

	rec := doJSON(t, router, http.MethodPost, "/expenses",
		`{"categoryId":"cat-meals","amount":5,"date":"2025-03-10"}`)
	data, _ := json.Marshal(decodeEnvelope(t, rec).Data)
	var created expense.Expense
	if err := json.Unmarshal(data, &created); err != nil {
		t.Fatalf("decode created expense: %v", err)
	}

	if rec := doJSON(t, router, http.MethodDelete, "/expenses/"+created.ID, ""); rec.Code != http.StatusOK {
		t.Fatalf("delete draft: status = %d", rec.Code)
	}
	// Gone now; missing and non-draft both answer 404.
	if rec := doJSON(t, router, http.MethodDelete, "/expenses/"+created.ID, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("delete missing: status = %d, want 404", rec.Code)
	}

	submitted := doJSON(t, router, http.MethodPost, "/expenses",
		`{"categoryId":"cat-meals","amount":7,"date":"2025-03-11"}`)
	data, _ = json.Marshal(decodeEnvelope(t, submitted).Data)
	var second expense.Expense
	if err := json.Unmarshal(data, &second); err != nil {
		t.Fatalf("decode created expense: %v", err)
	}
	if rec := doJSON(t, router, http.MethodPost, "/expenses/"+second.ID+"/submit", ""); rec.Code != http.StatusOK {
		t.Fatalf("submit: status = %d", rec.Code)
	}
	if rec := doJSON(t, router, http.MethodDelete, "/expenses/"+second.ID, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("delete submitted: status = %d, want 404", rec.Code)
	}
}
