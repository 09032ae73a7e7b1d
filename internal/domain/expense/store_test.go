package expense

import (
	"context"
	"database/sql"
	"testing"

	"github.com/expensahq/expensa/internal/infra/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
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

func createTestExpense(t *testing.T, store *Store, userID, categoryID string, amountMinor int64) *Expense {
	t.Helper()
	desc := "test expense"
	item, err := store.CreateExpense(context.Background(), CreateInput{
		UserID:      userID,
		CategoryID:  categoryID,
		AmountMinor: amountMinor,
		ExpenseDate: "2025-02-01",
		Description: &desc,
	})
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	return item
}

func TestStore_CreateAndGetExpense(t *testing.T) {
	t.Parallel()

	store := NewStore(openTestDB(t))
	created := createTestExpense(t, store, "user-demo-alice", "cat-travel", 2550)

	if created.Status != StatusDraft {
		t.Errorf("new expense status = %q, want draft", created.Status)
	}
	if created.AmountMinor != 2550 {
		t.Errorf("AmountMinor = %d, want 2550", created.AmountMinor)
	}

	got, err := store.GetExpense(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetExpense failed: %v", err)
	}
	if got.ID != created.ID || got.UserID != "user-demo-alice" {
		t.Errorf("unexpected expense: %+v", got)
	}
	if got.Description == nil || *got.Description != "test expense" {
		t.Errorf("Description = %v, want %q", got.Description, "test expense")
	}
}

func TestStore_GetExpense_NotFound(t *testing.T) {
	t.Parallel()

	store := NewStore(openTestDB(t))
	_, err := store.GetExpense(context.Background(), "nope")
	if err != ErrExpenseNotFound {
		t.Fatalf("expected ErrExpenseNotFound, got %v", err)
	}
}

func TestStore_CreateExpense_Validation(t *testing.T) {
	t.Parallel()

	store := NewStore(openTestDB(t))

	_, err := store.CreateExpense(context.Background(), CreateInput{
		CategoryID:  "cat-travel",
		AmountMinor: 100,
		ExpenseDate: "2025-02-01",
	})
	fault, ok := AsFault(err)
	if !ok || fault.Kind != FaultValidation {
		t.Fatalf("expected validation fault for missing userId, got %v", err)
	}

	_, err = store.CreateExpense(context.Background(), CreateInput{
		UserID:      "user-demo-alice",
		CategoryID:  "cat-travel",
		AmountMinor: -5,
		ExpenseDate: "2025-02-01",
	})
	fault, ok = AsFault(err)
	if !ok || fault.Kind != FaultValidation {
		t.Fatalf("expected validation fault for negative amount, got %v", err)
	}
}

func TestStore_ListExpenses_Filters(t *testing.T) {
	t.Parallel()

	store := NewStore(openTestDB(t))
	a := createTestExpense(t, store, "user-demo-alice", "cat-travel", 1000)
	createTestExpense(t, store, "user-demo-marco", "cat-meals", 2000)

	ctx := context.Background()

	all, err := store.ListExpenses(ctx, Filter{})
	if err != nil {
		t.Fatalf("ListExpenses failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 expenses, got %d", len(all))
	}

	alice := "user-demo-alice"
	mine, err := store.ListExpenses(ctx, Filter{UserID: &alice})
	if err != nil {
		t.Fatalf("ListExpenses by user failed: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != a.ID {
		t.Errorf("user filter returned %d items", len(mine))
	}

	approved := StatusApproved
	none, err := store.ListExpenses(ctx, Filter{Status: &approved})
	if err != nil {
		t.Fatalf("ListExpenses by status failed: %v", err)
	}
	if none == nil {
		t.Error("empty result must be an empty slice, not nil")
	}
	if len(none) != 0 {
		t.Errorf("expected no approved expenses, got %d", len(none))
	}

	search := "test"
	found, err := store.ListExpenses(ctx, Filter{Search: &search})
	if err != nil {
		t.Fatalf("ListExpenses by search failed: %v", err)
	}
	if len(found) != 2 {
		t.Errorf("search filter returned %d items, want 2", len(found))
	}
}

func TestStore_SubmitApproveLifecycle(t *testing.T) {
	t.Parallel()

	store := NewStore(openTestDB(t))
	item := createTestExpense(t, store, "user-demo-alice", "cat-travel", 1000)
	ctx := context.Background()

	ok, err := store.SubmitExpense(ctx, item.ID)
	if err != nil || !ok {
		t.Fatalf("SubmitExpense = (%v, %v), want (true, nil)", ok, err)
	}

	// double submit is a no-op
	ok, err = store.SubmitExpense(ctx, item.ID)
	if err != nil {
		t.Fatalf("second SubmitExpense errored: %v", err)
	}
	if ok {
		t.Error("submitting a non-draft expense must report false")
	}

	pending, err := store.ListPendingExpenses(ctx, nil)
	if err != nil {
		t.Fatalf("ListPendingExpenses failed: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != item.ID {
		t.Fatalf("pending list = %d items", len(pending))
	}

	ok, err = store.ApproveExpense(ctx, item.ID, "user-demo-marco")
	if err != nil || !ok {
		t.Fatalf("ApproveExpense = (%v, %v), want (true, nil)", ok, err)
	}

	got, err := store.GetExpense(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetExpense failed: %v", err)
	}
	if got.Status != StatusApproved {
		t.Errorf("status = %q, want approved", got.Status)
	}
	if got.ReviewerID == nil || *got.ReviewerID != "user-demo-marco" {
		t.Errorf("ReviewerID = %v, want user-demo-marco", got.ReviewerID)
	}
	if got.ReviewedAt == nil {
		t.Error("ReviewedAt should be set after approval")
	}

	// approving again must fail the transition guard
	ok, err = store.ApproveExpense(ctx, item.ID, "user-demo-marco")
	if err != nil {
		t.Fatalf("second ApproveExpense errored: %v", err)
	}
	if ok {
		t.Error("approving a non-submitted expense must report false")
	}
}

func TestStore_RejectExpense(t *testing.T) {
	t.Parallel()

	store := NewStore(openTestDB(t))
	item := createTestExpense(t, store, "user-demo-alice", "cat-meals", 500)
	ctx := context.Background()

	if _, err := store.SubmitExpense(ctx, item.ID); err != nil {
		t.Fatalf("SubmitExpense failed: %v", err)
	}
	ok, err := store.RejectExpense(ctx, item.ID, "user-demo-marco")
	if err != nil || !ok {
		t.Fatalf("RejectExpense = (%v, %v), want (true, nil)", ok, err)
	}

	got, _ := store.GetExpense(ctx, item.ID)
	if got.Status != StatusRejected {
		t.Errorf("status = %q, want rejected", got.Status)
	}
}

func TestStore_Review_RequiresReviewer(t *testing.T) {
	t.Parallel()

	store := NewStore(openTestDB(t))
	item := createTestExpense(t, store, "user-demo-alice", "cat-meals", 500)
	ctx := context.Background()
	if _, err := store.SubmitExpense(ctx, item.ID); err != nil {
		t.Fatalf("SubmitExpense failed: %v", err)
	}

	_, err := store.ApproveExpense(ctx, item.ID, "")
	fault, ok := AsFault(err)
	if !ok || fault.Kind != FaultValidation {
		t.Fatalf("expected validation fault for empty reviewer, got %v", err)
	}
}

func TestStore_DeleteExpense_DraftOnly(t *testing.T) {
	t.Parallel()

	store := NewStore(openTestDB(t))
	ctx := context.Background()

	draft := createTestExpense(t, store, "user-demo-alice", "cat-travel", 100)
	ok, err := store.DeleteExpense(ctx, draft.ID)
	if err != nil || !ok {
		t.Fatalf("DeleteExpense(draft) = (%v, %v), want (true, nil)", ok, err)
	}

	submitted := createTestExpense(t, store, "user-demo-alice", "cat-travel", 100)
	if _, err := store.SubmitExpense(ctx, submitted.ID); err != nil {
		t.Fatalf("SubmitExpense failed: %v", err)
	}
	ok, err = store.DeleteExpense(ctx, submitted.ID)
	if err != nil {
		t.Fatalf("DeleteExpense(submitted) errored: %v", err)
	}
	if ok {
		t.Error("deleting a submitted expense must report false")
	}
}

func TestStore_TimestampRoundTrip(t *testing.T) {
	t.Parallel()

	store := NewStore(openTestDB(t))
	ctx := context.Background()

	// Seeded rows carry datetime('now') timestamps, created rows RFC 3339.
	// Both forms must scan back into real times without faulting.
	categories, err := store.ListCategories(ctx)
	if err != nil {
		t.Fatalf("ListCategories failed: %v", err)
	}
	for _, c := range categories {
		if c.CreatedAt.IsZero() {
			t.Errorf("category %s has a zero CreatedAt", c.ID)
		}
	}

	users, err := store.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	for _, u := range users {
		if u.CreatedAt.IsZero() {
			t.Errorf("user %s has a zero CreatedAt", u.ID)
		}
	}

	item := createTestExpense(t, store, "user-demo-alice", "cat-travel", 1000)
	if item.CreatedAt.IsZero() || item.UpdatedAt.IsZero() {
		t.Errorf("created expense timestamps = (%v, %v)", item.CreatedAt, item.UpdatedAt)
	}

	if _, err := store.SubmitExpense(ctx, item.ID); err != nil {
		t.Fatalf("SubmitExpense failed: %v", err)
	}
	if _, err := store.ApproveExpense(ctx, item.ID, "user-demo-marco"); err != nil {
		t.Fatalf("ApproveExpense failed: %v", err)
	}
	got, err := store.GetExpense(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetExpense failed: %v", err)
	}
	if got.ReviewedAt == nil || got.ReviewedAt.IsZero() {
		t.Errorf("ReviewedAt = %v, want a parsed review time", got.ReviewedAt)
	}
}

func TestStore_ListCategoriesAndUsers(t *testing.T) {
	t.Parallel()

	store := NewStore(openTestDB(t))
	ctx := context.Background()

	categories, err := store.ListCategories(ctx)
	if err != nil {
		t.Fatalf("ListCategories failed: %v", err)
	}
	if len(categories) == 0 {
		t.Error("expected seeded categories")
	}

	users, err := store.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if len(users) < 2 {
		t.Errorf("expected seeded users, got %d", len(users))
	}
}

func TestStore_Summaries(t *testing.T) {
	t.Parallel()

	store := NewStore(openTestDB(t))
	ctx := context.Background()

	a := createTestExpense(t, store, "user-demo-alice", "cat-travel", 1000)
	createTestExpense(t, store, "user-demo-alice", "cat-travel", 500)
	if _, err := store.SubmitExpense(ctx, a.ID); err != nil {
		t.Fatalf("SubmitExpense failed: %v", err)
	}

	byStatus, err := store.SummarizeByStatus(ctx)
	if err != nil {
		t.Fatalf("SummarizeByStatus failed: %v", err)
	}
	totals := make(map[string]*StatusSummary)
	for _, s := range byStatus {
		totals[s.Status] = s
	}
	if totals[StatusDraft] == nil || totals[StatusDraft].TotalMinor != 500 {
		t.Errorf("draft summary = %+v", totals[StatusDraft])
	}
	if totals[StatusSubmitted] == nil || totals[StatusSubmitted].TotalMinor != 1000 {
		t.Errorf("submitted summary = %+v", totals[StatusSubmitted])
	}

	byCategory, err := store.SummarizeByCategory(ctx)
	if err != nil {
		t.Fatalf("SummarizeByCategory failed: %v", err)
	}
	var travel *CategorySummary
	for _, c := range byCategory {
		if c.CategoryID == "cat-travel" {
			travel = c
		}
	}
	if travel == nil || travel.Count != 2 || travel.TotalMinor != 1500 {
		t.Errorf("travel summary = %+v", travel)
	}
}
