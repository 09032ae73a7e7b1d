// HTTP handlers for the expense endpoints. Each request gets its own error
// state, so degradation info never bleeds between concurrent requests.
package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/expensahq/expensa/internal/api/ctxkeys"
	"github.com/expensahq/expensa/internal/domain/expense"
	"github.com/expensahq/expensa/pkg/money"
)

// ExpenseHandler handles expense CRUD and the review lifecycle.
type ExpenseHandler struct {
	store  *expense.Store
	logger *log.Logger
}

func NewExpenseHandler(store *expense.Store, logger *log.Logger) *ExpenseHandler {
	return &ExpenseHandler{store: store, logger: logger}
}

// facade builds a per-request facade with a fresh error state.
func (h *ExpenseHandler) facade() *expense.Facade {
	return expense.NewFacade(h.store, expense.NewErrorState(), h.logger)
}

// CreateExpenseRequest is the body for POST /api/v1/expenses. Amount is a
// decimal in major units; it is converted to minor units with truncation past
// two decimal places. UserID defaults to the authenticated user.
type CreateExpenseRequest struct {
	UserID      string      `json:"userId,omitempty"`
	CategoryID  string      `json:"categoryId"`
	Amount      json.Number `json:"amount"`
	Date        string      `json:"date"`
	Description *string     `json:"description,omitempty"`
}

// ListExpenses handles GET /api/v1/expenses with optional userId, status,
// categoryId, and search query filters.
func (h *ExpenseHandler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	filter := expense.Filter{}
	q := r.URL.Query()
	if v := q.Get("userId"); v != "" {
		filter.UserID = &v
	}
	if v := q.Get("status"); v != "" {
		if !expense.ValidStatus(v) {
			writeError(w, http.StatusBadRequest, "status must be one of draft, submitted, approved, rejected")
			return
		}
		filter.Status = &v
	}
	if v := q.Get("categoryId"); v != "" {
		filter.CategoryID = &v
	}
	if v := q.Get("search"); v != "" {
		filter.Search = &v
	}

	facade := h.facade()
	items := facade.ListExpenses(r.Context(), filter)
	writeFacadeData(w, http.StatusOK, items, facade.State())
}

// ListPendingExpenses handles GET /api/v1/expenses/pending.
func (h *ExpenseHandler) ListPendingExpenses(w http.ResponseWriter, r *http.Request) {
	var search *string
	if v := r.URL.Query().Get("search"); v != "" {
		search = &v
	}

	facade := h.facade()
	items := facade.ListPendingExpenses(r.Context(), search)
	writeFacadeData(w, http.StatusOK, items, facade.State())
}

// GetExpense handles GET /api/v1/expenses/{id}.
func (h *ExpenseHandler) GetExpense(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	facade := h.facade()
	item := facade.GetExpense(r.Context(), id)
	if item == nil {
		writeError(w, http.StatusNotFound, "expense not found")
		return
	}
	writeFacadeData(w, http.StatusOK, item, facade.State())
}

// CreateExpense handles POST /api/v1/expenses.
//
// Response codes:
//   - 201 Created: expense created (possibly synthesized under degradation)
//   - 400 Bad Request: invalid JSON, missing fields, or a bad amount
func (h *ExpenseHandler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	var req CreateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	userID := req.UserID
	if userID == "" {
		userID = ctxkeys.Value(r.Context(), ctxkeys.UserID)
	}
	switch {
	case userID == "":
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	case req.CategoryID == "":
		writeError(w, http.StatusBadRequest, "categoryId is required")
		return
	case req.Amount == "":
		writeError(w, http.StatusBadRequest, "amount is required")
		return
	case req.Date == "":
		writeError(w, http.StatusBadRequest, "date is required")
		return
	}

	amountMinor, err := money.ParseMinorUnits(req.Amount.String())
	if err != nil {
		writeError(w, http.StatusBadRequest, "amount is not a valid monetary value")
		return
	}
	if amountMinor < 0 {
		writeError(w, http.StatusBadRequest, "amount must not be negative")
		return
	}

	facade := h.facade()
	item := facade.CreateExpense(r.Context(), expense.CreateInput{
		UserID:      userID,
		CategoryID:  req.CategoryID,
		AmountMinor: amountMinor,
		ExpenseDate: req.Date,
		Description: req.Description,
	})
	writeFacadeData(w, http.StatusCreated, item, facade.State())
}

// SubmitExpense handles POST /api/v1/expenses/{id}/submit.
func (h *ExpenseHandler) SubmitExpense(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	facade := h.facade()
	ok := facade.SubmitExpense(r.Context(), id)
	if !ok && !facade.State().Degraded() {
		writeError(w, http.StatusBadRequest, "expense is not in a submittable state")
		return
	}
	writeFacadeData(w, http.StatusOK, map[string]any{"expenseId": id, "submitted": true}, facade.State())
}

// ApproveExpense handles POST /api/v1/expenses/{id}/approve. Manager only;
// the reviewer is the authenticated user.
func (h *ExpenseHandler) ApproveExpense(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, true)
}

// RejectExpense handles POST /api/v1/expenses/{id}/reject. Manager only.
func (h *ExpenseHandler) RejectExpense(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, false)
}

func (h *ExpenseHandler) review(w http.ResponseWriter, r *http.Request, approve bool) {
	if ctxkeys.Value(r.Context(), ctxkeys.Role) != expense.RoleManager {
		writeError(w, http.StatusForbidden, "manager role required")
		return
	}
	reviewerID := ctxkeys.Value(r.Context(), ctxkeys.UserID)
	id := chi.URLParam(r, "id")

	facade := h.facade()
	var ok bool
	if approve {
		ok = facade.ApproveExpense(r.Context(), id, reviewerID)
	} else {
		ok = facade.RejectExpense(r.Context(), id, reviewerID)
	}
	if !ok && !facade.State().Degraded() {
		writeError(w, http.StatusBadRequest, "expense is not in a reviewable state")
		return
	}

	key := "approved"
	if !approve {
		key = "rejected"
	}
	writeFacadeData(w, http.StatusOK, map[string]any{"expenseId": id, key: true}, facade.State())
}

// DeleteExpense handles DELETE /api/v1/expenses/{id}. Only drafts can be
// deleted; a missing expense and a non-draft one both answer 404.
func (h *ExpenseHandler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	facade := h.facade()
	ok := facade.DeleteExpense(r.Context(), id)
	if !ok && !facade.State().Degraded() {
		writeError(w, http.StatusNotFound, "expense not found or not a draft")
		return
	}
	writeFacadeData(w, http.StatusOK, map[string]any{"expenseId": id, "deleted": true}, facade.State())
}
