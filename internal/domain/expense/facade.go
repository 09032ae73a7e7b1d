package expense

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
)

// Facade presents the same operation set as the Store but never surfaces a
// gateway fault to its caller: on fault it records the classified error into
// the per-request ErrorState, logs it, and returns a deterministic fallback.
//
// Write operations therefore report success even when the store faulted; the
// real outcome is only visible through the ErrorState outcome tag, which
// callers needing write confirmation must check after each call.
type Facade struct {
	store  *Store
	state  *ErrorState
	logger *log.Logger
}

// NewFacade wraps the store with the given per-request error state.
// logger may be nil, in which case faults go to the default logger.
func NewFacade(store *Store, state *ErrorState, logger *log.Logger) *Facade {
	if logger == nil {
		logger = log.Default()
	}
	return &Facade{store: store, state: state, logger: logger}
}

// State exposes the error state so transport layers can render banners.
func (f *Facade) State() *ErrorState { return f.state }

// ListExpenses returns matching expenses, or the sample dataset on fault.
func (f *Facade) ListExpenses(ctx context.Context, filter Filter) []*Expense {
	f.state.Clear()
	items, err := f.store.ListExpenses(ctx, filter)
	if err != nil {
		f.absorb("Facade.ListExpenses", err)
		return fallbackExpenses()
	}
	return items
}

// ListPendingExpenses returns submitted expenses, or the submitted subset of
// the sample dataset on fault.
func (f *Facade) ListPendingExpenses(ctx context.Context, search *string) []*Expense {
	f.state.Clear()
	items, err := f.store.ListPendingExpenses(ctx, search)
	if err != nil {
		f.absorb("Facade.ListPendingExpenses", err)
		pending := make([]*Expense, 0, 1)
		for _, item := range fallbackExpenses() {
			if item.Status == StatusSubmitted {
				pending = append(pending, item)
			}
		}
		return pending
	}
	return items
}

// GetExpense returns the expense, nil when absent, or a sample expense on
// fault. Absence is not a fault and leaves the error state clean.
func (f *Facade) GetExpense(ctx context.Context, id string) *Expense {
	f.state.Clear()
	item, err := f.store.GetExpense(ctx, id)
	if errors.Is(err, ErrExpenseNotFound) {
		return nil
	}
	if err != nil {
		f.absorb("Facade.GetExpense", err)
		return fallbackExpense(id)
	}
	return item
}

// CreateExpense creates a draft expense. On fault it synthesizes an expense
// with a fresh ID from the input so the caller still sees a created record.
func (f *Facade) CreateExpense(ctx context.Context, in CreateInput) *Expense {
	f.state.Clear()
	item, err := f.store.CreateExpense(ctx, in)
	if err != nil {
		f.absorb("Facade.CreateExpense", err)
		now := time.Now().UTC()
		return &Expense{
			ID:          uuid.Must(uuid.NewV7()).String(),
			UserID:      in.UserID,
			CategoryID:  in.CategoryID,
			AmountMinor: in.AmountMinor,
			ExpenseDate: in.ExpenseDate,
			Description: in.Description,
			Status:      StatusDraft,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
	}
	return item
}

// SubmitExpense reports whether the draft moved to submitted.
// On fault the result is unconditionally true; check the error state.
func (f *Facade) SubmitExpense(ctx context.Context, id string) bool {
	f.state.Clear()
	ok, err := f.store.SubmitExpense(ctx, id)
	if err != nil {
		f.absorb("Facade.SubmitExpense", err)
		return true
	}
	return ok
}

// ApproveExpense reports whether the submitted expense moved to approved.
func (f *Facade) ApproveExpense(ctx context.Context, id, reviewerID string) bool {
	f.state.Clear()
	ok, err := f.store.ApproveExpense(ctx, id, reviewerID)
	if err != nil {
		f.absorb("Facade.ApproveExpense", err)
		return true
	}
	return ok
}

// RejectExpense reports whether the submitted expense moved to rejected.
func (f *Facade) RejectExpense(ctx context.Context, id, reviewerID string) bool {
	f.state.Clear()
	ok, err := f.store.RejectExpense(ctx, id, reviewerID)
	if err != nil {
		f.absorb("Facade.RejectExpense", err)
		return true
	}
	return ok
}

// DeleteExpense reports whether the draft expense was deleted.
func (f *Facade) DeleteExpense(ctx context.Context, id string) bool {
	f.state.Clear()
	ok, err := f.store.DeleteExpense(ctx, id)
	if err != nil {
		f.absorb("Facade.DeleteExpense", err)
		return true
	}
	return ok
}

// ListCategories returns the category catalog, or samples on fault.
func (f *Facade) ListCategories(ctx context.Context) []*Category {
	f.state.Clear()
	items, err := f.store.ListCategories(ctx)
	if err != nil {
		f.absorb("Facade.ListCategories", err)
		return fallbackCategories()
	}
	return items
}

// ListUsers returns all users, or samples on fault.
func (f *Facade) ListUsers(ctx context.Context) []*User {
	f.state.Clear()
	items, err := f.store.ListUsers(ctx)
	if err != nil {
		f.absorb("Facade.ListUsers", err)
		return fallbackUsers()
	}
	return items
}

// SummarizeByStatus aggregates per status, or returns sample totals on fault.
func (f *Facade) SummarizeByStatus(ctx context.Context) []*StatusSummary {
	f.state.Clear()
	items, err := f.store.SummarizeByStatus(ctx)
	if err != nil {
		f.absorb("Facade.SummarizeByStatus", err)
		return fallbackStatusSummary()
	}
	return items
}

// SummarizeByCategory aggregates per category, or returns sample totals on fault.
func (f *Facade) SummarizeByCategory(ctx context.Context) []*CategorySummary {
	f.state.Clear()
	items, err := f.store.SummarizeByCategory(ctx)
	if err != nil {
		f.absorb("Facade.SummarizeByCategory", err)
		return fallbackCategorySummary()
	}
	return items
}

// absorb records and logs a fault. The store classifies every error it
// returns; anything else that slips through is treated as a data fault.
func (f *Facade) absorb(location string, err error) {
	fault, ok := AsFault(err)
	if !ok {
		fault = &Fault{Kind: FaultData, Op: location, Err: err}
	}
	f.state.Record(location, fault)
	f.logger.Printf("%s: %s fault absorbed, serving fallback: %v", location, fault.Kind, fault.Err)
}
