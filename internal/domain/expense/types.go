// Package expense holds the expense domain: the data-access store (a fixed
// catalog of named queries), the typed fault taxonomy, and the resilient
// facade that guarantees callers always get a usable result.
package expense

import "time"

// Expense statuses. Lifecycle: draft → submitted → approved | rejected.
const (
	StatusDraft     = "draft"
	StatusSubmitted = "submitted"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
)

// User roles.
const (
	RoleEmployee = "employee"
	RoleManager  = "manager"
)

// Expense is one expense report line. AmountMinor is integer minor units.
type Expense struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	CategoryID  string     `json:"categoryId"`
	AmountMinor int64      `json:"amountMinor"`
	ExpenseDate string     `json:"expenseDate"`
	Description *string    `json:"description,omitempty"`
	Status      string     `json:"status"`
	ReviewerID  *string    `json:"reviewerId,omitempty"`
	ReviewedAt  *time.Time `json:"reviewedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Category is one spend category.
type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// User is an application user.
type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"createdAt"`
}

// StatusSummary aggregates expenses per status.
type StatusSummary struct {
	Status     string `json:"status"`
	Count      int64  `json:"count"`
	TotalMinor int64  `json:"totalMinor"`
}

// CategorySummary aggregates expenses per category.
type CategorySummary struct {
	CategoryID   string `json:"categoryId"`
	CategoryName string `json:"categoryName"`
	Count        int64  `json:"count"`
	TotalMinor   int64  `json:"totalMinor"`
}

// Filter narrows ListExpenses. Nil fields are "no constraint" — absence is
// explicit, never an empty-string sentinel.
type Filter struct {
	UserID     *string
	Status     *string
	CategoryID *string
	Search     *string
}

// CreateInput holds the fields for a new draft expense.
type CreateInput struct {
	UserID      string
	CategoryID  string
	AmountMinor int64
	ExpenseDate string
	Description *string
}

// ValidStatus reports whether s is one of the four expense statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusApproved, StatusRejected:
		return true
	default:
		return false
	}
}
