package expense

import "time"

// Deterministic sample dataset the facade substitutes when the store faults.
// Fixed IDs and timestamps keep degraded responses stable across calls, which
// makes the demo UI (and the tests) predictable.

var fallbackTime = time.Date(2025, time.January, 15, 9, 0, 0, 0, time.UTC)

func fallbackCategories() []*Category {
	return []*Category{
		{ID: "sample-cat-travel", Name: "Travel", CreatedAt: fallbackTime},
		{ID: "sample-cat-meals", Name: "Meals", CreatedAt: fallbackTime},
		{ID: "sample-cat-office", Name: "Office Supplies", CreatedAt: fallbackTime},
	}
}

func fallbackUsers() []*User {
	return []*User{
		{ID: "sample-user-1", Email: "sample.employee@example.com", DisplayName: "Sample Employee", Role: RoleEmployee, CreatedAt: fallbackTime},
		{ID: "sample-user-2", Email: "sample.manager@example.com", DisplayName: "Sample Manager", Role: RoleManager, CreatedAt: fallbackTime},
	}
}

func fallbackExpenses() []*Expense {
	taxi := "Taxi from airport"
	lunch := "Team lunch"
	return []*Expense{
		{
			ID: "sample-exp-1", UserID: "sample-user-1", CategoryID: "sample-cat-travel",
			AmountMinor: 4250, ExpenseDate: "2025-01-10", Description: &taxi,
			Status: StatusSubmitted, CreatedAt: fallbackTime, UpdatedAt: fallbackTime,
		},
		{
			ID: "sample-exp-2", UserID: "sample-user-1", CategoryID: "sample-cat-meals",
			AmountMinor: 1899, ExpenseDate: "2025-01-12", Description: &lunch,
			Status: StatusDraft, CreatedAt: fallbackTime, UpdatedAt: fallbackTime,
		},
	}
}

func fallbackExpense(id string) *Expense {
	items := fallbackExpenses()
	for _, item := range items {
		if item.ID == id {
			return item
		}
	}
	out := *items[0]
	out.ID = id
	return &out
}

func fallbackStatusSummary() []*StatusSummary {
	return []*StatusSummary{
		{Status: StatusDraft, Count: 1, TotalMinor: 1899},
		{Status: StatusSubmitted, Count: 1, TotalMinor: 4250},
	}
}

func fallbackCategorySummary() []*CategorySummary {
	return []*CategorySummary{
		{CategoryID: "sample-cat-meals", CategoryName: "Meals", Count: 1, TotalMinor: 1899},
		{CategoryID: "sample-cat-office", CategoryName: "Office Supplies", Count: 0, TotalMinor: 0},
		{CategoryID: "sample-cat-travel", CategoryName: "Travel", Count: 1, TotalMinor: 4250},
	}
}
