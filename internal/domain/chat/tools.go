// Package chat drives the expense assistant: a bounded tool-calling exchange
// with a hosted completion service, with the expense facade's operations
// exposed as callable tools.
package chat

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/expensahq/expensa/internal/domain/expense"
	"github.com/expensahq/expensa/internal/infra/llm"
	"github.com/expensahq/expensa/pkg/money"
)

// Toolset binds the static tool catalog to a facade. One instance per
// orchestration run, sharing the run's error state through the facade.
type Toolset struct {
	facade *expense.Facade
}

func NewToolset(facade *expense.Facade) *Toolset {
	return &Toolset{facade: facade}
}

// Catalog returns the 11 tool descriptors sent to the completion service on
// every iteration. The schemas are static; nothing is negotiated server-side.
func (t *Toolset) Catalog() []llm.Tool {
	return []llm.Tool{
		{
			Name:        "list_expenses",
			Description: "List expenses, optionally filtered by user, status, category, or free-text search over descriptions.",
			Parameters: json.RawMessage(`{"type":"object","properties":{
				"userId":{"type":"string","description":"Filter by owning user ID."},
				"status":{"type":"string","enum":["draft","submitted","approved","rejected"]},
				"categoryId":{"type":"string","description":"Filter by category ID."},
				"search":{"type":"string","description":"Substring match on the description."}
			}}`),
		},
		{
			Name:        "list_pending_expenses",
			Description: "List submitted expenses awaiting manager review, optionally filtered by free-text search.",
			Parameters: json.RawMessage(`{"type":"object","properties":{
				"search":{"type":"string"}
			}}`),
		},
		{
			Name:        "get_expense",
			Description: "Fetch a single expense by its ID.",
			Parameters: json.RawMessage(`{"type":"object","required":["expenseId"],"properties":{
				"expenseId":{"type":"string"}
			}}`),
		},
		{
			Name:        "create_expense",
			Description: "Create a new draft expense. Amount is in major units (e.g. 25.50).",
			Parameters: json.RawMessage(`{"type":"object","required":["userId","categoryId","amount","date"],"properties":{
				"userId":{"type":"string"},
				"categoryId":{"type":"string"},
				"amount":{"type":"number","description":"Decimal major-unit amount, e.g. 25.50."},
				"date":{"type":"string","description":"Expense date, YYYY-MM-DD."},
				"description":{"type":"string"}
			}}`),
		},
		{
			Name:        "submit_expense",
			Description: "Submit a draft expense for manager review.",
			Parameters: json.RawMessage(`{"type":"object","required":["expenseId"],"properties":{
				"expenseId":{"type":"string"}
			}}`),
		},
		{
			Name:        "approve_expense",
			Description: "Approve a submitted expense. Requires the reviewing manager's user ID.",
			Parameters: json.RawMessage(`{"type":"object","required":["expenseId","reviewerId"],"properties":{
				"expenseId":{"type":"string"},
				"reviewerId":{"type":"string"}
			}}`),
		},
		{
			Name:        "reject_expense",
			Description: "Reject a submitted expense. Requires the reviewing manager's user ID.",
			Parameters: json.RawMessage(`{"type":"object","required":["expenseId","reviewerId"],"properties":{
				"expenseId":{"type":"string"},
				"reviewerId":{"type":"string"}
			}}`),
		},
		{
			Name:        "list_categories",
			Description: "List the spend category catalog.",
			Parameters:  json.RawMessage(`{"type":"object","properties":{}}`),
		},
		{
			Name:        "list_users",
			Description: "List application users with their roles.",
			Parameters:  json.RawMessage(`{"type":"object","properties":{}}`),
		},
		{
			Name:        "summarize_by_status",
			Description: "Aggregate expense count and total amount per status.",
			Parameters:  json.RawMessage(`{"type":"object","properties":{}}`),
		},
		{
			Name:        "summarize_by_category",
			Description: "Aggregate expense count and total amount per category.",
			Parameters:  json.RawMessage(`{"type":"object","properties":{}}`),
		},
	}
}

// Execute dispatches one tool invocation by name. Argument decoding is typed
// per tool; a missing required argument is a validation error the orchestrator
// reports back to the model as an {"error": ...} result turn.
func (t *Toolset) Execute(ctx context.Context, name string, args json.RawMessage) (json.RawMessage, error) {
	switch name {
	case "list_expenses":
		return t.listExpenses(ctx, args)
	case "list_pending_expenses":
		return t.listPendingExpenses(ctx, args)
	case "get_expense":
		return t.getExpense(ctx, args)
	case "create_expense":
		return t.createExpense(ctx, args)
	case "submit_expense":
		return t.submitExpense(ctx, args)
	case "approve_expense":
		return t.reviewExpense(ctx, args, true)
	case "reject_expense":
		return t.reviewExpense(ctx, args, false)
	case "list_categories":
		return marshalResult(t.facade.ListCategories(ctx))
	case "list_users":
		return marshalResult(t.facade.ListUsers(ctx))
	case "summarize_by_status":
		return marshalResult(t.facade.SummarizeByStatus(ctx))
	case "summarize_by_category":
		return marshalResult(t.facade.SummarizeByCategory(ctx))
	default:
		return nil, fmt.Errorf("unknown tool %q", name)
	}
}

// ─── per-tool argument structs and handlers ─────────────────────────────────

type listExpensesArgs struct {
	UserID     *string `json:"userId"`
	Status     *string `json:"status"`
	CategoryID *string `json:"categoryId"`
	Search     *string `json:"search"`
}

func (t *Toolset) listExpenses(ctx context.Context, args json.RawMessage) (json.RawMessage, error) {
	var in listExpensesArgs
	if err := decodeArgs(args, &in); err != nil {
		return nil, err
	}
	if in.Status != nil && !expense.ValidStatus(*in.Status) {
		return nil, fmt.Errorf("status must be one of draft, submitted, approved, rejected")
	}
	return marshalResult(t.facade.ListExpenses(ctx, expense.Filter{
		UserID:     in.UserID,
		Status:     in.Status,
		CategoryID: in.CategoryID,
		Search:     in.Search,
	}))
}

type searchArgs struct {
	Search *string `json:"search"`
}

func (t *Toolset) listPendingExpenses(ctx context.Context, args json.RawMessage) (json.RawMessage, error) {
	var in searchArgs
	if err := decodeArgs(args, &in); err != nil {
		return nil, err
	}
	return marshalResult(t.facade.ListPendingExpenses(ctx, in.Search))
}

type expenseIDArgs struct {
	ExpenseID string `json:"expenseId"`
}

func (t *Toolset) getExpense(ctx context.Context, args json.RawMessage) (json.RawMessage, error) {
	var in expenseIDArgs
	if err := decodeArgs(args, &in); err != nil {
		return nil, err
	}
	if in.ExpenseID == "" {
		return nil, fmt.Errorf("expenseId is required")
	}
	item := t.facade.GetExpense(ctx, in.ExpenseID)
	if item == nil {
		return nil, fmt.Errorf("expense %s not found", in.ExpenseID)
	}
	return marshalResult(item)
}

type createExpenseArgs struct {
	UserID      string   `json:"userId"`
	CategoryID  string   `json:"categoryId"`
	Amount      *float64 `json:"amount"`
	Date        string   `json:"date"`
	Description *string  `json:"description"`
}

func (t *Toolset) createExpense(ctx context.Context, args json.RawMessage) (json.RawMessage, error) {
	var in createExpenseArgs
	if err := decodeArgs(args, &in); err != nil {
		return nil, err
	}
	switch {
	case in.UserID == "":
		return nil, fmt.Errorf("userId is required")
	case in.CategoryID == "":
		return nil, fmt.Errorf("categoryId is required")
	case in.Amount == nil:
		return nil, fmt.Errorf("amount is required")
	case in.Date == "":
		return nil, fmt.Errorf("date is required")
	}

	// Major units → minor units at this boundary; truncation past two
	// decimal places, exact for any two-decimal input.
	amountMinor, err := money.FromFloat(*in.Amount)
	if err != nil {
		return nil, fmt.Errorf("amount is not a valid monetary value")
	}
	if amountMinor < 0 {
		return nil, fmt.Errorf("amount must not be negative")
	}

	item := t.facade.CreateExpense(ctx, expense.CreateInput{
		UserID:      in.UserID,
		CategoryID:  in.CategoryID,
		AmountMinor: amountMinor,
		ExpenseDate: in.Date,
		Description: in.Description,
	})
	return marshalResult(item)
}

func (t *Toolset) submitExpense(ctx context.Context, args json.RawMessage) (json.RawMessage, error) {
	var in expenseIDArgs
	if err := decodeArgs(args, &in); err != nil {
		return nil, err
	}
	if in.ExpenseID == "" {
		return nil, fmt.Errorf("expenseId is required")
	}
	ok := t.facade.SubmitExpense(ctx, in.ExpenseID)
	return marshalResult(map[string]any{"expenseId": in.ExpenseID, "submitted": ok})
}

type reviewArgs struct {
	ExpenseID  string `json:"expenseId"`
	ReviewerID string `json:"reviewerId"`
}

func (t *Toolset) reviewExpense(ctx context.Context, args json.RawMessage, approve bool) (json.RawMessage, error) {
	var in reviewArgs
	if err := decodeArgs(args, &in); err != nil {
		return nil, err
	}
	if in.ExpenseID == "" {
		return nil, fmt.Errorf("expenseId is required")
	}
	if in.ReviewerID == "" {
		return nil, fmt.Errorf("reviewerId is required")
	}

	if approve {
		ok := t.facade.ApproveExpense(ctx, in.ExpenseID, in.ReviewerID)
		return marshalResult(map[string]any{"expenseId": in.ExpenseID, "approved": ok})
	}
	ok := t.facade.RejectExpense(ctx, in.ExpenseID, in.ReviewerID)
	return marshalResult(map[string]any{"expenseId": in.ExpenseID, "rejected": ok})
}

// ─── helpers ─────────────────────────────────────────────────────────────────

// decodeArgs tolerates an empty argument bundle; malformed JSON is a
// validation error.
func decodeArgs(args json.RawMessage, into any) error {
	if len(args) == 0 {
		args = json.RawMessage(`{}`)
	}
	if err := json.Unmarshal(args, into); err != nil {
		return fmt.Errorf("arguments must be a JSON object")
	}
	return nil
}

func marshalResult(v any) (json.RawMessage, error) {
	out, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("serialize tool result: %w", err)
	}
	return out, nil
}
