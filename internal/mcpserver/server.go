// Package mcpserver exposes the expense tool catalog over the Model Context
// Protocol, so external agent hosts get the same function surface the chat
// endpoint uses internally. Served over stdio by the `expensa mcp` command.
package mcpserver

import (
	"context"
	"fmt"
	"log"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/expensahq/expensa/internal/domain/expense"
	"github.com/expensahq/expensa/internal/version"
	"github.com/expensahq/expensa/pkg/money"
)

// Handler bridges MCP tool calls to the resilient facade. Every call gets a
// fresh error state; degradation is reported in the result payload instead of
// failing the call.
type Handler struct {
	store  *expense.Store
	logger *log.Logger
}

func NewHandler(store *expense.Store, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{store: store, logger: logger}
}

func (h *Handler) facade() *expense.Facade {
	return expense.NewFacade(h.store, expense.NewErrorState(), h.logger)
}

// degradation is embedded in every output so hosts can tell fallback data
// from live data.
type degradation struct {
	Degraded bool   `json:"degraded,omitempty"`
	Notice   string `json:"notice,omitempty"`
}

func describeState(state *expense.ErrorState) degradation {
	if !state.Degraded() {
		return degradation{}
	}
	d := degradation{Degraded: true}
	if record := state.Last(); record != nil {
		d.Notice = record.Message
	}
	return d
}

// ─── tool inputs and outputs ─────────────────────────────────────────────────

type listExpensesIn struct {
	UserID     string `json:"userId,omitempty"`
	Status     string `json:"status,omitempty"`
	CategoryID string `json:"categoryId,omitempty"`
	Search     string `json:"search,omitempty"`
}

type expenseListOut struct {
	Expenses []*expense.Expense `json:"expenses"`
	degradation
}

type expenseIDIn struct {
	ExpenseID string `json:"expenseId"`
}

type expenseOut struct {
	Expense *expense.Expense `json:"expense"`
	degradation
}

type createExpenseIn struct {
	UserID      string  `json:"userId"`
	CategoryID  string  `json:"categoryId"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"`
	Description string  `json:"description,omitempty"`
}

type reviewIn struct {
	ExpenseID  string `json:"expenseId"`
	ReviewerID string `json:"reviewerId"`
}

type transitionOut struct {
	ExpenseID string `json:"expenseId"`
	Applied   bool   `json:"applied"`
	degradation
}

type emptyIn struct{}

type categoriesOut struct {
	Categories []*expense.Category `json:"categories"`
	degradation
}

type usersOut struct {
	Users []*expense.User `json:"users"`
	degradation
}

type statusSummaryOut struct {
	Summary []*expense.StatusSummary `json:"summary"`
	degradation
}

type categorySummaryOut struct {
	Summary []*expense.CategorySummary `json:"summary"`
	degradation
}

// ─── server assembly ─────────────────────────────────────────────────────────

// NewServer builds the MCP server with all eleven tools registered.
func NewServer(h *Handler) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "expensa", Version: version.Version}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_expenses",
		Description: "List expenses, optionally filtered by user, status, category, or free-text search.",
	}, h.listExpenses)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_pending_expenses",
		Description: "List submitted expenses awaiting manager review.",
	}, h.listPendingExpenses)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_expense",
		Description: "Fetch a single expense by its ID.",
	}, h.getExpense)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_expense",
		Description: "Create a new draft expense. Amount is in major units (e.g. 25.50).",
	}, h.createExpense)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "submit_expense",
		Description: "Submit a draft expense for manager review.",
	}, h.submitExpense)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "approve_expense",
		Description: "Approve a submitted expense on behalf of the reviewing manager.",
	}, h.approveExpense)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "reject_expense",
		Description: "Reject a submitted expense on behalf of the reviewing manager.",
	}, h.rejectExpense)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_categories",
		Description: "List the spend category catalog.",
	}, h.listCategories)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_users",
		Description: "List application users with their roles.",
	}, h.listUsers)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "summarize_by_status",
		Description: "Aggregate expense count and total amount per status.",
	}, h.summarizeByStatus)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "summarize_by_category",
		Description: "Aggregate expense count and total amount per category.",
	}, h.summarizeByCategory)

	return server
}

// Run serves MCP over stdio until the context is cancelled or the host
// disconnects.
func Run(ctx context.Context, h *Handler) error {
	return NewServer(h).Run(ctx, &mcp.StdioTransport{})
}

// ─── tool handlers ───────────────────────────────────────────────────────────

func (h *Handler) listExpenses(ctx context.Context, _ *mcp.CallToolRequest, in listExpensesIn) (*mcp.CallToolResult, expenseListOut, error) {
	if in.Status != "" && !expense.ValidStatus(in.Status) {
		return nil, expenseListOut{}, fmt.Errorf("status must be one of draft, submitted, approved, rejected")
	}
	filter := expense.Filter{}
	if in.UserID != "" {
		filter.UserID = &in.UserID
	}
	if in.Status != "" {
		filter.Status = &in.Status
	}
	if in.CategoryID != "" {
		filter.CategoryID = &in.CategoryID
	}
	if in.Search != "" {
		filter.Search = &in.Search
	}

	facade := h.facade()
	items := facade.ListExpenses(ctx, filter)
	return nil, expenseListOut{Expenses: items, degradation: describeState(facade.State())}, nil
}

func (h *Handler) listPendingExpenses(ctx context.Context, _ *mcp.CallToolRequest, in listExpensesIn) (*mcp.CallToolResult, expenseListOut, error) {
	var search *string
	if in.Search != "" {
		search = &in.Search
	}

	facade := h.facade()
	items := facade.ListPendingExpenses(ctx, search)
	return nil, expenseListOut{Expenses: items, degradation: describeState(facade.State())}, nil
}

func (h *Handler) getExpense(ctx context.Context, _ *mcp.CallToolRequest, in expenseIDIn) (*mcp.CallToolResult, expenseOut, error) {
	if in.ExpenseID == "" {
		return nil, expenseOut{}, fmt.Errorf("expenseId is required")
	}

	facade := h.facade()
	item := facade.GetExpense(ctx, in.ExpenseID)
	if item == nil {
		return nil, expenseOut{}, fmt.Errorf("expense %s not found", in.ExpenseID)
	}
	return nil, expenseOut{Expense: item, degradation: describeState(facade.State())}, nil
}

func (h *Handler) createExpense(ctx context.Context, _ *mcp.CallToolRequest, in createExpenseIn) (*mcp.CallToolResult, expenseOut, error) {
	switch {
	case in.UserID == "":
		return nil, expenseOut{}, fmt.Errorf("userId is required")
	case in.CategoryID == "":
		return nil, expenseOut{}, fmt.Errorf("categoryId is required")
	case in.Date == "":
		return nil, expenseOut{}, fmt.Errorf("date is required")
	}
	amountMinor, err := money.FromFloat(in.Amount)
	if err != nil || amountMinor < 0 {
		return nil, expenseOut{}, fmt.Errorf("amount must be a non-negative monetary value")
	}

	var description *string
	if in.Description != "" {
		description = &in.Description
	}

	facade := h.facade()
	item := facade.CreateExpense(ctx, expense.CreateInput{
		UserID:      in.UserID,
		CategoryID:  in.CategoryID,
		AmountMinor: amountMinor,
		ExpenseDate: in.Date,
		Description: description,
	})
	return nil, expenseOut{Expense: item, degradation: describeState(facade.State())}, nil
}

func (h *Handler) submitExpense(ctx context.Context, _ *mcp.CallToolRequest, in expenseIDIn) (*mcp.CallToolResult, transitionOut, error) {
	if in.ExpenseID == "" {
		return nil, transitionOut{}, fmt.Errorf("expenseId is required")
	}

	facade := h.facade()
	ok := facade.SubmitExpense(ctx, in.ExpenseID)
	return nil, transitionOut{ExpenseID: in.ExpenseID, Applied: ok, degradation: describeState(facade.State())}, nil
}

func (h *Handler) approveExpense(ctx context.Context, req *mcp.CallToolRequest, in reviewIn) (*mcp.CallToolResult, transitionOut, error) {
	return h.review(ctx, in, true)
}

func (h *Handler) rejectExpense(ctx context.Context, req *mcp.CallToolRequest, in reviewIn) (*mcp.CallToolResult, transitionOut, error) {
	return h.review(ctx, in, false)
}

func (h *Handler) review(ctx context.Context, in reviewIn, approve bool) (*mcp.CallToolResult, transitionOut, error) {
	if in.ExpenseID == "" {
		return nil, transitionOut{}, fmt.Errorf("expenseId is required")
	}
	if in.ReviewerID == "" {
		return nil, transitionOut{}, fmt.Errorf("reviewerId is required")
	}

	facade := h.facade()
	var ok bool
	if approve {
		ok = facade.ApproveExpense(ctx, in.ExpenseID, in.ReviewerID)
	} else {
		ok = facade.RejectExpense(ctx, in.ExpenseID, in.ReviewerID)
	}
	return nil, transitionOut{ExpenseID: in.ExpenseID, Applied: ok, degradation: describeState(facade.State())}, nil
}

func (h *Handler) listCategories(ctx context.Context, _ *mcp.CallToolRequest, _ emptyIn) (*mcp.CallToolResult, categoriesOut, error) {
	facade := h.facade()
	items := facade.ListCategories(ctx)
	return nil, categoriesOut{Categories: items, degradation: describeState(facade.State())}, nil
}

func (h *Handler) listUsers(ctx context.Context, _ *mcp.CallToolRequest, _ emptyIn) (*mcp.CallToolResult, usersOut, error) {
	facade := h.facade()
	items := facade.ListUsers(ctx)
	return nil, usersOut{Users: items, degradation: describeState(facade.State())}, nil
}

func (h *Handler) summarizeByStatus(ctx context.Context, _ *mcp.CallToolRequest, _ emptyIn) (*mcp.CallToolResult, statusSummaryOut, error) {
	facade := h.facade()
	items := facade.SummarizeByStatus(ctx)
	return nil, statusSummaryOut{Summary: items, degradation: describeState(facade.State())}, nil
}

func (h *Handler) summarizeByCategory(ctx context.Context, _ *mcp.CallToolRequest, _ emptyIn) (*mcp.CallToolResult, categorySummaryOut, error) {
	facade := h.facade()
	items := facade.SummarizeByCategory(ctx)
	return nil, categorySummaryOut{Summary: items, degradation: describeState(facade.State())}, nil
}
