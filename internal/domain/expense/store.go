package expense

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrExpenseNotFound is returned by Get when no expense matches the ID.
// Absence is a normal result, not a Fault.
var ErrExpenseNotFound = errors.New("expense not found")

// Store is the data-access gateway: a fixed catalog of named parameterized
// queries. Faults propagate to the caller as *Fault values with a classified
// kind — this layer does not recover.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const expenseColumns = `
	id, user_id, category_id, amount_minor, expense_date, description,
	status, reviewer_id, reviewed_at, created_at, updated_at`

// ListExpenses returns expenses matching the filter, newest first.
// Empty result is an empty slice, never nil.
func (s *Store) ListExpenses(ctx context.Context, filter Filter) ([]*Expense, error) {
	query := `SELECT` + expenseColumns + ` FROM expense WHERE 1=1`
	args := make([]any, 0, 4)

	if filter.UserID != nil {
		query += ` AND user_id = ?`
		args = append(args, *filter.UserID)
	}
	if filter.Status != nil {
		query += ` AND status = ?`
		args = append(args, *filter.Status)
	}
	if filter.CategoryID != nil {
		query += ` AND category_id = ?`
		args = append(args, *filter.CategoryID)
	}
	if filter.Search != nil {
		query += ` AND description LIKE '%' || ? || '%'`
		args = append(args, *filter.Search)
	}
	query += ` ORDER BY created_at DESC`

	return s.queryExpenses(ctx, "list expenses", query, args...)
}

// ListPendingExpenses returns submitted expenses awaiting review.
func (s *Store) ListPendingExpenses(ctx context.Context, search *string) ([]*Expense, error) {
	query := `SELECT` + expenseColumns + ` FROM expense WHERE status = ?`
	args := []any{StatusSubmitted}

	if search != nil {
		query += ` AND description LIKE '%' || ? || '%'`
		args = append(args, *search)
	}
	query += ` ORDER BY created_at ASC`

	return s.queryExpenses(ctx, "list pending expenses", query, args...)
}

// GetExpense returns one expense or ErrExpenseNotFound.
func (s *Store) GetExpense(ctx context.Context, id string) (*Expense, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT`+expenseColumns+` FROM expense WHERE id = ?`, id)

	item, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrExpenseNotFound
	}
	if err != nil {
		return nil, classify("get expense", err)
	}
	return item, nil
}

// CreateExpense inserts a new draft expense and returns it.
func (s *Store) CreateExpense(ctx context.Context, in CreateInput) (*Expense, error) {
	if in.UserID == "" || in.CategoryID == "" || in.ExpenseDate == "" {
		return nil, &Fault{
			Kind: FaultValidation,
			Op:   "create expense",
			Err:  errors.New("userId, categoryId and expenseDate are required"),
		}
	}
	if in.AmountMinor < 0 {
		return nil, &Fault{
			Kind: FaultValidation,
			Op:   "create expense",
			Err:  errors.New("amount must not be negative"),
		}
	}

	id := uuid.Must(uuid.NewV7()).String()
	now := time.Now().UTC().Format(time.RFC3339)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO expense (
			id, user_id, category_id, amount_minor, expense_date,
			description, status, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, in.UserID, in.CategoryID, in.AmountMinor, in.ExpenseDate,
		in.Description, StatusDraft, now, now)
	if err != nil {
		return nil, classify("create expense", err)
	}

	return s.GetExpense(ctx, id)
}

// SubmitExpense moves a draft expense to submitted.
// Returns false (no error) when the expense is missing or not a draft.
func (s *Store) SubmitExpense(ctx context.Context, id string) (bool, error) {
	return s.transition(ctx, "submit expense", `
		UPDATE expense
		SET status = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`, StatusSubmitted, time.Now().UTC().Format(time.RFC3339), id, StatusDraft)
}

// ApproveExpense moves a submitted expense to approved, recording the reviewer.
func (s *Store) ApproveExpense(ctx context.Context, id, reviewerID string) (bool, error) {
	return s.review(ctx, "approve expense", id, reviewerID, StatusApproved)
}

// RejectExpense moves a submitted expense to rejected, recording the reviewer.
func (s *Store) RejectExpense(ctx context.Context, id, reviewerID string) (bool, error) {
	return s.review(ctx, "reject expense", id, reviewerID, StatusRejected)
}

// DeleteExpense removes a draft expense.
// Returns false when the expense is missing or past draft (delete not permitted).
func (s *Store) DeleteExpense(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM expense WHERE id = ? AND status = ?`, id, StatusDraft)
	if err != nil {
		return false, classify("delete expense", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, classify("delete expense", err)
	}
	return affected > 0, nil
}

// ListCategories returns the category catalog, alphabetical.
func (s *Store) ListCategories(ctx context.Context) ([]*Category, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, created_at FROM category ORDER BY name ASC`)
	if err != nil {
		return nil, classify("list categories", err)
	}
	defer rows.Close()

	out := make([]*Category, 0)
	for rows.Next() {
		var c Category
		var createdAt string
		if scanErr := rows.Scan(&c.ID, &c.Name, &createdAt); scanErr != nil {
			return nil, classify("list categories", scanErr)
		}
		c.CreatedAt = parseTime(createdAt)
		out = append(out, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list categories", err)
	}
	return out, nil
}

// ListUsers returns all users, alphabetical by display name.
func (s *Store) ListUsers(ctx context.Context) ([]*User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, email, display_name, role, created_at
		FROM app_user ORDER BY display_name ASC
	`)
	if err != nil {
		return nil, classify("list users", err)
	}
	defer rows.Close()

	out := make([]*User, 0)
	for rows.Next() {
		var u User
		var createdAt string
		if scanErr := rows.Scan(&u.ID, &u.Email, &u.DisplayName, &u.Role, &createdAt); scanErr != nil {
			return nil, classify("list users", scanErr)
		}
		u.CreatedAt = parseTime(createdAt)
		out = append(out, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list users", err)
	}
	return out, nil
}

// SummarizeByStatus aggregates expense count and total per status.
func (s *Store) SummarizeByStatus(ctx context.Context) ([]*StatusSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT status, COUNT(*), COALESCE(SUM(amount_minor), 0)
		FROM expense GROUP BY status ORDER BY status ASC
	`)
	if err != nil {
		return nil, classify("summarize by status", err)
	}
	defer rows.Close()

	out := make([]*StatusSummary, 0)
	for rows.Next() {
		var item StatusSummary
		if scanErr := rows.Scan(&item.Status, &item.Count, &item.TotalMinor); scanErr != nil {
			return nil, classify("summarize by status", scanErr)
		}
		out = append(out, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("summarize by status", err)
	}
	return out, nil
}

// SummarizeByCategory aggregates expense count and total per category.
func (s *Store) SummarizeByCategory(ctx context.Context) ([]*CategorySummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.name, COUNT(e.id), COALESCE(SUM(e.amount_minor), 0)
		FROM category c
		LEFT JOIN expense e ON e.category_id = c.id
		GROUP BY c.id, c.name
		ORDER BY c.name ASC
	`)
	if err != nil {
		return nil, classify("summarize by category", err)
	}
	defer rows.Close()

	out := make([]*CategorySummary, 0)
	for rows.Next() {
		var item CategorySummary
		if scanErr := rows.Scan(&item.CategoryID, &item.CategoryName, &item.Count, &item.TotalMinor); scanErr != nil {
			return nil, classify("summarize by category", scanErr)
		}
		out = append(out, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("summarize by category", err)
	}
	return out, nil
}

// ─── helpers ─────────────────────────────────────────────────────────────────

func (s *Store) review(ctx context.Context, op, id, reviewerID, newStatus string) (bool, error) {
	if reviewerID == "" {
		return false, &Fault{
			Kind: FaultValidation,
			Op:   op,
			Err:  errors.New("reviewerId is required"),
		}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	return s.transition(ctx, op, `
		UPDATE expense
		SET status = ?, reviewer_id = ?, reviewed_at = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`, newStatus, reviewerID, now, now, id, StatusSubmitted)
}

func (s *Store) transition(ctx context.Context, op, query string, args ...any) (bool, error) {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, classify(op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, classify(op, err)
	}
	return affected > 0, nil
}

func (s *Store) queryExpenses(ctx context.Context, op, query string, args ...any) ([]*Expense, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(op, err)
	}
	defer rows.Close()

	out := make([]*Expense, 0)
	for rows.Next() {
		item, scanErr := scanExpense(rows)
		if scanErr != nil {
			return nil, classify(op, scanErr)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(op, err)
	}
	return out, nil
}

type expenseScanner interface {
	Scan(dest ...any) error
}

func scanExpense(scan expenseScanner) (*Expense, error) {
	var (
		item        Expense
		description sql.NullString
		reviewerID  sql.NullString
		reviewedAt  sql.NullString
		createdAt   string
		updatedAt   string
	)

	if err := scan.Scan(
		&item.ID,
		&item.UserID,
		&item.CategoryID,
		&item.AmountMinor,
		&item.ExpenseDate,
		&description,
		&item.Status,
		&reviewerID,
		&reviewedAt,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}

	if description.Valid {
		v := description.String
		item.Description = &v
	}
	if reviewerID.Valid {
		v := reviewerID.String
		item.ReviewerID = &v
	}
	if reviewedAt.Valid {
		t := parseTime(reviewedAt.String)
		item.ReviewedAt = &t
	}
	item.CreatedAt = parseTime(createdAt)
	item.UpdatedAt = parseTime(updatedAt)

	return &item, nil
}

// parseTime reads a stored timestamp. The store writes RFC 3339 strings;
// seed rows written with datetime('now') use SQLite's space-separated form.
func parseTime(s string) time.Time {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	t, _ := time.Parse("2006-01-02 15:04:05", s)
	return t
}
