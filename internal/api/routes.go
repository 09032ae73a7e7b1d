// Route registration and chi router setup: public routes (/health, /auth/*)
// and JWT-protected routes (/api/v1/*).
package api

import (
	"database/sql"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/expensahq/expensa/internal/api/handlers"
	apmiddleware "github.com/expensahq/expensa/internal/api/middleware"
	domainauth "github.com/expensahq/expensa/internal/domain/auth"
	"github.com/expensahq/expensa/internal/domain/expense"
	"github.com/expensahq/expensa/internal/infra/llm"
)

// NewRouter wires every route. provider may be nil, which puts the assistant
// endpoint in disabled mode. logger may be nil.
func NewRouter(db *sql.DB, provider llm.ChatProvider, logger *log.Logger) *chi.Mux {
	if logger == nil {
		logger = log.Default()
	}
	store := expense.NewStore(db)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check, unauthenticated, used by load balancers and probes.
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`)) //nolint:errcheck
	})

	authHandler := handlers.NewAuthHandler(domainauth.NewService(db))
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register) // POST /auth/register
		r.Post("/login", authHandler.Login)       // POST /auth/login
	})

	// All /api/v1/* routes require a valid Bearer JWT.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(apmiddleware.Auth)

		expenseHandler := handlers.NewExpenseHandler(store, logger)
		catalogHandler := handlers.NewCatalogHandler(store, logger)
		chatHandler := handlers.NewChatHandler(store, provider, logger)

		r.Route("/expenses", func(r chi.Router) {
			r.Post("/", expenseHandler.CreateExpense)
			r.Get("/", expenseHandler.ListExpenses)
			r.Get("/pending", expenseHandler.ListPendingExpenses)
			r.Get("/{id}", expenseHandler.GetExpense)
			r.Delete("/{id}", expenseHandler.DeleteExpense)
			r.Post("/{id}/submit", expenseHandler.SubmitExpense)
			r.Post("/{id}/approve", expenseHandler.ApproveExpense)
			r.Post("/{id}/reject", expenseHandler.RejectExpense)
		})

		r.Get("/categories", catalogHandler.ListCategories)
		r.Get("/users", catalogHandler.ListUsers)
		r.Route("/summary", func(r chi.Router) {
			r.Get("/status", catalogHandler.SummarizeByStatus)
			r.Get("/category", catalogHandler.SummarizeByCategory)
		})

		r.Post("/chat", chatHandler.Chat) // POST /api/v1/chat
	})

	return r
}
