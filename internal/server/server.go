// HTTP server initialization and lifecycle management.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/expensahq/expensa/internal/api"
	"github.com/expensahq/expensa/internal/infra/llm"
)

// Config holds HTTP server configuration.
type Config struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultConfig returns default HTTP server configuration. The write timeout
// leaves room for assistant requests, which may chain several completion
// calls.
func DefaultConfig() Config {
	return Config{
		Host:         "0.0.0.0",
		Port:         8080,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 180 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// Server wraps the HTTP server and database.
type Server struct {
	config Config
	db     *sql.DB
	http   *http.Server
	logger *log.Logger
}

// NewServer creates an HTTP server over the given database. provider may be
// nil (assistant disabled); logger may be nil.
func NewServer(db *sql.DB, provider llm.ChatProvider, config Config, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	router := api.NewRouter(db, provider, logger)

	return &Server{
		config: config,
		db:     db,
		logger: logger,
		http: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
			Handler:      router,
			ReadTimeout:  config.ReadTimeout,
			WriteTimeout: config.WriteTimeout,
			IdleTimeout:  config.IdleTimeout,
		},
	}
}

// Addr returns the address the server listens on.
func (s *Server) Addr() string { return s.http.Addr }

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	s.logger.Printf("listening on %s", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server and closes the database.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Print("shutting down")

	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("database close: %w", err)
	}
	return nil
}
