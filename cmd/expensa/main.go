// Expensa - expense reporting backend with a tool-calling assistant.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/expensahq/expensa/internal/infra/config"
	"github.com/expensahq/expensa/internal/infra/llm"
	"github.com/expensahq/expensa/internal/infra/sqlite"
	"github.com/expensahq/expensa/internal/mcpserver"
	"github.com/expensahq/expensa/internal/server"
	"github.com/expensahq/expensa/internal/version"

	"github.com/expensahq/expensa/internal/domain/expense"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, out io.Writer) int {
	fs := flag.NewFlagSet("expensa", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	showVersion := fs.Bool("version", false, "Show version information")
	showHelp := fs.Bool("help", false, "Show help")

	if err := fs.Parse(args); err != nil {
		printHelp(out)
		return 2
	}

	if *showVersion {
		fmt.Fprintln(out, version.String()) //nolint:errcheck
		return 0
	}
	if *showHelp {
		printHelp(out)
		return 0
	}

	command := "serve"
	if fs.NArg() > 0 {
		command = fs.Arg(0)
	}

	switch command {
	case "serve":
		return serve(out)
	case "migrate":
		return migrate(out)
	case "mcp":
		return serveMCP()
	default:
		fmt.Fprintf(out, "unknown command %q\n\n", command) //nolint:errcheck
		printHelp(out)
		return 2
	}
}

func serve(out io.Writer) int {
	logger := log.New(os.Stderr, "expensa ", log.LstdFlags)

	cfg, err := config.Load()
	if err != nil {
		logger.Printf("config: %v", err)
		return 1
	}

	db, err := sqlite.NewDB(cfg.DBPath)
	if err != nil {
		logger.Printf("open database: %v", err)
		return 1
	}
	if err := sqlite.MigrateUp(db); err != nil {
		logger.Printf("migrate: %v", err)
		return 1
	}

	var provider llm.ChatProvider
	if cfg.ChatEnabled() {
		provider = llm.NewAzureProvider(cfg.ChatEndpoint, cfg.ChatDeployment, cfg.ChatAPIKey, cfg.ChatClientID)
	} else {
		logger.Print("chat assistant disabled: endpoint or deployment not configured")
	}

	serverCfg := server.DefaultConfig()
	serverCfg.Host = cfg.HTTPHost
	serverCfg.Port = cfg.HTTPPort
	srv := server.NewServer(db, provider, serverCfg, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Printf("server: %v", err)
			return 1
		}
	case <-ctx.Done():
		if err := srv.Shutdown(context.Background()); err != nil {
			logger.Printf("shutdown: %v", err)
			return 1
		}
	}

	fmt.Fprintln(out, "shutdown complete") //nolint:errcheck
	return 0
}

func migrate(out io.Writer) int {
	logger := log.New(os.Stderr, "expensa ", log.LstdFlags)

	cfg, err := config.Load()
	if err != nil {
		logger.Printf("config: %v", err)
		return 1
	}

	db, err := sqlite.NewDB(cfg.DBPath)
	if err != nil {
		logger.Printf("open database: %v", err)
		return 1
	}
	defer db.Close() //nolint:errcheck

	if err := sqlite.MigrateUp(db); err != nil {
		logger.Printf("migrate: %v", err)
		return 1
	}

	ver, err := sqlite.MigrationVersion(db)
	if err != nil {
		logger.Printf("migration version: %v", err)
		return 1
	}
	fmt.Fprintf(out, "migrated to version %d\n", ver) //nolint:errcheck
	return 0
}

func serveMCP() int {
	// Logs go to stderr; stdout carries the MCP protocol stream.
	logger := log.New(os.Stderr, "expensa-mcp ", log.LstdFlags)

	cfg, err := config.Load()
	if err != nil {
		logger.Printf("config: %v", err)
		return 1
	}

	db, err := sqlite.NewDB(cfg.DBPath)
	if err != nil {
		logger.Printf("open database: %v", err)
		return 1
	}
	defer db.Close() //nolint:errcheck

	if err := sqlite.MigrateUp(db); err != nil {
		logger.Printf("migrate: %v", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	handler := mcpserver.NewHandler(expense.NewStore(db), logger)
	if err := mcpserver.Run(ctx, handler); err != nil && ctx.Err() == nil {
		logger.Printf("mcp: %v", err)
		return 1
	}
	return 0
}

func printHelp(out io.Writer) {
	helpText := `Expensa - expense reporting backend

Usage:
  expensa [options] [command]

Options:
  --version    Show version information
  --help       Show this help message

Commands:
  serve        Start the HTTP server (default)
  migrate      Run database migrations and exit
  mcp          Serve the expense tools over MCP stdio

Configuration is read from the YAML file named by EXPENSA_CONFIG, with
environment-variable overrides (EXPENSA_HTTP_HOST, EXPENSA_HTTP_PORT,
EXPENSA_DB_PATH, CHAT_ENDPOINT, CHAT_DEPLOYMENT, CHAT_API_KEY,
CHAT_CLIENT_ID).

Examples:
  expensa --version
  expensa serve
  expensa migrate
  expensa mcp`
	fmt.Fprintln(out, helpText) //nolint:errcheck
}
