package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	portsrepo "github.com/SscSPs/account_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/account_ledger/internal/core/services"
	"github.com/SscSPs/account_ledger/internal/platform/config"
	"github.com/SscSPs/account_ledger/internal/repositories/database/pgsql"
	"github.com/SscSPs/account_ledger/internal/repositories/memory"
	"github.com/SscSPs/account_ledger/migrations"
	"github.com/SscSPs/account_ledger/pkg/database"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Println(usage)
		return 0
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load config", slog.String("error", err.Error()))
		return 1
	}

	// Initialize structured logger; stdout carries command output, so logs go to stderr
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, cleanup, err := openStore(ctx, cfg, args[0] == "migrate", logger)
	if err != nil {
		logger.Error("Failed to initialize store", slog.String("store", cfg.Store), slog.String("error", err.Error()))
		return 1
	}
	defer cleanup()

	if args[0] == "migrate" {
		return 0
	}

	container := services.NewServiceContainer(repos)
	runner := newCommandRunner(container.Account, logger, os.Stdout)

	if args[0] == "shell" {
		if err := runner.shell(ctx, os.Stdin, os.Stderr); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Shell terminated", slog.String("error", err.Error()))
			return 1
		}
		return 0
	}

	if err := runner.execute(ctx, args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		if errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, usage)
			return 2
		}
		return 1
	}
	return 0
}

// openStore builds the repositories selected by LEDGER_STORE. Migrations run when
// RUN_MIGRATIONS is set or forceMigrate is true.
func openStore(ctx context.Context, cfg *config.Config, forceMigrate bool, logger *slog.Logger) (portsrepo.RepositoryProvider, func(), error) {
	if cfg.Store == config.StoreMemory {
		if forceMigrate {
			return portsrepo.RepositoryProvider{}, nil, fmt.Errorf("migrate requires LEDGER_STORE=%s", config.StorePostgres)
		}
		logger.Debug("Using in-memory store; state is discarded on exit")
		return memory.NewRepositoryProvider(), func() {}, nil
	}

	if cfg.RunMigrations || forceMigrate {
		if err := database.RunMigrations(ctx, cfg.DatabaseURL, migrations.FS, logger); err != nil {
			return portsrepo.RepositoryProvider{}, nil, err
		}
	}

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.StoreTimeout, logger)
	if err != nil {
		return portsrepo.RepositoryProvider{}, nil, err
	}
	cleanup := func() { database.ClosePgxPool(dbPool, logger) }

	return pgsql.NewRepositoryProvider(dbPool, cfg.StoreTimeout), cleanup, nil
}
