package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"example.com/card-planner/backend/internal/config"
	"example.com/card-planner/backend/internal/database"
	"example.com/card-planner/backend/internal/notifications"
	"example.com/card-planner/backend/internal/reminders"
	"example.com/card-planner/backend/internal/repository"
	"example.com/card-planner/backend/internal/server"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ensureEnvFile()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("card planner stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// run поднимает БД, планировщик напоминаний и HTTP-сервер и держит их до отмены ctx.
func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	if cfg.Planner.Migrate {
		if err := database.ApplyMigrations(ctx, db); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}

	hub := notifications.NewHub()
	scheduler := reminders.New(cfg.Planner, repository.NewCardRepository(db), hub, logger)
	if err := scheduler.Start(); err != nil {
		return err
	}

	e := server.New(cfg, logger, db, hub)
	httpServer := server.NewHTTPServer(cfg.Server, e)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("http server started", slog.String("addr", httpServer.Addr), slog.String("env", cfg.Env))
		if err := e.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			runErr = fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	scheduler.Stop(shutdownCtx)
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.String("error", err.Error()))
	}

	return runErr
}

// ensureEnvFile ищет .env рядом с бинарником или уровнем выше, если ENV_FILE не задан.
func ensureEnvFile() {
	if os.Getenv("ENV_FILE") != "" {
		return
	}

	for _, candidate := range []string{".env", "../.env"} {
		if _, err := os.Stat(candidate); err == nil {
			_ = os.Setenv("ENV_FILE", candidate)
			return
		}
	}
}
