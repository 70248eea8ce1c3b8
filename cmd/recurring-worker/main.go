package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"lunargrid/internal/amqp"
	"lunargrid/internal/config"
	"lunargrid/internal/core"
	applog "lunargrid/internal/log"
	"lunargrid/internal/recurrence"
	"lunargrid/internal/services"
	"lunargrid/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.Config{Component: "recurring-worker"})
	applog.SetDefault(logger)

	logger.Info("Starting recurring-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without event publishing", "error", err)
			amqpClient = nil
		} else {
			defer amqpClient.Close()
			logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	var publisher services.EventPublisher
	if amqpClient != nil {
		publisher = amqpClient
	}
	generationSvc := services.NewGenerationService(repo, repo, publisher, recurrence.Options{
		SkipWeekends: cfg.SkipWeekends,
		Holidays:     cfg.Holidays(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info("Generation worker configured",
		"interval", cfg.WorkerInterval,
		"concurrency", cfg.WorkerConcurrency,
		"window_months", cfg.GenerationWindowMonths,
		"sqlite_db", cfg.SQLiteDBPath)

	run := func(now time.Time) {
		window := rollingWindow(now, cfg.GenerationWindowMonths)
		users, err := repo.ListUserIDs(ctx)
		if err != nil {
			logger.Error("Failed to list users", "error", err)
			return
		}
		if len(users) == 0 {
			logger.Info("No users with active templates, nothing to generate")
			return
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(cfg.WorkerConcurrency)
		for _, userID := range users {
			g.Go(func() error {
				if _, err := generationSvc.GenerateForUser(gctx, userID, window); err != nil {
					logger.Error("Generation failed", "user_id", userID, "error", err)
				}
				return nil // one user's failure never aborts the batch
			})
		}
		_ = g.Wait()

		logger.Info("Generation batch complete",
			"users", len(users),
			"window_start", window.Start.ISO(),
			"window_end", window.End.ISO())
	}

	ticker := time.NewTicker(cfg.WorkerInterval)
	defer ticker.Stop()

	logger.Info("Running initial generation batch...")
	run(time.Now())

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				run(now)
			}
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	cancel()
	logger.Info("Recurring-worker shutdown complete")
}

// rollingWindow covers today through the end of the month N months ahead.
func rollingWindow(now time.Time, months int) recurrence.Window {
	start := core.NewDate(now.Year(), int(now.Month()), now.Day())
	endMonth := now.AddDate(0, months, 0)
	lastDay := time.Date(endMonth.Year(), endMonth.Month()+1, 0, 0, 0, 0, 0, time.UTC)
	end := core.NewDate(lastDay.Year(), int(lastDay.Month()), lastDay.Day())
	return recurrence.Window{Start: start, End: end}
}
