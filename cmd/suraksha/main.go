// Package main запускает HTTP-сервер сервиса учёта обслуживания резервуаров.
package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"golang.org/x/sync/errgroup"

	"github.com/mmeshcher/suraksha-service/internal/config"
	"github.com/mmeshcher/suraksha-service/internal/handler"
	"github.com/mmeshcher/suraksha-service/internal/logger"
	"github.com/mmeshcher/suraksha-service/internal/reminder"
	"github.com/mmeshcher/suraksha-service/internal/repository"
	"github.com/mmeshcher/suraksha-service/internal/service"
	"github.com/mmeshcher/suraksha-service/internal/store"
	"github.com/mmeshcher/suraksha-service/internal/webhook"
)

type storage interface {
	store.Storage
	io.Closer
}

func main() {
	cfg, err := config.Parse()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger initialization error: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	sugar := log.Sugar()

	loc, err := cfg.Location()
	if err != nil {
		sugar.Fatalw("configuration error", "error", err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, err := openStorage(ctx, cfg)
	if err != nil {
		sugar.Fatalw("storage initialization error", "error", err.Error())
	}
	defer repo.Close()

	records := store.New(repo, log.Named("store"))
	if err := records.Init(ctx, store.SeedCustomers()); err != nil {
		sugar.Fatalw("store initialization error", "error", err.Error())
	}

	syncClient := webhook.NewClient(cfg.SyncWebhookURL, log.Named("webhook"))
	svc := service.NewService(records, syncClient, log.Named("service"), loc)

	h := handler.NewHandler(svc, log)

	server := &http.Server{
		Addr:              cfg.RunAddress,
		Handler:           h.SetupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	scheduler := reminder.NewScheduler(records, log.Named("reminder"), loc, reminder.DefaultWindowDays)

	g, ctx := errgroup.WithContext(ctx)

	// Ежедневная сводка предстоящих обслуживаний
	g.Go(func() error {
		return scheduler.Run(ctx, cfg.ReminderSchedule)
	})

	g.Go(func() error {
		sugar.Infow("starting suraksha server", "addr", cfg.RunAddress, "timezone", loc.String())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown при отмене контекста (сигнал или ошибка в другой горутине)
	g.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		sugar.Info("server stopped gracefully")
		return nil
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
}

// openStorage выбирает PostgreSQL, если задан DATABASE_URI, иначе локальный файл SQLite.
func openStorage(ctx context.Context, cfg *config.Config) (storage, error) {
	if cfg.DatabaseURI != "" {
		repo, err := repository.NewPostgresRepository(cfg.DatabaseURI)
		if err != nil {
			return nil, err
		}
		return repo, nil
	}

	repo, err := repository.NewSQLiteRepository(ctx, cfg.StoragePath)
	if err != nil {
		return nil, err
	}
	return repo, nil
}
