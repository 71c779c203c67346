package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Simplici0/menucost/internal/config"
	"github.com/Simplici0/menucost/internal/db"
	"github.com/Simplici0/menucost/internal/logger"
	"github.com/Simplici0/menucost/internal/migrations"
	"github.com/Simplici0/menucost/internal/seed"
	"github.com/Simplici0/menucost/internal/service"
	"github.com/Simplici0/menucost/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	log := logger.Setup(logger.Config{Debug: cfg.LogDebug})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	database, err := db.Open(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer database.Close()

	if cfg.IsDev() {
		if err := migrations.Up(database); err != nil {
			return err
		}
		stats, err := seed.Run(ctx, database)
		if err != nil {
			return err
		}
		log.Info("seed.done", "inserts", stats.Inserts)
	}

	svc := service.New(store.New(database, log), cfg.Settings, log)
	if err := svc.Recost(ctx); err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newServer(svc, log).routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", httpServer.Addr, "env", cfg.Env)
		errc <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info("shutting down")
	return httpServer.Shutdown(shutdownCtx)
}
