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

	"go-forge/internal/app"
	"go-forge/internal/config"
	"go-forge/internal/forge"
	"go-forge/internal/templating"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
)

// shutdownTimeout bounds how long in-flight requests get after a signal.
const shutdownTimeout = 10 * time.Second

// application holds the dependencies shared by the HTTP handlers.
type application struct {
	logger *slog.Logger
	store  *forge.Store
	pages  *templating.Engine
	now    func() time.Time
}

func newApplication(a *app.App) (*application, error) {
	pages, err := templating.NewEngine()
	if err != nil {
		return nil, fmt.Errorf("failed to create template cache: %w", err)
	}
	return &application{
		logger: a.Logger,
		store:  a.Store,
		pages:  pages,
		now:    time.Now,
	}, nil
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "forge-server:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	// 1. Flags and configuration
	flags := pflag.NewFlagSet("forge-server", pflag.ContinueOnError)
	configFile := flags.String("config", "", "path to forge.yaml")
	flags.String("addr", "", "listen address (default :8081)")
	flags.String("data-dir", "", "directory holding the project store")
	flags.String("log-level", "", "debug, info, warn or error")
	if err := flags.Parse(args); err != nil {
		return err
	}

	v := config.New()
	for key, flag := range map[string]string{"server.addr": "addr", "data_dir": "data-dir", "log.level": "log-level"} {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", flag, err)
		}
	}
	cfg, err := config.Load(v, *configFile)
	if err != nil {
		return err
	}

	logger, err := config.NewLogger(cfg.Log, os.Stderr)
	if err != nil {
		return err
	}

	// 2. Store, mirror and pages
	a, err := app.New(cfg, logger)
	if err != nil {
		return err
	}
	srvApp, err := newApplication(a)
	if err != nil {
		a.Close()
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srvApp.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	// 3. Serve until a signal arrives or the listener fails
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting server", "address", srv.Addr, "backend", cfg.Store.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	// The worker drains on queue close, so it must outlive the signal context
	g.Go(func() error {
		return a.RunMirror(context.WithoutCancel(gctx))
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		if closeErr := a.Close(); closeErr != nil {
			logger.Error("Failed to close store", "error", closeErr)
		}
		return err
	})

	return g.Wait()
}
