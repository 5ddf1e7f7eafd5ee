// Package app wires configuration into a ready-to-use forge.Store shared by
// the CLI and the HTTP server.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"go-forge/internal/config"
	"go-forge/internal/forge"
	"go-forge/internal/generator"
	"go-forge/internal/mirror"
	"go-forge/internal/storage"
)

// App holds the store and the resources behind it.
type App struct {
	Config *config.Config
	Logger *slog.Logger
	Store  *forge.Store
	KV     storage.KVStore
	Queue  *mirror.Queue  // Nil when mirroring is disabled
	Worker *mirror.Worker // Nil when mirroring is disabled
}

// New opens the configured backend, loads user templates and restores the
// saved project, if any.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	// 1. Key-value backend
	kv, err := storage.Open(cfg.Store.Backend, cfg.StorePath())
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Store.Backend, err)
	}

	// 2. Templates: built-ins plus the optional user directory
	registry := generator.DefaultRegistry()
	if cfg.TemplatesDir != "" {
		loaded, err := registry.LoadDir(cfg.TemplatesDir)
		if err != nil {
			kv.Close()
			return nil, fmt.Errorf("failed to load templates: %w", err)
		}
		logger.Debug("Loaded user templates", "dir", cfg.TemplatesDir, "templates", loaded)
	}

	a := &App{Config: cfg, Logger: logger, KV: kv}

	// 3. Mirroring
	var saver mirror.Saver
	if cfg.Mirror.Enabled {
		switch cfg.Mirror.Mode {
		case "dir":
			saver, err = mirror.NewDirSaver(cfg.Mirror.Root)
			if err != nil {
				kv.Close()
				return nil, err
			}
		default:
			saver = mirror.NewHTTPSaver(cfg.Mirror.Endpoint, cfg.Mirror.Path, cfg.Mirror.Root, cfg.Mirror.Timeout)
		}
		a.Queue = mirror.NewQueue(cfg.Mirror.QueueSize)
	}

	opts := forge.Options{
		Logger:     logger,
		Registry:   registry,
		KV:         kv,
		Key:        cfg.Store.Key,
		MaxBackups: cfg.Backups.Max,
	}
	if a.Queue != nil {
		opts.Mirror = a.Queue
	}
	a.Store = forge.NewStore(opts)

	if saver != nil {
		a.Worker = mirror.NewWorker(a.Queue, saver, logger, a.Store.ReportMirrorFailure, cfg.Mirror.Timeout)
	}

	// 4. Restore the last session
	if a.Store.Load() {
		if p, ok := a.Store.Project(); ok {
			logger.Debug("Restored project", "name", p.Name, "template", p.Template)
		}
	}
	return a, nil
}

// RunMirror delivers queued writes until ctx is done or the queue is closed.
// It returns immediately when mirroring is disabled.
func (a *App) RunMirror(ctx context.Context) error {
	if a.Worker == nil {
		return nil
	}
	return a.Worker.Run(ctx)
}

// Close stops accepting mirror requests and closes the backend. Run the
// worker to completion after Close to flush pending requests.
func (a *App) Close() error {
	if a.Queue != nil {
		a.Queue.Close()
	}
	return a.KV.Close()
}
