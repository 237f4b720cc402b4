package internal

import (
	"fmt"
	"log/slog"

	"github.com/starford/streammark/internal/chapters"
	"github.com/starford/streammark/internal/kv"
	"github.com/starford/streammark/internal/markservice"
	"github.com/starford/streammark/internal/settings"
	"github.com/starford/streammark/internal/sse"
	"github.com/starford/streammark/internal/storage"
	"github.com/starford/streammark/internal/telemetry"
	"github.com/starford/streammark/internal/youtube"
)

// App bundles the service with the resources it owns.
type App struct {
	Service *markservice.Service
	Broker  *sse.Broker
	DBPath  string

	db *kv.SQLite
}

// Open opens the SQLite store at cfg.Storage.Path and loads state from it.
func Open(cfg *Config, logger *slog.Logger) (*App, error) {
	db, err := kv.Open(cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	app, err := build(cfg, logger, db, nil)
	if err != nil {
		db.Close()
		return nil, err
	}
	app.db = db
	app.DBPath = db.Path()
	return app, nil
}

// build wires the service over store. source defaults to the YouTube Data API.
func build(cfg *Config, logger *slog.Logger, store kv.Store, source chapters.StartTimeSource) (*App, error) {
	loc, err := cfg.Display.Location()
	if err != nil {
		return nil, fmt.Errorf("load time zone: %w", err)
	}
	exports, err := storage.NewFS(cfg.Export.Dir)
	if err != nil {
		return nil, fmt.Errorf("init exports: %w", err)
	}
	if err := settings.NewAPIKey(store).SeedIfEmpty(cfg.YouTube.APIKey); err != nil {
		return nil, fmt.Errorf("seed api key: %w", err)
	}
	if source == nil {
		opts := []youtube.Option{youtube.WithTimeout(cfg.YouTube.Timeout)}
		if cfg.YouTube.Endpoint != "" {
			opts = append(opts, youtube.WithEndpoint(cfg.YouTube.Endpoint))
		}
		client, err := youtube.NewClient(opts...)
		if err != nil {
			return nil, err
		}
		source = client
	}

	telemetry.Init()

	app := &App{}
	app.Broker = sse.NewBroker(func() []sse.Event { return app.Service.Snapshot() })

	svc, err := markservice.New(markservice.Options{
		KV:         store,
		Source:     source,
		Exports:    exports,
		Location:   loc,
		StartLabel: cfg.Display.StartLabel,
		Publisher:  app.Broker,
		Logger:     logger,
	})
	if err != nil {
		app.Broker.Close()
		return nil, fmt.Errorf("load state: %w", err)
	}
	app.Service = svc
	return app, nil
}

// Close stops the broker and closes the database.
func (a *App) Close() error {
	a.Broker.Close()
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}
