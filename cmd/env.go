package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/coverscan/coverscan/internal/adapter"
	"github.com/coverscan/coverscan/internal/fetch"
	"github.com/coverscan/coverscan/internal/ingest"
	"github.com/coverscan/coverscan/internal/recommend"
	"github.com/coverscan/coverscan/internal/store"
)

// appEnv holds the initialized store, ingestion runner and recommendation
// engine shared by the serve/ingest/recommend commands.
type appEnv struct {
	Store  store.Store
	Runner *ingest.Runner
	Engine *recommend.Engine
}

// Close releases resources held by the environment.
func (e *appEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "coverscan.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// sourceAdapters builds the adapter list in priority order. The browser-based
// policybazaar adapter is appended only when enabled; it needs a local
// Chrome/Chromium install.
func sourceAdapters() []adapter.Adapter {
	client := fetch.NewClient(cfg.Fetch)
	adapters := []adapter.Adapter{
		adapter.NewBankBazaar(client),
		adapter.NewCoverfoxCSR(client),
		adapter.NewCoverfox(client),
		adapter.NewPolicyX(client),
		adapter.NewMaxLife(client),
		adapter.NewHDFCLife(client),
	}
	if cfg.Ingest.EnableBrowser {
		adapters = append(adapters, adapter.NewPolicyBazaar(fetch.NewBrowser(cfg.Fetch)))
		zap.L().Info("browser-based policybazaar adapter enabled")
	}
	return adapters
}

// initEnv sets up the store, the ingestion runner and the recommendation
// engine. Callers should defer env.Close().
func initEnv(ctx context.Context) (*appEnv, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	runner := ingest.NewRunner(st, sourceAdapters()...)
	engine := recommend.NewEngine(st, recommend.Generators(ctx, cfg)...)

	return &appEnv{Store: st, Runner: runner, Engine: engine}, nil
}
