package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bizdir/bizdir/internal/platform/db"
	"github.com/bizdir/bizdir/internal/platform/docstore"
)

// OpenStore connects the document store selected by cfg. The returned close
// function is never nil.
func OpenStore(ctx context.Context, cfg *Config, logger *slog.Logger) (docstore.Store, func(), error) {
	if cfg.UseMemoryStore() {
		logger.Warn("PG_DSN not set, documents are kept in memory", slog.String("env", cfg.AppEnv))
		return docstore.NewMemory(), func() {}, nil
	}
	pool, err := db.New(ctx, cfg.PGDSN, db.Options{MaxConns: cfg.PGMaxConns})
	if err != nil {
		return nil, nil, err
	}
	store := docstore.NewPostgres(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("app: ensure schema: %w", err)
	}
	return store, pool.Close, nil
}
