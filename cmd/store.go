package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"

	"github.com/bookmybike/catalog-cli/internal/assets"
	"github.com/bookmybike/catalog-cli/internal/store"
)

// openStore opens the configured backend. The caller must Close it.
func openStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &cfg.Store.Pool)
	case "sqlite":
		return store.NewSQLite(cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("cli: unknown store driver %q", cfg.Store.Driver)
	}
}

func newDownloader() *assets.Downloader {
	return assets.NewDownloader(assets.Config{
		MediaRoot:   cfg.Assets.MediaRoot,
		MaxFileSize: int64(cfg.Assets.MaxFileSizeMB) << 20,
		Concurrency: cfg.Assets.Concurrency,
		RatePerSec:  float64(cfg.Assets.RatePerSec),
	})
}

// printJSON writes v to stdout, indented for human review.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
