// Package store persists the catalog tree (models, variants, color units),
// linked assets, and raw ingestion source payloads. Two backends implement
// the same interface: embedded SQLite for local runs and Postgres for the
// shared catalog.
package store

import (
	"context"

	"github.com/bookmybike/catalog-cli/internal/model"
)

// Store defines the persistence interface for the catalog pipeline. Writes
// happen only through the sync executor; everything else reads.
type Store interface {
	// Catalog tree
	ListModels(ctx context.Context, brandID string) ([]model.Record, error)
	ListVariants(ctx context.Context, modelID string) ([]model.Record, error)
	ListColors(ctx context.Context, variantID string) ([]model.Record, error)
	InsertModel(ctx context.Context, brandID string, rec model.Record) (string, error)
	InsertVariant(ctx context.Context, modelID, brandID string, rec model.Record) (string, error)
	InsertColor(ctx context.Context, variantID, brandID string, rec model.Record) (string, error)
	UpdateModelSpecs(ctx context.Context, id string, specs model.Specs) error
	UpdateVariantSpecs(ctx context.Context, id string, specs model.Specs) error
	UpdateColorSpecs(ctx context.Context, id string, specs model.Specs) error

	// Assets
	AssetHashes(ctx context.Context) (map[string]bool, error)
	UpsertAsset(ctx context.Context, link model.AssetLink) error

	// Raw ingestion sources, keyed by the owning item or brand id.
	SaveSources(ctx context.Context, ownerID string, sources []model.SourceSnapshot) error
	GetSources(ctx context.Context, ownerID string) ([]model.SourceSnapshot, error)
	DeleteSources(ctx context.Context, ownerID string) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// StatusInactive is the status assigned to every record the executor
// creates. Activation is a human decision, never an ingestion side effect.
const StatusInactive = "INACTIVE"
