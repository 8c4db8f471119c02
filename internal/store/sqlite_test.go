package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookmybike/catalog-cli/internal/model"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestSQLiteStore_ModelRoundTrip(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	specs := model.Specs{
		"engine_cc": 124.8,
		"provenance": map[string]any{
			"external_id": "veh-jupiter",
			"brand_slug":  "tvs",
		},
	}
	id, err := s.InsertModel(ctx, "brand-1", model.Record{Name: "Jupiter 125", Slug: "tvs-jupiter-125", Specs: specs})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	records, err := s.ListModels(ctx, "brand-1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, id, records[0].ID)
	assert.Equal(t, "Jupiter 125", records[0].Name)
	assert.Equal(t, StatusInactive, records[0].Status)
	assert.Equal(t, 124.8, records[0].Specs["engine_cc"])
	assert.Equal(t, "veh-jupiter", records[0].ExternalID())

	// Other brands see nothing.
	other, err := s.ListModels(ctx, "brand-2")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestSQLiteStore_UpdateModelSpecs(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	id, err := s.InsertModel(ctx, "brand-1", model.Record{Name: "Apache", Slug: "tvs-apache", Specs: model.Specs{"kerb_weight": 150.0}})
	require.NoError(t, err)

	require.NoError(t, s.UpdateModelSpecs(ctx, id, model.Specs{"kerb_weight": 152.0}))

	records, err := s.ListModels(ctx, "brand-1")
	require.NoError(t, err)
	assert.Equal(t, 152.0, records[0].Specs["kerb_weight"])

	err = s.UpdateModelSpecs(ctx, "missing-id", model.Specs{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLiteStore_VariantAndColorTree(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	modelID, err := s.InsertModel(ctx, "brand-1", model.Record{Name: "Jupiter", Slug: "tvs-jupiter"})
	require.NoError(t, err)

	variantID, err := s.InsertVariant(ctx, modelID, "brand-1", model.Record{Name: "Disc", Slug: "tvs-disc", Specs: model.Specs{"front_brake_type": "Disc"}})
	require.NoError(t, err)

	colorID, err := s.InsertColor(ctx, variantID, "brand-1", model.Record{
		Name: "Matte Blue", Slug: "tvs-matte-blue",
		Specs: model.Specs{"hex_primary": "#27496d", "finish": "Matte"},
	})
	require.NoError(t, err)

	variants, err := s.ListVariants(ctx, modelID)
	require.NoError(t, err)
	require.Len(t, variants, 1)
	assert.Equal(t, variantID, variants[0].ID)

	colors, err := s.ListColors(ctx, variantID)
	require.NoError(t, err)
	require.Len(t, colors, 1)
	assert.Equal(t, colorID, colors[0].ID)
	assert.Equal(t, "#27496d", colors[0].Specs["hex_primary"])
}

func TestSQLiteStore_UpsertAssetIdempotent(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	link := model.AssetLink{
		ItemID:      "sku-1",
		Type:        "IMAGE",
		URL:         "tvs/jupiter/blue/1.webp",
		SHA256:      "abc123",
		ContentType: "image/webp",
		FileSize:    1024,
		IsPrimary:   true,
	}
	require.NoError(t, s.UpsertAsset(ctx, link))

	// Same item and hash again: upsert, not a duplicate row.
	link.URL = "tvs/jupiter/blue/renamed.webp"
	require.NoError(t, s.UpsertAsset(ctx, link))

	// A different item may hold the same hash.
	link.ItemID = "sku-2"
	require.NoError(t, s.UpsertAsset(ctx, link))

	hashes, err := s.AssetHashes(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"abc123": true}, hashes)

	var count int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM cat_assets`).Scan(&count))
	assert.Equal(t, 2, count)
}

func TestSQLiteStore_SourcesRoundTrip(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	sources := []model.SourceSnapshot{
		{ID: "src-1", SourceURL: "https://www.tvsmotor.com/", Payload: "<html>one</html>"},
		{ID: "src-2", SourceURL: "https://www.tvsmotor.com/apache", Payload: "<html>two</html>"},
	}
	require.NoError(t, s.SaveSources(ctx, "brand-1", sources))

	got, err := s.GetSources(ctx, "brand-1")
	require.NoError(t, err)
	assert.Equal(t, sources, got)

	// Saving again replaces the payload set.
	require.NoError(t, s.SaveSources(ctx, "brand-1", sources[:1]))
	got, err = s.GetSources(ctx, "brand-1")
	require.NoError(t, err)
	require.Len(t, got, 1)

	require.NoError(t, s.DeleteSources(ctx, "brand-1"))
	got, err = s.GetSources(ctx, "brand-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}
