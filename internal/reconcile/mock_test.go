package reconcile

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"

	"github.com/bookmybike/catalog-cli/internal/assets"
	"github.com/bookmybike/catalog-cli/internal/model"
)

// fakeStore is an in-memory Store for planner and executor tests.
type fakeStore struct {
	models   map[string][]model.Record // brandID -> records
	variants map[string][]model.Record // modelID -> records
	colors   map[string][]model.Record // variantID -> records
	hashes   map[string]bool
	links    []model.AssetLink
	sources  map[string][]model.SourceSnapshot

	nextID     int
	failInsert string // record name that fails on insert
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		models:   map[string][]model.Record{},
		variants: map[string][]model.Record{},
		colors:   map[string][]model.Record{},
		hashes:   map[string]bool{},
		sources:  map[string][]model.SourceSnapshot{},
	}
}

func (f *fakeStore) genID() string {
	f.nextID++
	return fmt.Sprintf("id-%d", f.nextID)
}

func (f *fakeStore) ListModels(_ context.Context, brandID string) ([]model.Record, error) {
	return f.models[brandID], nil
}

func (f *fakeStore) ListVariants(_ context.Context, modelID string) ([]model.Record, error) {
	return f.variants[modelID], nil
}

func (f *fakeStore) ListColors(_ context.Context, variantID string) ([]model.Record, error) {
	return f.colors[variantID], nil
}

func (f *fakeStore) InsertModel(_ context.Context, brandID string, rec model.Record) (string, error) {
	if rec.Name == f.failInsert {
		return "", eris.New("boom")
	}
	rec.ID = f.genID()
	rec.Status = "INACTIVE"
	f.models[brandID] = append(f.models[brandID], rec)
	return rec.ID, nil
}

func (f *fakeStore) InsertVariant(_ context.Context, modelID, _ string, rec model.Record) (string, error) {
	if rec.Name == f.failInsert {
		return "", eris.New("boom")
	}
	rec.ID = f.genID()
	rec.Status = "INACTIVE"
	f.variants[modelID] = append(f.variants[modelID], rec)
	return rec.ID, nil
}

func (f *fakeStore) InsertColor(_ context.Context, variantID, _ string, rec model.Record) (string, error) {
	if rec.Name == f.failInsert {
		return "", eris.New("boom")
	}
	rec.ID = f.genID()
	rec.Status = "INACTIVE"
	f.colors[variantID] = append(f.colors[variantID], rec)
	return rec.ID, nil
}

func (f *fakeStore) updateIn(records []model.Record, id string, specs model.Specs) bool {
	for i := range records {
		if records[i].ID == id {
			records[i].Specs = specs
			return true
		}
	}
	return false
}

func (f *fakeStore) UpdateModelSpecs(_ context.Context, id string, specs model.Specs) error {
	for brand := range f.models {
		if f.updateIn(f.models[brand], id, specs) {
			return nil
		}
	}
	return eris.Errorf("model not found: %s", id)
}

func (f *fakeStore) UpdateVariantSpecs(_ context.Context, id string, specs model.Specs) error {
	for parent := range f.variants {
		if f.updateIn(f.variants[parent], id, specs) {
			return nil
		}
	}
	return eris.Errorf("variant not found: %s", id)
}

func (f *fakeStore) UpdateColorSpecs(_ context.Context, id string, specs model.Specs) error {
	for parent := range f.colors {
		if f.updateIn(f.colors[parent], id, specs) {
			return nil
		}
	}
	return eris.Errorf("color not found: %s", id)
}

func (f *fakeStore) AssetHashes(_ context.Context) (map[string]bool, error) {
	return f.hashes, nil
}

func (f *fakeStore) UpsertAsset(_ context.Context, link model.AssetLink) error {
	f.links = append(f.links, link)
	return nil
}

func (f *fakeStore) SaveSources(_ context.Context, ownerID string, sources []model.SourceSnapshot) error {
	f.sources[ownerID] = sources
	return nil
}

func (f *fakeStore) GetSources(_ context.Context, ownerID string) ([]model.SourceSnapshot, error) {
	return f.sources[ownerID], nil
}

func (f *fakeStore) DeleteSources(_ context.Context, ownerID string) error {
	delete(f.sources, ownerID)
	return nil
}

func (f *fakeStore) Migrate(_ context.Context) error { return nil }
func (f *fakeStore) Close() error                    { return nil }

// fakeDownloader returns a canned result per URL without any network I/O.
type fakeDownloader struct {
	calls   [][]assets.DownloadRequest
	results map[string]assets.DownloadResult // keyed by URL
}

func (f *fakeDownloader) Batch(_ context.Context, requests []assets.DownloadRequest, _ map[string]bool) assets.BatchResult {
	f.calls = append(f.calls, requests)
	res := assets.BatchResult{Total: len(requests)}
	for _, req := range requests {
		r, ok := f.results[req.URL]
		if !ok {
			r = assets.DownloadResult{URL: req.URL, Status: assets.StatusError, Error: "no canned result"}
		}
		res.Results = append(res.Results, r)
		switch r.Status {
		case assets.StatusDownloaded:
			res.Completed++
		case assets.StatusDedupeSkip:
			res.Skipped++
		default:
			res.Failed++
		}
	}
	return res
}
