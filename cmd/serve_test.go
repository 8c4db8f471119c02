package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookmybike/catalog-cli/internal/config"
	"github.com/bookmybike/catalog-cli/internal/model"
	"github.com/bookmybike/catalog-cli/internal/store"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg = &config.Config{}
	cfg.Assets.MediaRoot = t.TempDir()
	cfg.Assets.MaxFileSizeMB = 10
	cfg.Assets.Concurrency = 2

	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	require.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() { st.Close() })

	return newRouter(st)
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestServeHealth(t *testing.T) {
	rec := doJSON(t, newTestRouter(t), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}

func TestServeExtractors(t *testing.T) {
	rec := doJSON(t, newTestRouter(t), http.MethodGet, "/extractors", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Extractors     []map[string]string `json:"extractors"`
		AllowedDomains []string            `json:"allowed_domains"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Extractors, 6)
	assert.Contains(t, body.AllowedDomains, "tvsmotor.com")
}

func TestServeParse_MissingPayload(t *testing.T) {
	rec := doJSON(t, newTestRouter(t), http.MethodPost, "/parse", map[string]string{"source_url": "https://www.tvsmotor.com"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "payload is required")
}

func TestServeParse_DisallowedDomain(t *testing.T) {
	rec := doJSON(t, newTestRouter(t), http.MethodPost, "/parse", map[string]any{
		"payload":    "<html></html>",
		"source_url": "https://evil.example.com/bikes",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	var result model.ExtractionResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.False(t, result.Success)
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0], "allowlist")
}

func TestServePlan_MissingBrandID(t *testing.T) {
	rec := doJSON(t, newTestRouter(t), http.MethodPost, "/plan", map[string]any{"models": []any{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "brand_id is required")
}

func TestServePlanAndSync_DryRun(t *testing.T) {
	h := newTestRouter(t)

	planReq := map[string]any{
		"brand_id": "brand-1",
		"mode":     "ITEM",
		"models": []model.ExtractedModel{{
			Name:  "Apache RTR 160",
			Specs: model.Specs{"engine_cc": 159.7},
			Provenance: model.Provenance{
				ExternalID: "veh-apache",
				BrandSlug:  "tvs",
			},
		}},
	}
	rec := doJSON(t, h, http.MethodPost, "/plan", planReq)
	require.Equal(t, http.StatusOK, rec.Code)

	var plan model.SyncPlan
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &plan))
	require.Len(t, plan.Items, 1)
	assert.Equal(t, model.ActionCreate, plan.Items[0].Action)

	rec = doJSON(t, h, http.MethodPost, "/sync", map[string]any{"plan": plan, "execute": false})
	require.Equal(t, http.StatusOK, rec.Code)

	var result model.SyncResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Success)
	assert.Equal(t, 1, result.Created)
	require.Len(t, result.CreatedIDs, 1)
	assert.Equal(t, "dry-run", result.CreatedIDs[0].ID)
}

func TestServeSync_InvalidBody(t *testing.T) {
	rec := doJSON(t, newTestRouter(t), http.MethodPost, "/sync", map[string]any{"execute": true})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
