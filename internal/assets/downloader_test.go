package assets

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownloader_Preflight(t *testing.T) {
	root := filepath.Join(t.TempDir(), "media")
	d := NewDownloader(Config{MediaRoot: root})

	require.NoError(t, d.Preflight())

	// The root was created and the probe file cleaned up.
	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestBatch_RejectsDisallowedDomain(t *testing.T) {
	d := NewDownloader(Config{MediaRoot: t.TempDir()})

	res := d.Batch(context.Background(), []DownloadRequest{
		{URL: "https://evil.example.com/a.webp", TargetPath: "tvs/jupiter/1.webp"},
	}, nil)

	assert.Equal(t, 1, res.Total)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 0, res.Completed)
	require.Len(t, res.Results, 1)
	assert.Equal(t, StatusError, res.Results[0].Status)
	assert.Contains(t, res.Results[0].Error, "not in allowlist")
}

func TestBatch_RejectsBadExtension(t *testing.T) {
	d := NewDownloader(Config{MediaRoot: t.TempDir()})

	res := d.Batch(context.Background(), []DownloadRequest{
		{URL: "https://www.tvsmotor.com/a.exe", TargetPath: "tvs/jupiter/a.exe"},
	}, nil)

	assert.Equal(t, 1, res.Failed)
	assert.Contains(t, res.Results[0].Error, "not allowed")
}

func TestBatch_PreservesRequestOrder(t *testing.T) {
	d := NewDownloader(Config{MediaRoot: t.TempDir(), Concurrency: 3})

	reqs := []DownloadRequest{
		{URL: "https://bad.example.com/1.webp", TargetPath: "a/1.webp"},
		{URL: "https://bad.example.com/2.webp", TargetPath: "a/2.webp"},
		{URL: "https://bad.example.com/3.webp", TargetPath: "a/3.webp"},
	}
	res := d.Batch(context.Background(), reqs, nil)

	require.Len(t, res.Results, 3)
	for i, r := range res.Results {
		assert.Equal(t, reqs[i].URL, r.URL)
	}
}

func TestNewDownloader_Defaults(t *testing.T) {
	d := NewDownloader(Config{MediaRoot: "x"})
	assert.Equal(t, int64(10<<20), d.maxFileSize)
	assert.Equal(t, 5, d.concurrency)
	assert.NotNil(t, d.client)
	assert.NotNil(t, d.limiter)
}
