package assets

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const userAgent = "BookMyBike-AssetSync/1.0"

// Status of one download attempt.
const (
	StatusDownloaded = "downloaded"
	StatusDedupeSkip = "dedupe_skipped"
	StatusError      = "error"
)

// DownloadRequest is one asset to fetch, with its media-root-relative target.
type DownloadRequest struct {
	URL        string `json:"url"`
	TargetPath string `json:"targetPath"`
}

// DownloadResult is the outcome of one fetch. LocalPath is the sanitized
// media-root-relative path, set for downloaded and dedupe_skipped results.
type DownloadResult struct {
	URL         string `json:"url"`
	LocalPath   string `json:"localPath"`
	SHA256      string `json:"sha256"`
	FileSize    int64  `json:"fileSize"`
	ContentType string `json:"contentType"`
	Status      string `json:"status"`
	Error       string `json:"error,omitempty"`
}

// BatchResult aggregates one Batch call.
type BatchResult struct {
	Total     int              `json:"total"`
	Completed int              `json:"completed"`
	Skipped   int              `json:"skipped"`
	Failed    int              `json:"failed"`
	Results   []DownloadResult `json:"results"`
}

// Config tunes a Downloader.
type Config struct {
	MediaRoot   string
	MaxFileSize int64
	Concurrency int
	RatePerSec  float64
	Client      *http.Client
}

// Downloader fetches assets with bounded concurrency and sha256 dedupe.
type Downloader struct {
	mediaRoot   string
	maxFileSize int64
	concurrency int
	limiter     *rate.Limiter
	client      *http.Client
}

// NewDownloader applies defaults: 10 MB cap, concurrency 5, 4 req/s, 30s
// request timeout.
func NewDownloader(cfg Config) *Downloader {
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = 10 << 20
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 5
	}
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = 4
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Downloader{
		mediaRoot:   cfg.MediaRoot,
		maxFileSize: cfg.MaxFileSize,
		concurrency: cfg.Concurrency,
		limiter:     rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.Concurrency),
		client:      cfg.Client,
	}
}

// Preflight verifies the media root exists (creating it if needed) and is
// writable.
func (d *Downloader) Preflight() error {
	if err := os.MkdirAll(d.mediaRoot, 0o755); err != nil {
		return eris.Wrap(err, "assets: creating media root")
	}
	probe := filepath.Join(d.mediaRoot, ".preflight_test")
	if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
		return eris.Wrap(err, "assets: media root not writable")
	}
	if err := os.Remove(probe); err != nil {
		return eris.Wrap(err, "assets: cleaning preflight probe")
	}
	return nil
}

// hashSet is the shared dedupe set for one batch. Hashes seen earlier in the
// batch count as duplicates for later items.
type hashSet struct {
	mu sync.Mutex
	m  map[string]bool
}

func (h *hashSet) has(sum string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.m[sum]
}

func (h *hashSet) add(sum string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.m[sum] = true
}

// Batch downloads the requests with bounded concurrency. existingHashes seeds
// the dedupe set, typically from the store's known asset hashes; a body whose
// sha256 is already present is reported as dedupe_skipped without a write.
func (d *Downloader) Batch(ctx context.Context, requests []DownloadRequest, existingHashes map[string]bool) BatchResult {
	res := BatchResult{Total: len(requests), Results: make([]DownloadResult, len(requests))}

	hashes := &hashSet{m: make(map[string]bool, len(existingHashes))}
	for h := range existingHashes {
		hashes.m[h] = true
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)
	for i, req := range requests {
		g.Go(func() error {
			res.Results[i] = d.download(gctx, req, hashes)
			return nil
		})
	}
	g.Wait()

	for _, r := range res.Results {
		switch r.Status {
		case StatusDownloaded:
			res.Completed++
		case StatusDedupeSkip:
			res.Skipped++
		default:
			res.Failed++
		}
	}

	zap.L().Info("assets: batch complete",
		zap.Int("total", res.Total),
		zap.Int("completed", res.Completed),
		zap.Int("skipped", res.Skipped),
		zap.Int("failed", res.Failed),
	)
	return res
}

func errResult(req DownloadRequest, msg string) DownloadResult {
	return DownloadResult{URL: req.URL, Status: StatusError, Error: msg}
}

func (d *Downloader) download(ctx context.Context, req DownloadRequest, hashes *hashSet) DownloadResult {
	if !IsAllowedAssetDomain(req.URL) {
		return errResult(req, "Asset domain not in allowlist: "+req.URL)
	}

	resolved, relative, err := ValidatePath(d.mediaRoot, req.TargetPath)
	if err != nil {
		return errResult(req, err.Error())
	}

	if err := d.limiter.Wait(ctx); err != nil {
		return errResult(req, err.Error())
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return errResult(req, err.Error())
	}
	httpReq.Header.Set("User-Agent", userAgent)
	httpReq.Header.Set("Accept", "image/*,video/*,application/pdf")

	resp, err := d.client.Do(httpReq)
	if err != nil {
		return errResult(req, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errResult(req, fmt.Sprintf("HTTP %d: %s", resp.StatusCode, resp.Status))
	}

	contentType := resp.Header.Get("Content-Type")
	allowed := false
	for _, p := range allowedMIMEPrefixes {
		if strings.HasPrefix(contentType, p) {
			allowed = true
			break
		}
	}
	if !allowed {
		r := errResult(req, "Content-Type "+contentType+" not allowed")
		r.ContentType = contentType
		return r
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, d.maxFileSize+1))
	if err != nil {
		return errResult(req, err.Error())
	}
	if int64(len(body)) > d.maxFileSize {
		r := errResult(req, fmt.Sprintf("File too large (> %d MB)", d.maxFileSize>>20))
		r.FileSize = int64(len(body))
		r.ContentType = contentType
		return r
	}

	sum := sha256.Sum256(body)
	sha := hex.EncodeToString(sum[:])

	result := DownloadResult{
		URL:         req.URL,
		LocalPath:   relative,
		SHA256:      sha,
		FileSize:    int64(len(body)),
		ContentType: contentType,
	}

	if hashes.has(sha) {
		result.Status = StatusDedupeSkip
		return result
	}
	if onDisk, err := os.ReadFile(resolved); err == nil {
		existing := sha256.Sum256(onDisk)
		if hex.EncodeToString(existing[:]) == sha {
			hashes.add(sha)
			result.Status = StatusDedupeSkip
			return result
		}
	}

	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return errResult(req, err.Error())
	}
	if err := os.WriteFile(resolved, body, 0o644); err != nil {
		return errResult(req, err.Error())
	}

	hashes.add(sha)
	result.Status = StatusDownloaded
	return result
}
