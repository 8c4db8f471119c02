// Package extract turns raw source payloads from manufacturer and listing
// sites into a normalized, provenance-tagged document tree. Extractors are
// pure: they never perform network I/O and operate only on the payload and
// URL they are given.
package extract

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bookmybike/catalog-cli/internal/model"
)

// Extractor handles one source family's markup shape.
//
// CanHandle must be a cheap, side-effect-free predicate (a hostname check or
// a signature substring in the payload). Extract must be a pure function of
// its inputs. Registering an implementation is all that is required to add a
// new source.
type Extractor interface {
	Brand() string
	Version() string
	CanHandle(url, payload string) bool
	Extract(payload, url string) *model.ExtractionResult
}

// Info describes a registered extractor for display.
type Info struct {
	Brand   string `json:"brand"`
	Version string `json:"version"`
}

// Registry holds an ordered list of extractors. Dispatch picks the first
// extractor whose CanHandle returns true, so order encodes priority when
// several predicates could match the same payload.
type Registry struct {
	extractors []Extractor
}

// NewRegistry creates a registry with the given extractors in priority order.
func NewRegistry(extractors ...Extractor) *Registry {
	return &Registry{extractors: extractors}
}

// DefaultRegistry returns the registry with all built-in extractors. OEM
// site extractors come before the aggregator ones so a payload that both
// could claim is parsed by its own brand's handler.
func DefaultRegistry() *Registry {
	return NewRegistry(
		&TVSExtractor{},
		&HeroExtractor{},
		&YamahaExtractor{},
		&BajajExtractor{},
		&BikewaleExtractor{},
		&BikedekhoExtractor{},
	)
}

// Find returns the first extractor claiming the (url, payload) pair, or nil.
func (r *Registry) Find(url, payload string) Extractor {
	for _, e := range r.extractors {
		if e.CanHandle(url, payload) {
			return e
		}
	}
	return nil
}

// Extractors lists registered extractors and their parser versions.
func (r *Registry) Extractors() []Info {
	infos := make([]Info, 0, len(r.extractors))
	for _, e := range r.extractors {
		infos = append(infos, Info{Brand: e.Brand(), Version: e.Version()})
	}
	return infos
}

// ParseRequest is one payload to parse. ManualPaste bypasses the domain
// allowlist for audit-only pastes that were never fetched by us.
type ParseRequest struct {
	Payload     string
	SourceURL   string
	ManualPaste bool
}

// Parse validates the source URL, dispatches to the first matching
// extractor, and falls back to raw-inspector mode when nothing matches.
// This is the single entry point of the extraction pipeline; it never
// writes anything.
func (r *Registry) Parse(req ParseRequest) *model.ExtractionResult {
	if req.SourceURL != "" && !req.ManualPaste && !IsAllowedDomain(req.SourceURL) {
		return &model.ExtractionResult{
			Success:   false,
			BrandSlug: "unknown",
			Models:    []model.ExtractedModel{},
			Errors:    []string{"Domain not in allowlist. Allowed: " + strings.Join(DomainAllowlist, ", ")},
			Logs:      []model.ExtractorLog{model.NewLog(model.LogInitFetch, "Domain rejected", map[string]any{"url": req.SourceURL})},
		}
	}

	cleanURL := SanitizeURL(req.SourceURL)
	logs := []model.ExtractorLog{
		model.NewLog(model.LogInitFetch, "Processing source", map[string]any{
			"original_url":  req.SourceURL,
			"sanitized_url": cleanURL,
		}),
	}

	extractor := r.Find(cleanURL, req.Payload)
	if extractor == nil {
		logs = append(logs, model.NewLog(model.LogFallbackMode, "No matching extractor found, entering raw inspector mode", nil))
		zap.L().Warn("extract: no matching extractor", zap.String("url", cleanURL))
		return &model.ExtractionResult{
			Success:   false,
			BrandSlug: "unknown",
			Models:    []model.ExtractedModel{},
			RawJSON:   inspectRawJSON(req.Payload),
			Errors:    []string{"No matching extractor for this source. Use the raw inspector to review data."},
			Logs:      logs,
		}
	}

	logs = append(logs, model.NewLog(model.LogExtractorMatch,
		"Using "+extractor.Version()+" for "+extractor.Brand(),
		map[string]any{"brand": extractor.Brand()}))

	result := extractor.Extract(req.Payload, cleanURL)
	result.Logs = append(logs, result.Logs...)

	zap.L().Info("extract: parse complete",
		zap.String("brand", result.BrandSlug),
		zap.Bool("success", result.Success),
		zap.Int("models", len(result.Models)),
		zap.Int("variants", result.VariantCount()),
	)
	return result
}

var embeddedJSONRe = []*regexp.Regexp{
	regexp.MustCompile(`(?s)<script[^>]*type="application/json"[^>]*>(.*?)</script>`),
	regexp.MustCompile(`(?s)<script[^>]*id="__NEXT_DATA__"[^>]*>(.*?)</script>`),
}

// inspectRawJSON locates any embedded JSON blob in an unrecognized payload
// so a human can review it. Returns nil when nothing parseable is found.
func inspectRawJSON(payload string) any {
	for _, re := range embeddedJSONRe {
		m := re.FindStringSubmatch(payload)
		if m == nil {
			continue
		}
		var parsed any
		if err := json.Unmarshal([]byte(m[1]), &parsed); err == nil {
			return parsed
		}
	}
	return nil
}

// newProvenance stamps a provenance record for one extracted entity.
func newProvenance(brand, sourceURL, version, externalID string) model.Provenance {
	return model.Provenance{
		SourceURL:     SanitizeURL(sourceURL),
		FetchedAt:     time.Now().UTC(),
		ParserVersion: version,
		ExternalID:    externalID,
		BrandSlug:     brand,
	}
}
