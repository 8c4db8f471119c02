package model

import "time"

// LogEvent tags an entry in the extraction audit trail.
type LogEvent string

const (
	LogInitFetch      LogEvent = "INIT_FETCH"
	LogParseSuccess   LogEvent = "PARSE_SUCCESS"
	LogParseFail      LogEvent = "PARSE_FAIL"
	LogExtractorMatch LogEvent = "EXTRACTOR_MATCH"
	LogFallbackMode   LogEvent = "FALLBACK_MODE"
	LogAssetFound     LogEvent = "ASSET_FOUND"
)

// ExtractorLog is one append-only audit entry recording what an extraction
// run tried. Entries are never mutated after creation.
type ExtractorLog struct {
	Event     LogEvent       `json:"event"`
	Message   string         `json:"message"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data,omitempty"`
}

// NewLog creates a timestamped audit entry.
func NewLog(event LogEvent, message string, data map[string]any) ExtractorLog {
	return ExtractorLog{Event: event, Message: message, Timestamp: time.Now().UTC(), Data: data}
}
