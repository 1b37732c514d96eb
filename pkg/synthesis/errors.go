package synthesis

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidInput is returned for empty or malformed queries and parameters.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidSource marks a source whose scores cannot be normalized.
	ErrInvalidSource = errors.New("invalid source")
	// ErrNoViableSources is returned when every candidate source was rejected.
	ErrNoViableSources = errors.New("no viable sources")
	// ErrSourceNotFound is returned by registry lookups.
	ErrSourceNotFound = errors.New("source not found")
	// ErrSessionBusy is returned when a session stays locked by another writer.
	ErrSessionBusy = errors.New("session busy")
)

// SourceError names the source and field that failed validation.
type SourceError struct {
	SourceID string  `json:"source_id"`
	Field    string  `json:"field"`
	Value    float64 `json:"-"`
	Reason   string  `json:"reason"`
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("invalid source %q: field %s %s", e.SourceID, e.Field, e.Reason)
}

func (e *SourceError) Unwrap() error { return ErrInvalidSource }

// NoViableSourcesError carries the per-source rejections that emptied the candidate set.
type NoViableSourcesError struct {
	Excluded []*SourceError
}

func (e *NoViableSourcesError) Error() string {
	if len(e.Excluded) == 0 {
		return "no viable sources: registry is empty"
	}
	ids := make([]string, 0, len(e.Excluded))
	for _, ex := range e.Excluded {
		ids = append(ids, ex.SourceID)
	}
	return fmt.Sprintf("no viable sources: all %d rejected (%s)", len(e.Excluded), strings.Join(ids, ", "))
}

func (e *NoViableSourcesError) Unwrap() error { return ErrNoViableSources }
