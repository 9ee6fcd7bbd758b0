// Package dataset loads the static web-feature compatibility table and
// answers point lookups against it. The table is loaded exactly once per
// Accessor (concurrent initializers share one in-flight load) and is
// immutable afterwards; nothing downstream of a failed load can function,
// so load failure is the one fatal error in the analysis core.
package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Status is a feature's baseline compatibility status.
type Status string

const (
	// StatusWidely means broad cross-engine support ("high").
	StatusWidely Status = "high"
	// StatusLimited means newly available / partial support ("low").
	StatusLimited Status = "low"
	// StatusUnsupported means the feature is not baseline at all.
	StatusUnsupported Status = "false"
)

// FeatureRecord is one immutable row of the compatibility table.
type FeatureRecord struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Status   Status `json:"baseline"`
	LowDate  string `json:"baseline_low_date,omitempty"`
	HighDate string `json:"baseline_high_date,omitempty"`
	SpecURL  string `json:"spec_url,omitempty"`
	DocURL   string `json:"doc_url,omitempty"`
}

// LoadError is the fatal error returned when the compatibility table
// cannot be loaded.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("dataset: loading %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Source supplies the raw feature records. Implementations: [JSONSource]
// (embedded or on-disk JSON) and [SQLiteSource] (versioned database file).
type Source interface {
	// Name labels the source in errors and logs.
	Name() string
	// Load reads all feature records.
	Load(ctx context.Context) ([]FeatureRecord, error)
}

// Accessor is the initialize-once/query-many handle to the table.
type Accessor struct {
	source Source
	log    *slog.Logger

	group singleflight.Group

	mu      sync.RWMutex
	records map[string]*FeatureRecord
}

// New creates an Accessor over the given source. The table is not loaded
// until [Accessor.Initialize]. A nil logger discards log output.
func New(source Source, logger *slog.Logger) *Accessor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Accessor{source: source, log: logger}
}

// Initialize loads the table. Safe to call repeatedly and concurrently:
// callers arriving during an in-flight load share it, and a completed load
// is never repeated. Returns a *LoadError on failure.
func (a *Accessor) Initialize(ctx context.Context) error {
	if a.Ready() {
		return nil
	}
	_, err, _ := a.group.Do("load", func() (any, error) {
		if a.Ready() {
			return nil, nil
		}
		records, err := a.source.Load(ctx)
		if err != nil {
			return nil, &LoadError{Source: a.source.Name(), Err: err}
		}

		table := make(map[string]*FeatureRecord, len(records))
		for i := range records {
			rec := &records[i]
			if rec.ID == "" {
				a.log.Warn("dataset: skipping record with empty id", "name", rec.Name)
				continue
			}
			table[rec.ID] = rec
		}

		a.mu.Lock()
		a.records = table
		a.mu.Unlock()
		a.log.Debug("dataset: loaded", "source", a.source.Name(), "features", len(table))
		return nil, nil
	})
	return err
}

// Ready reports whether the table has been loaded.
func (a *Accessor) Ready() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.records != nil
}

// Len returns the number of loaded feature records.
func (a *Accessor) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.records)
}

// Feature returns the record for a canonical feature ID. Unknown, empty,
// and pre-initialization lookups return (nil, false); invalid input is
// logged, never fatal.
func (a *Accessor) Feature(id string) (*FeatureRecord, bool) {
	if id == "" {
		a.log.Warn("dataset: lookup with empty feature id")
		return nil, false
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	rec, ok := a.records[id]
	return rec, ok
}

// BaselineSupported reports whether a feature passes the baseline check.
// Limited ("low") availability still counts as supported; only
// hard-unsupported and unknown IDs are false.
func (a *Accessor) BaselineSupported(id string) bool {
	rec, ok := a.Feature(id)
	if !ok {
		return false
	}
	return rec.Status != StatusUnsupported
}
