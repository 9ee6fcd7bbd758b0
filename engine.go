package baseline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"log/slog"
	"sync"
	"time"

	"github.com/jward/baseline/internal/dataset"
	"github.com/jward/baseline/internal/extract"
	"github.com/jward/baseline/internal/rules"
	"github.com/jward/baseline/internal/sched"
)

// Defaults applied by New when the corresponding option is absent.
const (
	DefaultDebounceDelay   = 300 * time.Millisecond
	DefaultMaxSourceSize   = 1 << 20   // 1 MiB
	DefaultLargeSourceSize = 100 << 10 // 100 KiB
	DefaultMaxCacheEntries = 100
	DefaultTimeout         = 5 * time.Second
	DefaultSoftMemoryLimit = 64 << 20 // 64 MiB
)

// Engine orchestrates the analysis pipeline: size gating, memoized
// tree-sitter extraction, dataset lookup, and debounced scheduling.
// An Engine is safe for concurrent use.
type Engine struct {
	dataset  *dataset.Accessor
	source   dataset.Source
	tables   *extract.Tables
	rulesFS  fs.FS
	limits   sched.Limits
	cache    *sched.Cache[*extract.Result]
	debounce *sched.Debouncer
	mem      *sched.MemTracker
	log      *slog.Logger

	debounceDelay time.Duration
	maxCache      int
	softMem       int64
	async         bool
	tieBreak      TieBreak

	// retained tracks bytes of document text held by pending
	// scheduled runs, per document ID.
	mu       sync.Mutex
	retained map[string]int
}

// Option configures an Engine.
type Option func(*Engine)

// WithDebounceDelay sets the quiet period Schedule waits for before
// analyzing a document. Zero or negative runs immediately.
func WithDebounceDelay(d time.Duration) Option {
	return func(e *Engine) { e.debounceDelay = d }
}

// WithMaxSourceSize sets the hard document size limit in bytes.
// Larger documents are rejected with ErrTooLarge.
func WithMaxSourceSize(n int) Option {
	return func(e *Engine) { e.limits.MaxSourceBytes = n }
}

// WithLargeSourceSize sets the threshold above which a scheduled
// document is analyzed on its own goroutine regardless of
// WithAsyncAnalysis.
func WithLargeSourceSize(n int) Option {
	return func(e *Engine) { e.limits.LargeSourceBytes = n }
}

// WithMaxCacheEntries bounds the extraction memoization cache. Zero
// disables caching.
func WithMaxCacheEntries(n int) Option {
	return func(e *Engine) { e.maxCache = n }
}

// WithTimeout bounds a single analysis run. Zero disables the
// deadline.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) { e.limits.Timeout = d }
}

// WithAsyncAnalysis controls whether scheduled runs execute on their
// own goroutine (the default) or inline on the debounce timer.
func WithAsyncAnalysis(async bool) Option {
	return func(e *Engine) { e.async = async }
}

// WithLogger sets the structured logger. The default discards
// everything.
func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithDatasetJSON loads the compatibility dataset from a JSON file on
// disk instead of the embedded snapshot.
func WithDatasetJSON(path string) Option {
	return func(e *Engine) { e.source = dataset.JSONFile(path) }
}

// WithDatasetBytes loads the compatibility dataset from in-memory
// JSON.
func WithDatasetBytes(data []byte) Option {
	return func(e *Engine) { e.source = dataset.JSONBytes(data) }
}

// WithDatasetDB loads the compatibility dataset from a SQLite
// database file, opened read-only.
func WithDatasetDB(path string) Option {
	return func(e *Engine) { e.source = dataset.SQLiteFile(path) }
}

// WithRulesFS loads Risor rule scripts from fsys at construction time
// to extend the built-in mapping tables. A script error fails New.
func WithRulesFS(fsys fs.FS) Option {
	return func(e *Engine) { e.rulesFS = fsys }
}

// WithTieBreak chooses how Array/String-ambiguous method calls
// resolve. The default biases toward String.
func WithTieBreak(tb TieBreak) Option {
	return func(e *Engine) { e.tieBreak = tb }
}

// WithSoftMemoryLimit sets the advisory limit on document text
// retained by pending scheduled runs. Crossing it logs a warning but
// never blocks work.
func WithSoftMemoryLimit(n int64) Option {
	return func(e *Engine) { e.softMem = n }
}

// New creates an Engine. Rule scripts, when configured, run here; the
// dataset itself is not loaded until Initialize or the first Analyze.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		source: dataset.Embedded(),
		limits: sched.Limits{
			MaxSourceBytes:   DefaultMaxSourceSize,
			LargeSourceBytes: DefaultLargeSourceSize,
			Timeout:          DefaultTimeout,
		},
		debounceDelay: DefaultDebounceDelay,
		maxCache:      DefaultMaxCacheEntries,
		softMem:       DefaultSoftMemoryLimit,
		async:         true,
		tieBreak:      TieBreakString,
		retained:      make(map[string]int),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = slog.New(slog.DiscardHandler)
	}

	tables := extract.Defaults()
	tables.TieBreak = e.tieBreak
	if e.rulesFS != nil {
		if err := rules.Apply(context.Background(), e.rulesFS, tables, e.log); err != nil {
			return nil, fmt.Errorf("baseline: loading rules: %w", err)
		}
	}
	e.tables = tables

	e.dataset = dataset.New(e.source, e.log)
	e.cache = sched.NewCache[*extract.Result](e.maxCache)
	e.debounce = sched.NewDebouncer(e.debounceDelay)
	e.mem = sched.NewMemTracker(e.softMem, e.log)
	return e, nil
}

// Initialize loads the compatibility dataset. Concurrent and repeated
// calls share a single load.
func (e *Engine) Initialize(ctx context.Context) error {
	return e.dataset.Initialize(ctx)
}

// Ready reports whether the dataset has been loaded.
func (e *Engine) Ready() bool {
	return e.dataset.Ready()
}

// Analyze runs the full pipeline on one document and returns its
// diagnostics. Unparseable or empty documents yield no diagnostics
// and no error; oversized documents return ErrTooLarge, and runs past
// the deadline return ErrTimeout.
func (e *Engine) Analyze(ctx context.Context, doc Document) ([]Diagnostic, error) {
	if err := e.limits.ShouldProcess(len(doc.Text)); err != nil {
		return nil, err
	}
	if err := e.dataset.Initialize(ctx); err != nil {
		return nil, err
	}

	res, err := e.extractCached(ctx, doc)
	if err != nil {
		return nil, err
	}
	return buildDiagnostics(e.dataset, res), nil
}

// FeatureOccurrence is one use of a platform feature in a document,
// reported by Features regardless of support status.
type FeatureOccurrence struct {
	FeatureID string `json:"feature_id"`
	Baseline  string `json:"baseline,omitempty"`
	Range     Range  `json:"range"`
}

// Features extracts every feature occurrence from a document,
// including fully supported ones, annotated with its baseline status
// when the dataset knows the feature.
func (e *Engine) Features(ctx context.Context, doc Document) ([]FeatureOccurrence, error) {
	if err := e.limits.ShouldProcess(len(doc.Text)); err != nil {
		return nil, err
	}
	if err := e.dataset.Initialize(ctx); err != nil {
		return nil, err
	}

	res, err := e.extractCached(ctx, doc)
	if err != nil {
		return nil, err
	}

	var out []FeatureOccurrence
	for _, id := range res.Features {
		var status string
		if rec, ok := e.dataset.Feature(id); ok {
			status = string(rec.Status)
		}
		for _, rng := range res.Locations[id] {
			out = append(out, FeatureOccurrence{FeatureID: id, Baseline: status, Range: rng})
		}
	}
	return out, nil
}

// Schedule queues doc for analysis after the debounce quiet period,
// delivering results through publish. Rapid calls for the same
// document ID collapse into one run of the latest text. On failure
// the previous diagnostics are retained: publish is not called.
func (e *Engine) Schedule(doc Document, publish func(id string, diags []Diagnostic)) {
	if err := e.limits.ShouldProcess(len(doc.Text)); err != nil {
		e.log.Warn("skipping oversized document", "id", doc.ID, "bytes", len(doc.Text))
		return
	}
	e.retain(doc.ID, len(doc.Text))

	run := func() {
		defer e.release(doc.ID)
		diags, err := e.Analyze(context.Background(), doc)
		if err != nil {
			e.log.Warn("scheduled analysis failed", "id", doc.ID, "error", err)
			return
		}
		publish(doc.ID, diags)
	}

	e.debounce.Trigger(doc.ID, func() {
		if e.async || e.limits.IsLarge(len(doc.Text)) {
			go run()
			return
		}
		run()
	})
}

// Flush runs any pending scheduled analysis for id immediately.
func (e *Engine) Flush(id string) {
	e.debounce.Flush(id)
}

// Cancel drops any pending scheduled analysis for id, for example
// when a document is closed.
func (e *Engine) Cancel(id string) {
	e.debounce.Cancel(id)
	e.release(id)
}

// Close cancels all pending scheduled work and clears the cache.
func (e *Engine) Close() error {
	e.debounce.Stop()
	e.cache.Purge()
	e.mu.Lock()
	for id, n := range e.retained {
		e.mem.Add(int64(-n))
		delete(e.retained, id)
	}
	e.mu.Unlock()
	return nil
}

// extractCached memoizes extraction by content hash and language, so
// re-analyzing unchanged text skips the parser entirely.
func (e *Engine) extractCached(ctx context.Context, doc Document) (*extract.Result, error) {
	sum := sha256.Sum256([]byte(doc.Text))
	key := string(doc.Kind) + ":" + hex.EncodeToString(sum[:])

	if res, ok := e.cache.Get(key); ok {
		return res, nil
	}
	res, err := sched.WithTimeout(ctx, e.limits, func(ctx context.Context) (*extract.Result, error) {
		return e.extract(ctx, doc)
	})
	if err != nil {
		return nil, err
	}
	e.cache.Put(key, res)
	return res, nil
}

func (e *Engine) extract(ctx context.Context, doc Document) (*extract.Result, error) {
	src := []byte(doc.Text)
	switch doc.Kind {
	case KindCSS:
		return extract.Stylesheet(ctx, src, e.tables), nil
	case KindHTML:
		return extract.Markup(ctx, src, e.tables), nil
	case KindJS, KindJSX, KindTS, KindTSX:
		return extract.Script(ctx, src, doc.Kind, e.tables), nil
	default:
		return nil, fmt.Errorf("baseline: unsupported document kind %q", doc.Kind)
	}
}

func (e *Engine) retain(id string, n int) {
	e.mu.Lock()
	prev := e.retained[id]
	e.retained[id] = n
	e.mu.Unlock()
	e.mem.Add(int64(n - prev))
}

func (e *Engine) release(id string) {
	e.mu.Lock()
	n, ok := e.retained[id]
	if ok {
		delete(e.retained, id)
	}
	e.mu.Unlock()
	if ok {
		e.mem.Add(int64(-n))
	}
}
