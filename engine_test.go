package baseline

import (
	"context"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testDataset pins statuses so assertions do not drift with the bundled
// snapshot.
var testDataset = []byte(`[
  {"id": "css.properties.display", "name": "display", "baseline": "high"},
  {"id": "css.properties.transform", "name": "transform", "baseline": true},
  {"id": "css.properties.gap", "name": "gap", "baseline": false},
  {"id": "api.Clipboard.writeText", "name": "Clipboard.writeText()", "baseline": "low", "doc_url": "https://developer.mozilla.org/docs/Web/API/Clipboard/writeText"},
  {"id": "api.fetch", "name": "fetch()", "baseline": "high"},
  {"id": "html.elements.dialog", "name": "<dialog>", "baseline": false},
  {"id": "html.elements.p", "name": "<p>", "baseline": "high"},
  {"id": "javascript.builtins.Array.includes", "name": "Array.prototype.includes()", "baseline": false},
  {"id": "javascript.builtins.String.includes", "name": "String.prototype.includes()", "baseline": "high"}
]`)

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	opts = append([]Option{WithDatasetBytes(testDataset)}, opts...)
	e, err := New(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { e.Close() })
	return e
}

func TestNew_Defaults(t *testing.T) {
	e := newTestEngine(t)
	assert.False(t, e.Ready())

	require.NoError(t, e.Initialize(context.Background()))
	assert.True(t, e.Ready())
}

func TestAnalyze_CSS(t *testing.T) {
	e := newTestEngine(t)

	diags, err := e.Analyze(context.Background(), Document{
		ID:   "file:///app/styles.css",
		Text: ".c{display:flex;-webkit-transform:scale(1);gap:1rem}",
		Kind: KindCSS,
	})
	require.NoError(t, err)

	// display and transform are widely supported; only gap is flagged.
	require.Len(t, diags, 1)
	d := diags[0]
	assert.Equal(t, "css.properties.gap", d.FeatureID)
	assert.Equal(t, "gap (not supported by all browsers)", d.Message)
	assert.Equal(t, SeverityWarning, d.Severity)
	assert.Equal(t, Range{StartLine: 0, StartCol: 43, EndLine: 0, EndCol: 46}, d.Range)
}

func TestAnalyze_JavaScript(t *testing.T) {
	e := newTestEngine(t)

	diags, err := e.Analyze(context.Background(), Document{
		ID:   "file:///app/main.js",
		Text: "navigator.clipboard.writeText(\"hi\");\nfetch(\"/a\");\nfetch(\"/b\");",
		Kind: KindJS,
	})
	require.NoError(t, err)

	// fetch is widely supported; writeText is limited.
	require.Len(t, diags, 1)
	d := diags[0]
	assert.Equal(t, "api.Clipboard.writeText", d.FeatureID)
	assert.Equal(t, "Clipboard.writeText() (limited browser support)", d.Message)
	assert.Equal(t, SeverityInformation, d.Severity)
	assert.NotEmpty(t, d.DocURL)
}

func TestAnalyze_HTML(t *testing.T) {
	e := newTestEngine(t)

	diags, err := e.Analyze(context.Background(), Document{
		ID:   "file:///app/index.html",
		Text: "<dialog open><p>Hi</p></dialog>",
		Kind: KindHTML,
	})
	require.NoError(t, err)

	// p is widely supported, dialog.open is unknown to the test dataset;
	// the dialog element itself is the only finding.
	require.Len(t, diags, 1)
	assert.Equal(t, "html.elements.dialog", diags[0].FeatureID)
	assert.Equal(t, SeverityWarning, diags[0].Severity)
}

func TestAnalyze_Idempotent(t *testing.T) {
	e := newTestEngine(t)
	doc := Document{ID: "a.css", Text: ".x{gap:0}", Kind: KindCSS}

	first, err := e.Analyze(context.Background(), doc)
	require.NoError(t, err)
	second, err := e.Analyze(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestAnalyze_TooLarge(t *testing.T) {
	e := newTestEngine(t, WithMaxSourceSize(8))

	_, err := e.Analyze(context.Background(), Document{
		ID:   "big.css",
		Text: ".x{gap:0;color:red}",
		Kind: KindCSS,
	})
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestAnalyze_EmptyAndUnparseable(t *testing.T) {
	e := newTestEngine(t)

	diags, err := e.Analyze(context.Background(), Document{ID: "e.css", Text: "", Kind: KindCSS})
	require.NoError(t, err)
	assert.Empty(t, diags)

	diags, err = e.Analyze(context.Background(), Document{ID: "g.js", Text: "%%%%", Kind: KindJS})
	require.NoError(t, err)
	assert.Empty(t, diags)
}

func TestAnalyze_UnknownKind(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Analyze(context.Background(), Document{ID: "x.cob", Text: "y", Kind: Kind("cobol")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported document kind")
}

func TestWithTieBreak_Array(t *testing.T) {
	e := newTestEngine(t, WithTieBreak(TieBreakArray))

	diags, err := e.Analyze(context.Background(), Document{
		ID:   "m.js",
		Text: "xs.includes(y);",
		Kind: KindJS,
	})
	require.NoError(t, err)

	// Array.includes is unsupported in the test dataset, so the array
	// bias surfaces a warning the default string bias would not.
	require.Len(t, diags, 1)
	assert.Equal(t, "javascript.builtins.Array.includes", diags[0].FeatureID)
}

func TestSchedule_CollapsesAndPublishes(t *testing.T) {
	e := newTestEngine(t, WithDebounceDelay(20*time.Millisecond))

	type published struct {
		id    string
		diags []Diagnostic
	}
	got := make(chan published, 8)
	publish := func(id string, diags []Diagnostic) {
		got <- published{id, diags}
	}

	// Simulated keystrokes; only the final text should be analyzed.
	e.Schedule(Document{ID: "live.css", Text: ".x{display:flex}", Kind: KindCSS}, publish)
	e.Schedule(Document{ID: "live.css", Text: ".x{display:flex;ga}", Kind: KindCSS}, publish)
	e.Schedule(Document{ID: "live.css", Text: ".x{display:flex;gap:1rem}", Kind: KindCSS}, publish)

	select {
	case p := <-got:
		assert.Equal(t, "live.css", p.id)
		require.Len(t, p.diags, 1)
		assert.Equal(t, "css.properties.gap", p.diags[0].FeatureID)
	case <-time.After(2 * time.Second):
		t.Fatal("no publish before deadline")
	}

	// No further publishes for the collapsed triggers.
	select {
	case p := <-got:
		t.Fatalf("unexpected second publish: %+v", p)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSchedule_SkipsOversized(t *testing.T) {
	e := newTestEngine(t, WithDebounceDelay(time.Millisecond), WithMaxSourceSize(4))

	got := make(chan struct{}, 1)
	e.Schedule(Document{ID: "big.css", Text: ".x{gap:0}", Kind: KindCSS},
		func(string, []Diagnostic) { got <- struct{}{} })

	select {
	case <-got:
		t.Fatal("oversized document must not publish")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSchedule_RetainsOnFailure(t *testing.T) {
	e := newTestEngine(t, WithDebounceDelay(time.Millisecond))

	got := make(chan struct{}, 1)
	e.Schedule(Document{ID: "x.unknown", Text: "y", Kind: Kind("cobol")},
		func(string, []Diagnostic) { got <- struct{}{} })

	select {
	case <-got:
		t.Fatal("failed analysis must not publish")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestCancel_DropsPending(t *testing.T) {
	e := newTestEngine(t, WithDebounceDelay(20*time.Millisecond))

	got := make(chan struct{}, 1)
	e.Schedule(Document{ID: "c.css", Text: ".x{gap:0}", Kind: KindCSS},
		func(string, []Diagnostic) { got <- struct{}{} })
	e.Cancel("c.css")

	select {
	case <-got:
		t.Fatal("cancelled analysis must not publish")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestAnalyzeAll(t *testing.T) {
	e := newTestEngine(t, WithMaxSourceSize(32))

	docs := []Document{
		{ID: "a.css", Text: ".x{gap:1rem}", Kind: KindCSS},
		{ID: "b.html", Text: "<dialog></dialog>", Kind: KindHTML},
		{ID: "c.js", Text: `fetch("/ok");`, Kind: KindJS},
		{ID: "d.css", Text: ".y{display:grid;color:red;margin:0;padding:0;inset:0;gap:0}...", Kind: KindCSS},
	}

	results, err := e.AnalyzeAll(context.Background(), docs)
	require.NoError(t, err)

	require.Contains(t, results, "a.css")
	require.Len(t, results["a.css"], 1)
	assert.Equal(t, "css.properties.gap", results["a.css"][0].FeatureID)

	require.Contains(t, results, "b.html")
	assert.Equal(t, "html.elements.dialog", results["b.html"][0].FeatureID)

	// Fully supported usage yields an empty (but present) entry.
	require.Contains(t, results, "c.js")
	assert.Empty(t, results["c.js"])

	// The oversized document is skipped, not fatal.
	assert.NotContains(t, results, "d.css")
}

func TestNew_RulesExtendMapping(t *testing.T) {
	fsys := fstest.MapFS{
		"app.risor": &fstest.MapFile{Data: []byte(`map_global("appFetch", "api.Clipboard.writeText")`)},
	}
	e := newTestEngine(t, WithRulesFS(fsys))

	diags, err := e.Analyze(context.Background(), Document{
		ID:   "r.js",
		Text: "appFetch();",
		Kind: KindJS,
	})
	require.NoError(t, err)
	require.Len(t, diags, 1)
	assert.Equal(t, "api.Clipboard.writeText", diags[0].FeatureID)
}

func TestNew_RulesError(t *testing.T) {
	fsys := fstest.MapFS{
		"bad.risor": &fstest.MapFile{Data: []byte(`map_global("half")`)},
	}
	_, err := New(WithDatasetBytes(testDataset), WithRulesFS(fsys))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.risor")
}

func TestFeatures_ListsAllOccurrences(t *testing.T) {
	e := newTestEngine(t)

	occs, err := e.Features(context.Background(), Document{
		ID:   "f.css",
		Text: ".x{display:flex;gap:1rem}",
		Kind: KindCSS,
	})
	require.NoError(t, err)

	require.Len(t, occs, 2)
	assert.Equal(t, "css.properties.display", occs[0].FeatureID)
	assert.Equal(t, "high", occs[0].Baseline)
	assert.Equal(t, "css.properties.gap", occs[1].FeatureID)
	assert.Equal(t, "false", occs[1].Baseline)
}

func TestKindForFile_Exported(t *testing.T) {
	kind, ok := KindForFile("a/b.tsx")
	require.True(t, ok)
	assert.Equal(t, KindTSX, kind)

	_, ok = KindForFile("a/b.rs")
	assert.False(t, ok)
}
