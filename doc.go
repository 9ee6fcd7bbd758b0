// Package baseline analyzes CSS, JavaScript, TypeScript, and HTML
// sources for platform features with incomplete browser support.
//
// The pipeline has three stages. Extraction parses a document with
// tree-sitter and walks the syntax tree for feature usages: CSS
// property declarations and at-rules, JavaScript member-access chains
// and global calls, HTML elements and attributes. Each usage maps to a
// stable feature ID through built-in tables that Risor rule scripts
// can extend. Diagnosis looks every extracted ID up in a bundled
// compatibility dataset and emits a diagnostic for features that are
// not yet supported by all browsers, or only recently so. Scheduling
// debounces rapid re-analysis of the same document and bounds work
// with size limits, a memoization cache, and a per-run timeout.
//
// Basic usage:
//
//	eng, err := baseline.New()
//	if err != nil { ... }
//	if err := eng.Initialize(ctx); err != nil { ... }
//	diags, err := eng.Analyze(ctx, baseline.Document{
//		ID:   "file:///app/styles.css",
//		Text: ".card { gap: 1rem }",
//		Kind: baseline.KindCSS,
//	})
//
// For editor integrations, Schedule debounces keystrokes and delivers
// results through a callback; AnalyzeAll fans a batch of documents out
// over a worker pool.
package baseline
