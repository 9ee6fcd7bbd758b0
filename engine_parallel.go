package baseline

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// AnalyzeAll analyzes a batch of documents over a worker pool and
// returns diagnostics keyed by document ID. Oversized documents are
// logged and skipped rather than failing the batch; any other error
// cancels remaining work and is returned.
func (e *Engine) AnalyzeAll(ctx context.Context, docs []Document) (map[string][]Diagnostic, error) {
	if err := e.dataset.Initialize(ctx); err != nil {
		return nil, err
	}

	workers := runtime.NumCPU()
	if workers > len(docs) {
		workers = len(docs)
	}
	if workers < 1 {
		workers = 1
	}

	var mu sync.Mutex
	results := make(map[string][]Diagnostic, len(docs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, doc := range docs {
		doc := doc
		g.Go(func() error {
			diags, err := e.Analyze(ctx, doc)
			if err != nil {
				if errors.Is(err, ErrTooLarge) {
					e.log.Warn("skipping oversized document", "id", doc.ID, "bytes", len(doc.Text))
					return nil
				}
				return err
			}
			mu.Lock()
			results[doc.ID] = diags
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
