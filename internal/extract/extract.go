// Package extract turns raw source text into the set of web-platform
// features it uses. Three extractors cover the three language families:
// [Stylesheet] for CSS, [Script] for JavaScript/TypeScript (including JSX),
// and [Markup] for HTML. Each extractor is stateless: it parses its input
// with tree-sitter, walks the tree, and returns a Result mapping canonical
// feature IDs to source ranges. Malformed input degrades to an empty Result,
// never an error.
package extract

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"
)

// Range is a half-open source region with 0-based lines and columns.
type Range struct {
	StartLine uint32 `json:"startLine"`
	StartCol  uint32 `json:"startCol"`
	EndLine   uint32 `json:"endLine"`
	EndCol    uint32 `json:"endCol"`
}

// Result holds the features extracted from one source unit.
//
// Features lists unique canonical feature IDs in first-occurrence order.
// Locations records every occurrence's range per ID; an ID may carry fewer
// ranges than occurrences when position info was unavailable, but it is
// never dropped from Features for that reason.
type Result struct {
	Features  []string           `json:"features"`
	Locations map[string][]Range `json:"locations"`
}

func newResult() *Result {
	return &Result{
		Features:  []string{},
		Locations: make(map[string][]Range),
	}
}

// record adds a feature occurrence. The ID enters Features once, on its
// first occurrence; the node's range is appended for every occurrence.
// A nil node drops only the range, not the feature.
func (r *Result) record(id string, node *sitter.Node) {
	if id == "" {
		return
	}
	if _, seen := r.Locations[id]; !seen {
		r.Features = append(r.Features, id)
		r.Locations[id] = []Range{}
	}
	if node == nil {
		return
	}
	r.Locations[id] = append(r.Locations[id], nodeRange(node))
}

func nodeRange(node *sitter.Node) Range {
	start := node.StartPoint()
	end := node.EndPoint()
	return Range{
		StartLine: start.Row,
		StartCol:  start.Column,
		EndLine:   end.Row,
		EndCol:    end.Column,
	}
}

// parse runs a tree-sitter parse of src with the given grammar. The caller
// owns the returned tree and must Close it. A nil tree with nil error means
// there was nothing to parse.
func parse(ctx context.Context, lang *sitter.Language, src []byte) (*sitter.Tree, error) {
	if len(src) == 0 {
		return nil, nil
	}
	p := sitter.NewParser()
	p.SetLanguage(lang)
	return p.ParseCtx(ctx, nil, src)
}

// nodeText returns the source text of a node, or "" for a nil node.
func nodeText(node *sitter.Node, src []byte) string {
	if node == nil {
		return ""
	}
	return node.Content(src)
}
