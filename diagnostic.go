package baseline

import (
	"github.com/jward/baseline/internal/dataset"
	"github.com/jward/baseline/internal/extract"
)

// Range is a half-open source span with zero-based line and column
// numbers.
type Range = extract.Range

// Severity follows LSP numbering: lower is more severe.
type Severity int

const (
	SeverityError       Severity = 1
	SeverityWarning     Severity = 2
	SeverityInformation Severity = 3
	SeverityHint        Severity = 4
)

// Diagnostic flags one occurrence of a feature with incomplete
// browser support.
type Diagnostic struct {
	FeatureID string   `json:"feature_id"`
	Message   string   `json:"message"`
	Severity  Severity `json:"severity"`
	Range     Range    `json:"range"`
	DocURL    string   `json:"doc_url,omitempty"`
}

// buildDiagnostics turns an extraction result into diagnostics.
// Features missing from the dataset and features supported everywhere
// produce nothing. Output order follows first appearance in the
// document, with one diagnostic per occurrence.
func buildDiagnostics(ds *dataset.Accessor, res *extract.Result) []Diagnostic {
	var out []Diagnostic
	for _, id := range res.Features {
		rec, ok := ds.Feature(id)
		if !ok || rec.Status == dataset.StatusWidely {
			continue
		}

		name := rec.Name
		if name == "" {
			name = rec.ID
		}

		var msg string
		var sev Severity
		switch rec.Status {
		case dataset.StatusUnsupported:
			msg = name + " (not supported by all browsers)"
			sev = SeverityWarning
		case dataset.StatusLimited:
			msg = name + " (limited browser support)"
			sev = SeverityInformation
		default:
			continue
		}

		for _, rng := range res.Locations[id] {
			out = append(out, Diagnostic{
				FeatureID: rec.ID,
				Message:   msg,
				Severity:  sev,
				Range:     rng,
				DocURL:    rec.DocURL,
			})
		}
	}
	return out
}
