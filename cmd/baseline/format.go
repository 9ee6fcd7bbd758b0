package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/jward/baseline"
)

const (
	formatJSON = "json"
	formatText = "text"
)

func validateFormat(format string) error {
	switch format {
	case formatJSON, formatText:
		return nil
	default:
		return fmt.Errorf("invalid format %q (want json or text)", format)
	}
}

// fileDiagnostics pairs a file with its findings for JSON output.
type fileDiagnostics struct {
	File        string                `json:"file"`
	Diagnostics []baseline.Diagnostic `json:"diagnostics"`
}

// outputResults prints diagnostics per file and returns the total
// finding count.
func outputResults(w io.Writer, format string, results map[string][]baseline.Diagnostic) int {
	files := make([]string, 0, len(results))
	for f := range results {
		files = append(files, f)
	}
	sort.Strings(files)

	total := 0
	if format == formatJSON {
		out := make([]fileDiagnostics, 0, len(files))
		for _, f := range files {
			diags := results[f]
			total += len(diags)
			if len(diags) == 0 {
				continue
			}
			out = append(out, fileDiagnostics{File: f, Diagnostics: diags})
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			fmt.Fprintf(os.Stderr, "Error: encoding output: %s\n", err)
		}
		return total
	}

	for _, f := range files {
		for _, d := range results[f] {
			total++
			fmt.Fprintf(w, "%s:%d:%d: %s: %s [%s]\n",
				f, d.Range.StartLine+1, d.Range.StartCol+1,
				severityLabel(d.Severity), d.Message, d.FeatureID)
		}
	}
	return total
}

// outputFeatures prints feature occurrences for a single file.
func outputFeatures(w io.Writer, format string, occs []baseline.FeatureOccurrence) error {
	if format == formatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(occs)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FEATURE\tBASELINE\tLINE\tCOL")
	for _, o := range occs {
		status := o.Baseline
		if status == "" {
			status = "unknown"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n",
			o.FeatureID, status, o.Range.StartLine+1, o.Range.StartCol+1)
	}
	return tw.Flush()
}

func severityLabel(s baseline.Severity) string {
	switch s {
	case baseline.SeverityError:
		return "error"
	case baseline.SeverityWarning:
		return "warning"
	case baseline.SeverityInformation:
		return "info"
	case baseline.SeverityHint:
		return "hint"
	default:
		return "unknown"
	}
}
