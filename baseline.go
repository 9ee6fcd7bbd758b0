package baseline

import (
	"github.com/jward/baseline/internal/extract"
	"github.com/jward/baseline/internal/sched"
)

// Kind identifies a document's language.
type Kind = extract.Kind

// Language kinds accepted by Analyze and Schedule.
const (
	KindCSS  = extract.KindCSS
	KindJS   = extract.KindJS
	KindJSX  = extract.KindJSX
	KindTS   = extract.KindTS
	KindTSX  = extract.KindTSX
	KindHTML = extract.KindHTML
)

// KindForFile infers the language kind from a file path's extension.
func KindForFile(path string) (Kind, bool) {
	return extract.KindForFile(path)
}

// TieBreak selects how methods shared by Array and String resolve
// when the receiver type is unknown.
type TieBreak = extract.TieBreak

const (
	TieBreakString = extract.TieBreakString
	TieBreakArray  = extract.TieBreakArray
)

// ErrTooLarge is returned by Analyze when a document exceeds the
// configured size limit.
var ErrTooLarge = sched.ErrTooLarge

// ErrTimeout is returned by Analyze when a run exceeds the configured
// deadline.
var ErrTimeout = sched.ErrTimeout

// Document is a unit of analysis: an identifier (typically a file URI),
// the full source text, and its language.
type Document struct {
	ID   string
	Text string
	Kind Kind
}
