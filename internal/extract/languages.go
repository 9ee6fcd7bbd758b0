package extract

import (
	"path/filepath"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/css"
	"github.com/smacker/go-tree-sitter/html"
	"github.com/smacker/go-tree-sitter/javascript"
	ts "github.com/smacker/go-tree-sitter/typescript/typescript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
)

// Kind identifies which language family (and grammar) a source unit uses.
type Kind string

const (
	KindCSS  Kind = "css"
	KindJS   Kind = "javascript"
	KindJSX  Kind = "javascriptreact"
	KindTS   Kind = "typescript"
	KindTSX  Kind = "typescriptreact"
	KindHTML Kind = "html"
)

// extToKind maps file extensions to language kinds.
var extToKind = map[string]Kind{
	".css":  KindCSS,
	".js":   KindJS,
	".mjs":  KindJS,
	".cjs":  KindJS,
	".jsx":  KindJSX,
	".ts":   KindTS,
	".mts":  KindTS,
	".cts":  KindTS,
	".tsx":  KindTSX,
	".html": KindHTML,
	".htm":  KindHTML,
}

// Grammars are lazily initialized on first use.
var (
	kindToGrammar map[Kind]*sitter.Language
	grammarsOnce  sync.Once
)

func initGrammars() {
	grammarsOnce.Do(func() {
		jsLang := javascript.GetLanguage()
		kindToGrammar = map[Kind]*sitter.Language{
			KindCSS:  css.GetLanguage(),
			KindJS:   jsLang,
			KindJSX:  jsLang, // the javascript grammar includes JSX
			KindTS:   ts.GetLanguage(),
			KindTSX:  tsx.GetLanguage(),
			KindHTML: html.GetLanguage(),
		}
	})
}

// KindForFile returns the language kind for a file path based on its
// extension. Returns ("", false) if the extension is not recognized.
func KindForFile(path string) (Kind, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	kind, ok := extToKind[ext]
	return kind, ok
}

// grammarFor returns the tree-sitter grammar for a language kind.
func grammarFor(kind Kind) (*sitter.Language, bool) {
	initGrammars()
	lang, ok := kindToGrammar[kind]
	return lang, ok
}
