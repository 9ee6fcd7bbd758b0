package extract

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// Tree-sitter CSS node types. Reference:
// https://github.com/tree-sitter/tree-sitter-css
const (
	cssNodeDeclaration  = "declaration"
	cssNodePropertyName = "property_name"
	cssNodeAtRule       = "at_rule"
	cssNodeAtKeyword    = "at_keyword"
)

// cssStatementKeywords maps the grammar's named at-rule statement nodes to
// their keyword. At-rules the grammar does not special-case surface as
// generic at_rule nodes and are handled by their at_keyword token instead.
var cssStatementKeywords = map[string]string{
	"media_statement":     "media",
	"keyframes_statement": "keyframes",
	"import_statement":    "import",
	"charset_statement":   "charset",
	"namespace_statement": "namespace",
	"supports_statement":  "supports",
	"font_face_statement": "font-face",
}

// vendorPrefixes are stripped from property names and at-rule keywords so
// prefixed and unprefixed variants collapse to the same feature ID.
var vendorPrefixes = []string{"-webkit-", "-moz-", "-ms-", "-o-"}

// stripVendorPrefix removes a leading vendor-prefix token. Two-dash custom
// property names are left untouched.
func stripVendorPrefix(name string) string {
	if strings.HasPrefix(name, "--") {
		return name
	}
	for _, prefix := range vendorPrefixes {
		if strings.HasPrefix(name, prefix) {
			return name[len(prefix):]
		}
	}
	return name
}

// Stylesheet extracts web-platform features from CSS source. Every
// declaration maps to css.properties.<name> (vendor prefix stripped,
// two-dash names collapsed to the custom-property feature) and every
// at-rule to css.at-rules.<keyword>. The walk covers the full tree, so
// nested rules and at-rule bodies are included. Unparseable input yields
// an empty Result.
//
// A nil tables uses Defaults().
func Stylesheet(ctx context.Context, src []byte, tables *Tables) *Result {
	if tables == nil {
		tables = Defaults()
	}
	res := newResult()

	lang, _ := grammarFor(KindCSS)
	tree, err := parse(ctx, lang, src)
	if err != nil || tree == nil {
		return res
	}
	defer tree.Close()

	walkCSS(tree.RootNode(), src, res, tables)
	return res
}

func walkCSS(node *sitter.Node, src []byte, res *Result, tables *Tables) {
	if node == nil {
		return
	}

	switch nodeType := node.Type(); nodeType {
	case cssNodeDeclaration:
		if nameNode := firstChildOfType(node, cssNodePropertyName); nameNode != nil {
			name := strings.ToLower(nodeText(nameNode, src))
			if strings.HasPrefix(name, "--") {
				// All custom properties share one feature in the dataset.
				res.record("css.properties.custom-property", nameNode)
			} else if name != "" {
				res.record("css.properties."+stripVendorPrefix(name), nameNode)
			}
		}

	case cssNodeAtRule:
		if kwNode := firstChildOfType(node, cssNodeAtKeyword); kwNode != nil {
			keyword := stripVendorPrefix(strings.ToLower(strings.TrimPrefix(nodeText(kwNode, src), "@")))
			if keyword != "" {
				res.record(atRuleFeature(keyword, tables), kwNode)
			}
		}

	default:
		if keyword, ok := cssStatementKeywords[nodeType]; ok {
			res.record(atRuleFeature(keyword, tables), atKeywordToken(node))
		}
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		walkCSS(node.Child(i), src, res, tables)
	}
}

// atRuleFeature maps an at-rule keyword through the override table, else
// verbatim to css.at-rules.<keyword>.
func atRuleFeature(keyword string, tables *Tables) string {
	if id, ok := tables.AtRules[keyword]; ok {
		return id
	}
	return "css.at-rules." + keyword
}

// atKeywordToken returns the leading @keyword token of a named at-rule
// statement node, falling back to the statement node itself so the range
// still points at the rule when the grammar shape differs.
func atKeywordToken(node *sitter.Node) *sitter.Node {
	if node.ChildCount() > 0 {
		first := node.Child(0)
		if first != nil && strings.HasPrefix(first.Type(), "@") {
			return first
		}
	}
	return node
}

// firstChildOfType returns the first direct child with the given node type.
func firstChildOfType(node *sitter.Node, nodeType string) *sitter.Node {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child != nil && child.Type() == nodeType {
			return child
		}
	}
	return nil
}
