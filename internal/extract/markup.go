package extract

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// Tree-sitter HTML node types. Reference:
// https://github.com/tree-sitter/tree-sitter-html
const (
	htmlNodeElement       = "element"
	htmlNodeScriptElement = "script_element"
	htmlNodeStyleElement  = "style_element"
	htmlNodeStartTag      = "start_tag"
	htmlNodeSelfClosing   = "self_closing_tag"
	htmlNodeTagName       = "tag_name"
	htmlNodeAttribute     = "attribute"
	htmlNodeAttributeName = "attribute_name"
)

// Markup extracts web-platform features from HTML source. Every explicit
// element maps its tag name unconditionally to html.elements.<tag> —
// unrecognized and custom-element names included. Attributes outside the
// common-attribute denylist map to an element-scoped ID for notable
// (element, attribute) pairs, else to html.global_attributes.<attr>.
// Comments, text, and doctype never produce features; the tolerant grammar
// synthesizes no implicit wrapper elements, so empty or fragment input
// yields exactly its explicit elements.
//
// A nil tables uses Defaults().
func Markup(ctx context.Context, src []byte, tables *Tables) *Result {
	if tables == nil {
		tables = Defaults()
	}
	res := newResult()

	lang, _ := grammarFor(KindHTML)
	tree, err := parse(ctx, lang, src)
	if err != nil || tree == nil {
		return res
	}
	defer tree.Close()

	walkHTML(tree.RootNode(), src, res, tables)
	return res
}

func walkHTML(node *sitter.Node, src []byte, res *Result, tables *Tables) {
	if node == nil {
		return
	}

	switch node.Type() {
	case htmlNodeElement, htmlNodeScriptElement, htmlNodeStyleElement:
		recordElement(node, src, res, tables)
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		walkHTML(node.Child(i), src, res, tables)
	}
}

// recordElement maps one element's tag and attributes. The tag feature's
// range points at the tag-name token of the opening tag.
func recordElement(node *sitter.Node, src []byte, res *Result, tables *Tables) {
	openTag := firstChildOfType(node, htmlNodeStartTag)
	if openTag == nil {
		openTag = firstChildOfType(node, htmlNodeSelfClosing)
	}
	if openTag == nil {
		return
	}

	tagNode := firstChildOfType(openTag, htmlNodeTagName)
	tag := strings.ToLower(nodeText(tagNode, src))
	if tag == "" {
		return
	}
	res.record("html.elements."+tag, tagNode)

	for i := 0; i < int(openTag.ChildCount()); i++ {
		child := openTag.Child(i)
		if child == nil || child.Type() != htmlNodeAttribute {
			continue
		}
		nameNode := firstChildOfType(child, htmlNodeAttributeName)
		attr := strings.ToLower(nodeText(nameNode, src))
		if attr == "" || skipAttribute(attr) {
			continue
		}
		if id, ok := tables.Attributes[tag+"."+attr]; ok {
			res.record(id, nameNode)
		} else {
			res.record("html.global_attributes."+attr, nameNode)
		}
	}
}

// skipAttribute reports whether an attribute belongs to the denylist of
// universally common attributes: the fixed names plus the data-*, aria-*,
// and event-handler (on*) families.
func skipAttribute(attr string) bool {
	if ignoredAttributes[attr] {
		return true
	}
	return strings.HasPrefix(attr, "data-") ||
		strings.HasPrefix(attr, "aria-") ||
		strings.HasPrefix(attr, "on")
}
