package extract

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// Tree-sitter JavaScript/TypeScript node types. Reference:
// https://github.com/tree-sitter/tree-sitter-javascript
const (
	jsNodeCallExpression      = "call_expression"
	jsNodeNewExpression       = "new_expression"
	jsNodeMemberExpression    = "member_expression"
	jsNodeSubscriptExpression = "subscript_expression"
	jsNodeIdentifier          = "identifier"
	jsNodePropertyIdentifier  = "property_identifier"
	jsNodeString              = "string"
	jsNodeStringFragment      = "string_fragment"
	jsNodeError               = "ERROR"
)

// Script extracts web-platform features from JavaScript or TypeScript
// source (JSX/TSX included; kind selects the grammar). Member-access
// chains are reconstructed into dotted paths and resolved against the
// curated tables, most-specific first:
//
//  1. exact whole-path match (Tables.APIPaths)
//  2. bare global-function or constructor name (Tables.Globals)
//  3. two-segment heuristic: storage-like left segment, then array-only or
//     string-only right segment, then the fixed tie-break for names that
//     exist on both built-ins
//  4. prefix fallback for well-known roots, synthesizing api.<Root>.<member>
//  5. otherwise nothing is recorded
//
// Any computed or otherwise dynamic segment makes the whole chain
// unresolvable; there is no partial mapping. Input the grammar cannot make
// any sense of yields an empty Result.
//
// A nil tables uses Defaults().
func Script(ctx context.Context, src []byte, kind Kind, tables *Tables) *Result {
	if tables == nil {
		tables = Defaults()
	}
	res := newResult()

	lang, ok := grammarFor(kind)
	if !ok {
		lang, _ = grammarFor(KindJS)
	}
	tree, err := parse(ctx, lang, src)
	if err != nil || tree == nil {
		return res
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.Type() == jsNodeError {
		return res
	}
	walkScript(root, src, res, tables)
	return res
}

func walkScript(node *sitter.Node, src []byte, res *Result, tables *Tables) {
	if node == nil {
		return
	}

	switch node.Type() {
	case jsNodeCallExpression, jsNodeNewExpression:
		callee := node.ChildByFieldName("function")
		if callee == nil {
			callee = node.ChildByFieldName("constructor")
		}
		if callee != nil {
			switch callee.Type() {
			case jsNodeIdentifier:
				if id, ok := tables.Globals[nodeText(callee, src)]; ok {
					res.record(id, callee)
				}
			case jsNodeMemberExpression, jsNodeSubscriptExpression:
				if segments, ok := memberPath(callee, src); ok {
					res.record(resolvePath(segments, tables), callee)
				}
			}
		}

	case jsNodeMemberExpression, jsNodeSubscriptExpression:
		// Only the outermost node of a chain resolves; sub-chains and call
		// callees are covered by their enclosing expression.
		if isChainRoot(node) {
			if segments, ok := memberPath(node, src); ok {
				res.record(resolvePath(segments, tables), node)
			}
		}
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		walkScript(node.Child(i), src, res, tables)
	}
}

// isChainRoot reports whether node is the outermost member access of its
// chain and not the callee of a call or new expression.
func isChainRoot(node *sitter.Node) bool {
	parent := node.Parent()
	if parent == nil {
		return true
	}
	switch parent.Type() {
	case jsNodeMemberExpression, jsNodeSubscriptExpression:
		return !sameSpan(parent.ChildByFieldName("object"), node)
	case jsNodeCallExpression:
		return !sameSpan(parent.ChildByFieldName("function"), node)
	case jsNodeNewExpression:
		return !sameSpan(parent.ChildByFieldName("constructor"), node)
	}
	return true
}

// sameSpan reports whether two nodes cover the same byte range, which is
// how we identify "is this child that field" without node identity.
func sameSpan(a, b *sitter.Node) bool {
	if a == nil || b == nil {
		return false
	}
	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte()
}

// memberPath reconstructs the dotted path of a member-access chain.
// Returns ok=false when any segment is not a plain identifier, property
// name, or string-literal subscript — computed access has no resolvable
// path.
func memberPath(node *sitter.Node, src []byte) ([]string, bool) {
	switch node.Type() {
	case jsNodeIdentifier:
		return []string{nodeText(node, src)}, true

	case jsNodeMemberExpression:
		obj := node.ChildByFieldName("object")
		prop := node.ChildByFieldName("property")
		if obj == nil || prop == nil || prop.Type() != jsNodePropertyIdentifier {
			return nil, false
		}
		left, ok := memberPath(obj, src)
		if !ok {
			return nil, false
		}
		return append(left, nodeText(prop, src)), true

	case jsNodeSubscriptExpression:
		obj := node.ChildByFieldName("object")
		index := node.ChildByFieldName("index")
		if obj == nil || index == nil || index.Type() != jsNodeString {
			return nil, false
		}
		fragment := firstChildOfType(index, jsNodeStringFragment)
		if fragment == nil {
			return nil, false
		}
		left, ok := memberPath(obj, src)
		if !ok {
			return nil, false
		}
		return append(left, nodeText(fragment, src)), true
	}
	return nil, false
}

// resolvePath maps a dotted path to a feature ID, or "" when the path does
// not correspond to a known platform feature.
func resolvePath(segments []string, tables *Tables) string {
	if id, ok := tables.APIPaths[strings.Join(segments, ".")]; ok {
		return id
	}

	if len(segments) == 2 {
		object, member := segments[0], segments[1]
		switch {
		case storageObjects[object]:
			return "api.Storage." + member
		case arrayOnlyMethods[member]:
			return "javascript.builtins.Array." + member
		case stringOnlyMethods[member]:
			return "javascript.builtins.String." + member
		case ambiguousMethods[member]:
			if tables.TieBreak == TieBreakArray {
				return "javascript.builtins.Array." + member
			}
			return "javascript.builtins.String." + member
		}
	}

	if len(segments) >= 2 {
		if rootName, ok := rootObjects[segments[0]]; ok {
			return "api." + rootName + "." + segments[1]
		}
	}
	return ""
}
