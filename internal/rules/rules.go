// Package rules loads Risor scripts that extend the built-in feature
// mapping tables. Scripts run once at configuration time and mutate a
// Tables value through host functions; they never run per-document.
package rules

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strings"

	"github.com/risor-io/risor"
	"github.com/risor-io/risor/importer"
	"github.com/risor-io/risor/object"

	"github.com/jward/baseline/internal/extract"
)

// Apply evaluates every .risor file in fsys (sorted by path) against
// tables. A script error aborts the run and leaves tables in its
// partially mutated state, so callers should apply rules to a copy
// before installing it.
func Apply(ctx context.Context, fsys fs.FS, tables *extract.Tables, log *slog.Logger) error {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	var scripts []string
	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".risor") {
			scripts = append(scripts, path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("rules: walking scripts: %w", err)
	}
	sort.Strings(scripts)

	globals := hostGlobals(tables)
	globalNames := make([]string, 0, len(globals))
	for name := range globals {
		globalNames = append(globalNames, name)
	}

	opts := make([]risor.Option, 0, len(globals)+1)
	for name, val := range globals {
		opts = append(opts, risor.WithGlobal(name, val))
	}
	opts = append(opts, risor.WithImporter(importer.NewFSImporter(importer.FSImporterOptions{
		GlobalNames: globalNames,
		SourceFS:    fsys,
		Extensions:  []string{".risor"},
	})))

	for _, path := range scripts {
		src, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("rules: reading %s: %w", path, err)
		}
		if _, err := risor.Eval(ctx, string(src), opts...); err != nil {
			return fmt.Errorf("rules: script %s: %w", path, err)
		}
		log.Debug("applied rule script", "path", path)
	}
	return nil
}

// hostGlobals builds the host functions exposed to rule scripts. Each
// mutates tables directly.
func hostGlobals(tables *extract.Tables) map[string]any {
	return map[string]any{
		"map_api":            makeMapAPIFn(tables),
		"map_global":         makeMapGlobalFn(tables),
		"map_at_rule":        makeMapAtRuleFn(tables),
		"map_attribute":      makeMapAttributeFn(tables),
		"set_ambiguous_bias": makeSetBiasFn(tables),
	}
}

// map_api(path, feature_id) — map a dotted member-access path to a
// feature ID, e.g. map_api("navigator.clipboard.writeText",
// "api.Clipboard.writeText").
func makeMapAPIFn(tables *extract.Tables) *object.Builtin {
	return object.NewBuiltin("map_api", func(ctx context.Context, args ...object.Object) object.Object {
		path, id, errObj := twoStrings("map_api", args)
		if errObj != nil {
			return errObj
		}
		tables.APIPaths[path] = id
		return object.Nil
	})
}

// map_global(name, feature_id) — map a bare global call, e.g.
// map_global("fetch", "api.fetch").
func makeMapGlobalFn(tables *extract.Tables) *object.Builtin {
	return object.NewBuiltin("map_global", func(ctx context.Context, args ...object.Object) object.Object {
		name, id, errObj := twoStrings("map_global", args)
		if errObj != nil {
			return errObj
		}
		tables.Globals[name] = id
		return object.Nil
	})
}

// map_at_rule(name, feature_id) — override the feature ID for an
// at-rule keyword (without the "@").
func makeMapAtRuleFn(tables *extract.Tables) *object.Builtin {
	return object.NewBuiltin("map_at_rule", func(ctx context.Context, args ...object.Object) object.Object {
		name, id, errObj := twoStrings("map_at_rule", args)
		if errObj != nil {
			return errObj
		}
		tables.AtRules[strings.TrimPrefix(name, "@")] = id
		return object.Nil
	})
}

// map_attribute(tag, attr, feature_id) — map an element-scoped HTML
// attribute to a feature ID.
func makeMapAttributeFn(tables *extract.Tables) *object.Builtin {
	return object.NewBuiltin("map_attribute", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 3 {
			return object.NewArgsError("map_attribute", 3, len(args))
		}
		tag, ok := args[0].(*object.String)
		if !ok {
			return object.Errorf("map_attribute: tag must be a string, got %s", args[0].Type())
		}
		attr, ok := args[1].(*object.String)
		if !ok {
			return object.Errorf("map_attribute: attribute must be a string, got %s", args[1].Type())
		}
		id, ok := args[2].(*object.String)
		if !ok {
			return object.Errorf("map_attribute: feature id must be a string, got %s", args[2].Type())
		}
		key := strings.ToLower(tag.Value()) + "." + strings.ToLower(attr.Value())
		tables.Attributes[key] = id.Value()
		return object.Nil
	})
}

// set_ambiguous_bias(kind) — choose how methods shared by Array and
// String resolve when the receiver type is unknown: "array" or
// "string".
func makeSetBiasFn(tables *extract.Tables) *object.Builtin {
	return object.NewBuiltin("set_ambiguous_bias", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("set_ambiguous_bias", 1, len(args))
		}
		kind, ok := args[0].(*object.String)
		if !ok {
			return object.Errorf("set_ambiguous_bias: kind must be a string, got %s", args[0].Type())
		}
		switch strings.ToLower(kind.Value()) {
		case "array":
			tables.TieBreak = extract.TieBreakArray
		case "string":
			tables.TieBreak = extract.TieBreakString
		default:
			return object.Errorf("set_ambiguous_bias: unknown kind %q (want \"array\" or \"string\")", kind.Value())
		}
		return object.Nil
	})
}

func twoStrings(fn string, args []object.Object) (string, string, object.Object) {
	if len(args) != 2 {
		return "", "", object.NewArgsError(fn, 2, len(args))
	}
	first, ok := args[0].(*object.String)
	if !ok {
		return "", "", object.Errorf("%s: first argument must be a string, got %s", fn, args[0].Type())
	}
	second, ok := args[1].(*object.String)
	if !ok {
		return "", "", object.Errorf("%s: second argument must be a string, got %s", fn, args[1].Type())
	}
	return first.Value(), second.Value(), nil
}
