package rules

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/baseline/internal/extract"
)

func scriptFS(files map[string]string) fstest.MapFS {
	fsys := make(fstest.MapFS, len(files))
	for name, src := range files {
		fsys[name] = &fstest.MapFile{Data: []byte(src)}
	}
	return fsys
}

func TestApply_ExtendsTables(t *testing.T) {
	fsys := scriptFS(map[string]string{
		"team.risor": `
map_api("app.telemetry.send", "api.Navigator.sendBeacon")
map_global("appFetch", "api.fetch")
map_at_rule("acme-theme", "css.at-rules.property")
map_attribute("IMG", "Lazyload", "html.elements.img.loading")
set_ambiguous_bias("array")
`,
	})

	tables := extract.Defaults()
	require.NoError(t, Apply(context.Background(), fsys, tables, nil))

	assert.Equal(t, "api.Navigator.sendBeacon", tables.APIPaths["app.telemetry.send"])
	assert.Equal(t, "api.fetch", tables.Globals["appFetch"])
	assert.Equal(t, "css.at-rules.property", tables.AtRules["acme-theme"])
	assert.Equal(t, "html.elements.img.loading", tables.Attributes["img.lazyload"])
	assert.Equal(t, extract.TieBreakArray, tables.TieBreak)

	// Built-ins survive alongside the extensions.
	assert.Equal(t, "api.fetch", tables.Globals["fetch"])
}

func TestApply_ScriptsRunInPathOrder(t *testing.T) {
	fsys := scriptFS(map[string]string{
		"20-override.risor": `map_global("ws", "api.WebSocket")`,
		"10-base.risor":     `map_global("ws", "api.Worker")`,
	})

	tables := extract.Defaults()
	require.NoError(t, Apply(context.Background(), fsys, tables, nil))
	assert.Equal(t, "api.WebSocket", tables.Globals["ws"])
}

func TestApply_AtRuleKeywordNormalized(t *testing.T) {
	fsys := scriptFS(map[string]string{
		"at.risor": `map_at_rule("@scroll-timeline", "css.at-rules.scroll-timeline")`,
	})

	tables := extract.Defaults()
	require.NoError(t, Apply(context.Background(), fsys, tables, nil))
	assert.Equal(t, "css.at-rules.scroll-timeline", tables.AtRules["scroll-timeline"])
}

func TestApply_ScriptErrors(t *testing.T) {
	tests := []struct {
		name   string
		script string
	}{
		{"wrong arity", `map_global("only-one")`},
		{"wrong type", `map_api(42, "api.fetch")`},
		{"unknown bias", `set_ambiguous_bias("coin-flip")`},
		{"syntax error", `map_global("x",`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := scriptFS(map[string]string{"bad.risor": tt.script})
			err := Apply(context.Background(), fsys, extract.Defaults(), nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "bad.risor")
		})
	}
}

func TestApply_IgnoresOtherFiles(t *testing.T) {
	fsys := scriptFS(map[string]string{
		"README.md":  `map_global("never", "api.fetch")`,
		"real.risor": `map_global("real", "api.fetch")`,
	})

	tables := extract.Defaults()
	require.NoError(t, Apply(context.Background(), fsys, tables, nil))

	_, ok := tables.Globals["never"]
	assert.False(t, ok)
	assert.Equal(t, "api.fetch", tables.Globals["real"])
}

func TestApply_EmptyFS(t *testing.T) {
	tables := extract.Defaults()
	before := len(tables.Globals)
	require.NoError(t, Apply(context.Background(), fstest.MapFS{}, tables, nil))
	assert.Len(t, tables.Globals, before)
}
