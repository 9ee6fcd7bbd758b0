package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkup_ElementsAndScopedAttributes(t *testing.T) {
	src := []byte("<dialog open><p>Hi</p></dialog>")
	res := Markup(context.Background(), src, nil)

	require.Equal(t, []string{
		"html.elements.dialog",
		"html.elements.dialog.open",
		"html.elements.p",
	}, res.Features)

	require.Len(t, res.Locations["html.elements.dialog"], 1)
	assert.Equal(t, Range{StartLine: 0, StartCol: 1, EndLine: 0, EndCol: 7},
		res.Locations["html.elements.dialog"][0])
}

func TestMarkup_AttributeDenylist(t *testing.T) {
	src := []byte(`<div class="a" id="b" style="c" data-x="1" aria-label="l" onclick="f()"></div>`)
	res := Markup(context.Background(), src, nil)

	assert.Equal(t, []string{"html.elements.div"}, res.Features)
}

func TestMarkup_GlobalAttributeFallback(t *testing.T) {
	src := []byte(`<img src="x.png" loading="lazy" alt="">`)
	res := Markup(context.Background(), src, nil)

	// src and alt have no scoped entry and fall back to the global ID;
	// img.loading is element-scoped.
	assert.Equal(t, []string{
		"html.elements.img",
		"html.global_attributes.src",
		"html.elements.img.loading",
		"html.global_attributes.alt",
	}, res.Features)
}

func TestMarkup_CustomElements(t *testing.T) {
	src := []byte("<my-widget popover></my-widget>")
	res := Markup(context.Background(), src, nil)

	assert.Equal(t, []string{
		"html.elements.my-widget",
		"html.global_attributes.popover",
	}, res.Features)
}

func TestMarkup_ScriptAndStyleElements(t *testing.T) {
	src := []byte(`<script defer src="a.js"></script><style>.x{gap:0}</style>`)
	res := Markup(context.Background(), src, nil)

	assert.Contains(t, res.Features, "html.elements.script")
	assert.Contains(t, res.Features, "html.elements.script.defer")
	assert.Contains(t, res.Features, "html.elements.style")

	// Inline CSS is not analyzed by the markup extractor.
	assert.NotContains(t, res.Features, "css.properties.gap")
}

func TestMarkup_CaseInsensitive(t *testing.T) {
	src := []byte(`<IMG LOADING="lazy">`)
	res := Markup(context.Background(), src, nil)

	assert.Equal(t, []string{
		"html.elements.img",
		"html.elements.img.loading",
	}, res.Features)
}

func TestMarkup_FragmentsAndEmpty(t *testing.T) {
	res := Markup(context.Background(), nil, nil)
	assert.Empty(t, res.Features)

	// No implicit html/head/body wrappers for fragments.
	res = Markup(context.Background(), []byte("hello <b>world</b>"), nil)
	assert.Equal(t, []string{"html.elements.b"}, res.Features)
}
