package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/apidocbuilder/internal/definition"
	"git.home.luguber.info/inful/apidocbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/apidocbuilder/internal/xref"
)

func fixtureIndex(t *testing.T) (*xref.Index, map[string]definition.Documentable) {
	t.Helper()
	container := definition.Definition{Name: `HH\Container`, Kind: definition.KindInterface, DocComment: "Base container."}
	vector := definition.Definition{
		Name:       `HH\Vector`,
		Kind:       definition.KindClass,
		Final:      true,
		Generics:   []string{"Tv"},
		Implements: []string{`HH\Container<Tv>`},
		DocComment: "A vector.\n\nSee `Vec\\map` for a functional style.",
	}
	docs := map[string]definition.Documentable{
		"container": {Definition: container, Product: definition.ProductHack},
		"vector":    {Definition: vector, Product: definition.ProductHack},
		"count": {
			Definition: definition.Definition{Name: "count", Kind: definition.KindMethod, Visibility: definition.VisibilityPublic, ReturnType: "int"},
			Parent:     definition.RefTo(container),
			Product:    definition.ProductHack,
		},
		"add": {
			Definition: definition.Definition{
				Name:       "add",
				Kind:       definition.KindMethod,
				Visibility: definition.VisibilityPublic,
				Parameters: []definition.Parameter{{Name: "$value", Type: "Tv"}},
				ReturnType: "this",
				DocComment: "Appends a value.\n\nMore detail.\n\n@param $value The value to append.\n@return The vector itself.",
			},
			Parent:  definition.RefTo(vector),
			Product: definition.ProductHack,
		},
		"grow": {
			Definition: definition.Definition{Name: "grow", Kind: definition.KindMethod, Visibility: definition.VisibilityProtected},
			Parent:     definition.RefTo(vector),
			Product:    definition.ProductHack,
		},
		"map": {
			Definition: definition.Definition{
				Name:     `HH\Lib\Vec\map`,
				Kind:     definition.KindFunction,
				Generics: []string{"Tv1", "Tv2"},
				Parameters: []definition.Parameter{
					{Name: "$traversable", Type: "Traversable<Tv1>"},
					{Name: "$value_func", Type: "(function(Tv1): Tv2)"},
				},
				ReturnType: "vec<Tv2>",
				DocComment: "Returns a new vec.\n\n@param $value_func Applied to each value.\n@see HH\\Vector",
				Attributes: map[string][]string{"__Deprecated": {"Use something else."}},
			},
			Product: definition.ProductHSL,
		},
	}
	all := make([]definition.Documentable, 0, len(docs))
	for _, d := range docs {
		all = append(all, d)
	}
	ix, err := xref.BuildGlobalIndex(all)
	require.NoError(t, err)
	return ix, docs
}

func TestRenderFunction(t *testing.T) {
	ix, docs := fixtureIndex(t)
	out, err := NewMarkdownRenderer("/").Render(docs["map"], ix, DefaultConfig())
	require.NoError(t, err)

	want := "# HH\\Lib\\Vec\\map\n\n" +
		"**Deprecated:** Use something else.\n\n" +
		"Returns a new vec.\n\n" +
		"```Hack\n" +
		"namespace HH\\Lib\\Vec;\n\n" +
		"function map<Tv1, Tv2>(\n" +
		"  Traversable<Tv1> $traversable,\n" +
		"  (function(Tv1): Tv2) $value_func,\n" +
		"): vec<Tv2>;\n" +
		"```\n\n" +
		"## Parameters\n\n" +
		"+ `Traversable<Tv1> $traversable`\n" +
		"+ `(function(Tv1): Tv2) $value_func` - Applied to each value.\n\n" +
		"## Returns\n\n" +
		"+ `vec<Tv2>`\n\n" +
		"## See Also\n\n" +
		"+ [`HH\\Vector`](/hack/reference/class/HH.Vector/)\n"
	assert.Equal(t, want, out)
}

func TestRenderClassish(t *testing.T) {
	ix, docs := fixtureIndex(t)
	out, err := NewMarkdownRenderer("/").Render(docs["vector"], ix, DefaultConfig())
	require.NoError(t, err)

	assert.Contains(t, out, "# HH\\Vector\n")
	assert.Contains(t, out, "See [`Vec\\map`](/hsl/reference/function/HH.Lib.Vec.map/) for a functional style.")
	assert.Contains(t, out, "final class Vector<Tv> implements HH\\Container<Tv> {...}")
	assert.Contains(t, out, "## Public Methods\n\n+ [`->add(Tv $value): this`](/hack/reference/class/HH.Vector/add/)\\\n  Appends a value.\n")
	assert.Contains(t, out, "## Protected Methods\n\n+ [`->grow()`](/hack/reference/class/HH.Vector/grow/)\n")
	assert.Contains(t, out, "+ [`->count(): int`](/hack/reference/interface/HH.Container/count/) from [`HH\\Container`](/hack/reference/interface/HH.Container/)")

	cfg := DefaultConfig()
	cfg.HideInheritedMethods = true
	cfg.SyntaxHighlighting = false
	out, err = NewMarkdownRenderer("/").Render(docs["vector"], ix, cfg)
	require.NoError(t, err)
	assert.NotContains(t, out, "Inherited Methods")
	assert.NotContains(t, out, "```Hack")
}

func TestRenderMethod(t *testing.T) {
	ix, docs := fixtureIndex(t)
	out, err := NewMarkdownRenderer("/").Render(docs["add"], ix, DefaultConfig())
	require.NoError(t, err)

	assert.Contains(t, out, "# HH\\Vector::add\n\nAppends a value.\n\nMore detail.\n")
	assert.Contains(t, out, "public function add(\n  Tv $value,\n): this;")
	assert.Contains(t, out, "+ `Tv $value` - The value to append.")
	assert.Contains(t, out, "+ `this` - The vector itself.")
}

func TestRenderIsDeterministic(t *testing.T) {
	ix, docs := fixtureIndex(t)
	r := NewMarkdownRenderer("/")
	first, err := r.Render(docs["vector"], ix, DefaultConfig())
	require.NoError(t, err)
	for range 5 {
		again, err := r.Render(docs["vector"], ix, DefaultConfig())
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestRenderRejectsUnsupported(t *testing.T) {
	ix, _ := fixtureIndex(t)
	r := NewMarkdownRenderer("/")

	_, err := r.Render(definition.Documentable{Definition: definition.Definition{Name: "T", Kind: definition.KindTypeAlias}}, ix, DefaultConfig())
	assert.True(t, errors.HasCategory(err, errors.CategoryUnsupported))

	cfg := DefaultConfig()
	cfg.Format = "html"
	_, err = r.Render(definition.Documentable{Definition: definition.Definition{Name: "f", Kind: definition.KindFunction}}, ix, cfg)
	assert.True(t, errors.HasCategory(err, errors.CategoryUnsupported))
}

func TestParseDocBlock(t *testing.T) {
	b := parseDocBlock("Summary.\n\n@param string $name The name\n  continued.\n@param ...$rest Others.\n@throws InvalidArgumentException when empty\n@returns Nothing.")
	assert.Equal(t, "Summary.", b.Description)
	assert.Equal(t, "The name continued.", b.Params["$name"])
	assert.Equal(t, "Others.", b.Params["$rest"])
	assert.Equal(t, []string{"InvalidArgumentException when empty"}, b.Throws)
	assert.Equal(t, "Nothing.", b.Return)
}
