package navindex

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/apidocbuilder/internal/definition"
	"git.home.luguber.info/inful/apidocbuilder/internal/foundation/errors"
)

func fixture() []definition.Documentable {
	vector := definition.Definition{Name: `HH\Vector`, Kind: definition.KindClass}
	iter := definition.Definition{Name: `HH\Iterator`, Kind: definition.KindInterface}
	return []definition.Documentable{
		{Definition: vector, Product: definition.ProductHack},
		{Definition: definition.Definition{Name: "add", Kind: definition.KindMethod}, Parent: definition.RefTo(vector), Product: definition.ProductHack},
		{Definition: iter, Product: definition.ProductHack},
		{Definition: definition.Definition{Name: "current", Kind: definition.KindMethod}, Parent: definition.RefTo(iter), Product: definition.ProductHack},
		{
			Definition: definition.Definition{Name: `HH\old_fn`, Kind: definition.KindFunction, Attributes: map[string][]string{"__Deprecated": {"use new_fn"}}},
			Product:    definition.ProductHack,
		},
		{Definition: definition.Definition{Name: `HH\new_fn`, Kind: definition.KindFunction}, Product: definition.ProductHack},
		{Definition: definition.Definition{Name: `HH\Lib\Ref`, Kind: definition.KindClass}, Product: definition.ProductHSL},
		{Definition: definition.Definition{Name: "orphan", Kind: definition.KindMethod}, Parent: definition.ParentRef{Name: `HH\Gone`, Kind: definition.KindClass}, Product: definition.ProductHack},
	}
}

func TestBuildProductIndex(t *testing.T) {
	b := NewBuilder("/html", "/")
	idx, err := b.BuildProductIndex(definition.ProductHack, fixture())
	require.NoError(t, err)

	assert.Equal(t, 4, idx.Len())
	assert.Empty(t, idx.Trait)

	vec := idx.Class["HH.Vector"]
	assert.Equal(t, definition.KindClass, vec.Type)
	assert.Equal(t, `HH\Vector`, vec.Name)
	assert.Equal(t, "/hack/reference/class/HH.Vector/", vec.URLPath)
	assert.Equal(t, filepath.Join("/html", "hack", "class", "HH.Vector.html"), vec.HTMLPath)
	require.Contains(t, vec.Methods, "add")
	assert.Equal(t, MethodEntry{
		Name:      "add",
		ClassName: `HH\Vector`,
		ClassType: definition.KindClass,
		HTMLPath:  filepath.Join("/html", "hack", "class", "HH.Vector", "add.html"),
		URLPath:   "/hack/reference/class/HH.Vector/add/",
	}, vec.Methods["add"])

	it := idx.Interface["HH.Iterator"]
	assert.Equal(t, definition.KindInterface, it.Methods["current"].ClassType)

	old := idx.Function["HH.old_fn"]
	require.NotNil(t, old.Deprecation)
	assert.Equal(t, "use new_fn", *old.Deprecation)
	assert.Nil(t, idx.Function["HH.new_fn"].Deprecation)
	assert.NotContains(t, idx.Class, "HH.Lib.Ref")
}

func TestProductIndexJSONShape(t *testing.T) {
	idx, err := NewBuilder("/html", "/").BuildProductIndex(definition.ProductHack, fixture())
	require.NoError(t, err)
	data, err := json.Marshal(NavigationIndex{definition.ProductHack: idx})
	require.NoError(t, err)

	var raw map[string]map[string]map[string]map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	fn := raw["hack"]["function"]["HH.new_fn"]
	assert.Contains(t, fn, "deprecation")
	assert.Nil(t, fn["deprecation"])
	cls := raw["hack"]["class"]["HH.Vector"]
	assert.Equal(t, "class", cls["type"])
	assert.Contains(t, cls, "methods")
	assert.Contains(t, cls, "htmlPath")
	assert.Contains(t, cls, "urlPath")
}

func TestDeprecationRequiresSingleValue(t *testing.T) {
	def := definition.Definition{Name: "f", Kind: definition.KindFunction, Attributes: map[string][]string{"__Deprecated": {"msg", "2"}}}
	_, err := Deprecation(def)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))

	def.Attributes["__Deprecated"] = nil
	_, err = Deprecation(def)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))

	_, err = NewBuilder("/h", "/").BuildProductIndex(definition.ProductHack, []definition.Documentable{
		{Definition: def, Product: definition.ProductHack},
	})
	assert.Error(t, err)
}

func TestBuildProductIndexCollisions(t *testing.T) {
	vector := definition.Definition{Name: `HH\Vector`, Kind: definition.KindClass}
	hack := func(def definition.Definition) definition.Documentable {
		return definition.Documentable{Definition: def, Product: definition.ProductHack}
	}
	methodOf := func(owner definition.Definition, name string) definition.Documentable {
		return definition.Documentable{
			Definition: definition.Definition{Name: name, Kind: definition.KindMethod},
			Parent:     definition.RefTo(owner),
			Product:    definition.ProductHack,
		}
	}

	cases := []struct {
		name string
		docs []definition.Documentable
	}{
		{
			name: "classish names equal after normalization",
			docs: []definition.Documentable{
				hack(vector),
				hack(definition.Definition{Name: "HH.Vector", Kind: definition.KindClass}),
			},
		},
		{
			name: "function defined twice",
			docs: []definition.Documentable{
				hack(definition.Definition{Name: `HH\fun`, Kind: definition.KindFunction}),
				hack(definition.Definition{Name: `HH\fun`, Kind: definition.KindFunction}),
			},
		},
		{
			name: "method defined twice on one classish",
			docs: []definition.Documentable{
				hack(vector),
				methodOf(vector, "add"),
				methodOf(vector, "add"),
			},
		},
		{
			name: "method names equal after normalization",
			docs: []definition.Documentable{
				hack(vector),
				methodOf(vector, `ns\m`),
				methodOf(vector, "ns.m"),
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewBuilder("/html", "/").BuildProductIndex(definition.ProductHack, tc.docs)
			require.Error(t, err)
			assert.True(t, errors.HasCategory(err, errors.CategoryCollision), "got %v", err)
		})
	}
}

func TestMethodKeysAreNormalized(t *testing.T) {
	vector := definition.Definition{Name: `HH\Vector`, Kind: definition.KindClass}
	idx, err := NewBuilder("/html", "/").BuildProductIndex(definition.ProductHack, []definition.Documentable{
		{Definition: vector, Product: definition.ProductHack},
		{Definition: definition.Definition{Name: `ns\m`, Kind: definition.KindMethod}, Parent: definition.RefTo(vector), Product: definition.ProductHack},
	})
	require.NoError(t, err)
	methods := idx.Class["HH.Vector"].Methods
	require.Contains(t, methods, "ns.m")
	assert.Equal(t, `ns\m`, methods["ns.m"].Name)
}
