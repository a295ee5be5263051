package definition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindClassification(t *testing.T) {
	for _, k := range ClassishKinds {
		assert.True(t, k.IsClassish(), k)
	}
	for _, k := range []Kind{KindFunction, KindMethod, KindTypeAlias} {
		assert.False(t, k.IsClassish(), k)
	}

	k, err := ParseKind("interface")
	require.NoError(t, err)
	assert.Equal(t, KindInterface, k)

	_, err = ParseKind("newtype")
	assert.Error(t, err)
}

func TestParseProduct(t *testing.T) {
	p, err := ParseProduct("hsl-experimental")
	require.NoError(t, err)
	assert.Equal(t, ProductHSLExperimental, p)

	_, err = ParseProduct("php")
	assert.Error(t, err)
	assert.Equal(t, []Product{ProductHack, ProductHSL, ProductHSLExperimental}, Products())
}

func TestNameHelpers(t *testing.T) {
	d := Definition{Name: `HH\Lib\Vec\map`, Kind: KindFunction}
	assert.Equal(t, "map", d.ShortName())
	assert.Equal(t, `HH\Lib\Vec`, d.Namespace())
	assert.Equal(t, "HH.Lib.Vec.map", NormalizeName(d.Name))

	global := Definition{Name: "strlen", Kind: KindFunction}
	assert.Equal(t, "strlen", global.ShortName())
	assert.Empty(t, global.Namespace())
}

func TestWithNameDoesNotAlias(t *testing.T) {
	orig := Definition{
		Name:       "fun",
		Kind:       KindFunction,
		Attributes: map[string][]string{"__Deprecated": {"use something else"}},
		Parameters: []Parameter{{Name: "$name", Type: "string"}},
	}
	renamed := orig.WithName(`HH\fun`)

	assert.Equal(t, "fun", orig.Name)
	assert.Equal(t, `HH\fun`, renamed.Name)

	renamed.Attributes["__Deprecated"][0] = "changed"
	renamed.Parameters[0].Name = "$other"
	assert.Equal(t, "use something else", orig.Attributes["__Deprecated"][0])
	assert.Equal(t, "$name", orig.Parameters[0].Name)
}

func TestLocationLess(t *testing.T) {
	a := Location{File: "a.php", Line: 10}
	b := Location{File: "a.php", Line: 20}
	c := Location{File: "b.php", Line: 1}
	assert.True(t, a.Less(b))
	assert.True(t, b.Less(c))
	assert.False(t, c.Less(a))
}

func TestDocumentableValidate(t *testing.T) {
	class := Definition{Name: `Foo\Qux`, Kind: KindClass}
	method := Definition{Name: "baz", Kind: KindMethod}

	ok := Documentable{Definition: method, Parent: RefTo(class), Product: ProductHSL}
	require.NoError(t, ok.Validate())
	assert.Equal(t, `Foo\Qux::baz`, ok.QualifiedKey())

	orphan := Documentable{Definition: method}
	assert.Error(t, orphan.Validate())

	fnWithParent := Documentable{Definition: Definition{Name: "f", Kind: KindFunction}, Parent: RefTo(class)}
	assert.Error(t, fnWithParent.Validate())

	badParent := Documentable{Definition: method, Parent: ParentRef{Name: "f", Kind: KindFunction}}
	assert.Error(t, badParent.Validate())
}
