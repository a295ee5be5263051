package merge

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/apidocbuilder/internal/definition"
)

func doc(name string, kind definition.Kind, file string, line int, comment string) definition.Documentable {
	return definition.Documentable{
		Definition: definition.Definition{
			Name:       name,
			Kind:       kind,
			DocComment: comment,
			Location:   definition.Location{File: file, Line: line},
		},
		Product: definition.ProductHack,
	}
}

func TestMergeAllPrefersDocumented(t *testing.T) {
	runtime := doc(`HH\Vector`, definition.KindClass, "/hhvm/runtime/vector.php", 10, "")
	hhi := doc(`HH\Vector`, definition.KindClass, "/hhvm/hhi/vector.hhi", 3, "Vector docs")

	got := MergeAll([]definition.Documentable{runtime, hhi})
	require.Len(t, got, 1)
	assert.Equal(t, "/hhvm/hhi/vector.hhi", got[0].Definition.Location.File)
	assert.Equal(t, "Vector docs", got[0].Definition.DocComment)
}

func TestMergeAllTieBreaksOnLocation(t *testing.T) {
	a := doc("f", definition.KindFunction, "b.php", 1, "x")
	b := doc("f", definition.KindFunction, "a.php", 9, "y")
	got := MergeAll([]definition.Documentable{a, b})
	require.Len(t, got, 1)
	assert.Equal(t, "a.php", got[0].Definition.Location.File)
}

func TestMergeAllClassishFamily(t *testing.T) {
	class := doc(`HH\KeyedContainer`, definition.KindClass, "a.php", 1, "")
	iface := doc(`HH\KeyedContainer`, definition.KindInterface, "b.hhi", 1, "docs")
	fn := doc(`HH\KeyedContainer`, definition.KindFunction, "c.php", 1, "")

	got := MergeAll([]definition.Documentable{class, iface, fn})
	require.Len(t, got, 2)
	kinds := []definition.Kind{got[0].Definition.Kind, got[1].Definition.Kind}
	assert.ElementsMatch(t, []definition.Kind{definition.KindInterface, definition.KindFunction}, kinds)
}

func TestMergeAllMethodsKeyedByParent(t *testing.T) {
	m1 := doc("add", definition.KindMethod, "a.php", 5, "")
	m1.Parent = definition.ParentRef{Name: `HH\Vector`, Kind: definition.KindClass}
	m2 := doc("add", definition.KindMethod, "b.hhi", 7, "Adds.")
	m2.Parent = definition.ParentRef{Name: `HH\Vector`, Kind: definition.KindClass}
	m3 := doc("add", definition.KindMethod, "b.hhi", 20, "")
	m3.Parent = definition.ParentRef{Name: `HH\Set`, Kind: definition.KindClass}

	got := MergeAll([]definition.Documentable{m1, m2, m3})
	require.Len(t, got, 2)
	assert.Equal(t, `HH\Set`, got[0].Parent.Name)
	assert.Equal(t, "Adds.", got[1].Definition.DocComment)
}

func TestMergeAllIsOrderIndependent(t *testing.T) {
	docs := []definition.Documentable{
		doc(`HH\Lib\Vec\map`, definition.KindFunction, "hsl/vec.php", 4, ""),
		doc(`HH\Lib\Vec\map`, definition.KindFunction, "hhi/vec.hhi", 2, ""),
		doc(`HH\Lib\Str\join`, definition.KindFunction, "hsl/str.php", 1, "Joins."),
		doc(`HH\Map`, definition.KindClass, "hhi/map.hhi", 1, "Map."),
		doc(`HH\Map`, definition.KindClass, "rt/map.php", 1, "Map runtime."),
	}
	want := MergeAll(docs)
	for range 20 {
		shuffled := append([]definition.Documentable(nil), docs...)
		rand.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		assert.Equal(t, want, MergeAll(shuffled))
	}
	require.Len(t, want, 3)
	assert.Equal(t, "hhi/vec.hhi", want[2].Definition.Location.File)
}
