package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestApplyEdits_SingleReplacement(t *testing.T) {
	src := "See `Vec\\map` for details.\n"
	old := "`Vec\\map`"
	idx := strings.Index(src, old)
	require.NotEqual(t, -1, idx)

	out, err := ApplyEdits(src, []Edit{{Start: idx, End: idx + len(old), Replacement: "[`Vec\\map`](/hsl/)"}})
	require.NoError(t, err)
	require.Equal(t, "See [`Vec\\map`](/hsl/) for details.\n", out)
}

func TestApplyEdits_OrderIndependent(t *testing.T) {
	src := "A: one\nB: two\n"
	i1 := strings.Index(src, "one")
	i2 := strings.Index(src, "two")

	out, err := ApplyEdits(src, []Edit{
		{Start: i2, End: i2 + 3, Replacement: "2"},
		{Start: i1, End: i1 + 3, Replacement: "1"},
	})
	require.NoError(t, err)
	require.Equal(t, "A: 1\nB: 2\n", out)
}

func TestApplyEdits_CRLFInputPreserved(t *testing.T) {
	src := "A: x\r\nB: x\r\n"
	idx := strings.Index(src, "x")

	out, err := ApplyEdits(src, []Edit{{Start: idx, End: idx + 1, Replacement: "y"}})
	require.NoError(t, err)
	require.Equal(t, "A: y\r\nB: x\r\n", out)
}

func TestApplyEdits_RejectsOverlappingEdits(t *testing.T) {
	_, err := ApplyEdits("abcdef", []Edit{
		{Start: 1, End: 4, Replacement: "X"},
		{Start: 3, End: 5, Replacement: "Y"},
	})
	require.ErrorIs(t, err, ErrOverlappingEdits)
}

func TestApplyEdits_RejectsOutOfBounds(t *testing.T) {
	_, err := ApplyEdits("abc", []Edit{{Start: 2, End: 9}})
	require.Error(t, err)
}
