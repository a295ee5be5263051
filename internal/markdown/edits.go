package markdown

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Edit replaces src[Start:End] with Replacement. Offsets refer to the
// original source; End is exclusive.
type Edit struct {
	Start       int
	End         int
	Replacement string
}

// ErrOverlappingEdits is returned when two edits touch the same bytes.
var ErrOverlappingEdits = errors.New("overlapping edits")

// ApplyEdits applies non-overlapping edits to src. Edits are applied back to
// front so offsets stay valid; their input order is irrelevant.
func ApplyEdits(src string, edits []Edit) (string, error) {
	if len(edits) == 0 {
		return src, nil
	}
	sorted := slices.Clone(edits)
	slices.SortFunc(sorted, func(a, b Edit) int { return a.Start - b.Start })

	for i, e := range sorted {
		if e.Start < 0 || e.End < e.Start || e.End > len(src) {
			return "", fmt.Errorf("edit %d: invalid range [%d,%d) for %d bytes", i, e.Start, e.End, len(src))
		}
		if i > 0 && sorted[i-1].End > e.Start {
			return "", ErrOverlappingEdits
		}
	}

	var b strings.Builder
	b.Grow(len(src))
	last := 0
	for _, e := range sorted {
		b.WriteString(src[last:e.Start])
		b.WriteString(e.Replacement)
		last = e.End
	}
	b.WriteString(src[last:])
	return b.String(), nil
}
