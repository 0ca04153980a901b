package shape

import (
	"cmp"
	"fmt"
	"maps"
	"slices"

	"github.com/taigrr/ratracer/pkg/math3d"
)

// Build creates one plane per anchor→normal entry. Planes are created in
// lexicographic anchor order so their ids are reproducible.
func Build(specs map[[3]float64][3]float64) ([]*Plane, error) {
	anchors := slices.SortedFunc(maps.Keys(specs), func(a, b [3]float64) int {
		return cmp.Or(cmp.Compare(a[0], b[0]), cmp.Compare(a[1], b[1]), cmp.Compare(a[2], b[2]))
	})
	planes := make([]*Plane, 0, len(anchors))
	for _, a := range anchors {
		p, err := NewPlane(math3d.FromArray(a), math3d.FromArray(specs[a]))
		if err != nil {
			return nil, fmt.Errorf("build plane at %v: %w", a, err)
		}
		planes = append(planes, p)
	}
	return planes, nil
}
