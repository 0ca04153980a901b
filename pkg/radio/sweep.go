package radio

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/taigrr/ratracer/pkg/math3d"
)

// Distances returns n evenly spaced values from lo to hi inclusive.
func Distances(lo, hi float64, n int) []float64 {
	if n < 2 {
		return []float64{lo}
	}
	return floats.Span(make([]float64, n), lo, hi)
}

// Sweep moves rx along dir by each of the given distances and returns the
// received power in dB at every position. Positions are evaluated on up to
// workers goroutines; workers < 1 means one per position.
func Sweep(ctx context.Context, m *Model, tx, rx Device, dir math3d.Vec3, distances []float64, maxReflections, workers int) ([]float64, error) {
	dir = dir.Normalize()
	if dir == math3d.Zero3() {
		return nil, fmt.Errorf("sweep: zero direction")
	}
	out := make([]float64, len(distances))

	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, d := range distances {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			at := rx.At(rx.Position.Add(dir.Scale(d)))
			pl, err := m.Pathloss(tx, at, maxReflections)
			if err != nil {
				return fmt.Errorf("sweep at %v: %w", d, err)
			}
			out[i] = ToLog(Power(pl))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
