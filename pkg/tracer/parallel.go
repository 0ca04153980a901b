package tracer

import (
	"context"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/taigrr/ratracer/pkg/math3d"
	"github.com/taigrr/ratracer/pkg/shape"
)

// batchSize is the number of candidate sequences handed to one worker task.
const batchSize = 256

type batch struct {
	seqs  [][]shape.ID
	paths []Path // one entry per seq, nil when rejected
}

// TraceParallel is like Trace but spreads candidate sequences over worker
// goroutines. Each worker fills only its own batch and batches are merged
// in enumeration order, so the result equals the serial trace. Tracing stops
// early with the context's error when ctx is done.
func (t *Tracer) TraceParallel(ctx context.Context, start, end math3d.Vec3, maxReflections int) (*Result, error) {
	if err := t.validate(start, end, maxReflections); err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.opts.workers)

	var batches []*batch
	cur := &batch{}
	flush := func() {
		b := cur
		batches = append(batches, b)
		cur = &batch{}
		g.Go(func() error {
			return t.traceBatch(gctx, start, end, b, maxReflections)
		})
	}
	for seq := range AllSequences(t.scene.IDs(), maxReflections) {
		if gctx.Err() != nil {
			break
		}
		cur.seqs = append(cur.seqs, slices.Clone(seq))
		if len(cur.seqs) == batchSize {
			flush()
		}
	}
	if len(cur.seqs) > 0 {
		flush()
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	// The enumeration loop may have stopped without any task failing.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := NewResult(start, end)
	for _, b := range batches {
		for _, p := range b.paths {
			if p != nil {
				res.Save(p)
			}
		}
	}
	return res, nil
}

func (t *Tracer) traceBatch(ctx context.Context, start, end math3d.Vec3, b *batch, maxReflections int) error {
	images := make([]math3d.Vec3, 0, min(maxReflections, imagesCap))
	b.paths = make([]Path, len(b.seqs))
	for i, seq := range b.seqs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if p, ok := t.tracePath(start, end, seq, images); ok {
			b.paths[i] = p
		}
	}
	return nil
}
