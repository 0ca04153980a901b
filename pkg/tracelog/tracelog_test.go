package tracelog

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/taigrr/ratracer/pkg/math3d"
	"github.com/taigrr/ratracer/pkg/scene"
	"github.com/taigrr/ratracer/pkg/shape"
	"github.com/taigrr/ratracer/pkg/tracer"
)

func TestLoggerAcceptedPaths(t *testing.T) {
	ground := shape.MustPlane(math3d.Zero3(), math3d.V3(0, 0, 1))
	sc, err := scene.New(ground)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	log := New(&buf, WithNoColor(), WithNames(map[shape.ID]string{ground.ID(): "ground"}))
	res, err := tracer.New(sc, tracer.WithObserver(log)).Trace(math3d.V3(0, 0, 2), math3d.V3(10, 0, 2), 1)
	if err != nil {
		t.Fatal(err)
	}
	if res.Len() != 2 {
		t.Fatalf("got %d paths, want 2", res.Len())
	}

	out := buf.String()
	for _, want := range []string{"path [los] length 10.000", "path [ground]", "(5, 0, 0)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "candidate") {
		t.Errorf("non-verbose output lists candidates:\n%s", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("no-color output contains escape codes:\n%s", out)
	}

	want := Stats{Candidates: 2, Accepted: 2}
	if got := log.Stats(); got != want {
		t.Errorf("Stats() = %+v, want %+v", got, want)
	}
}

func TestLoggerRejections(t *testing.T) {
	wall := shape.MustPlane(math3d.V3(5, 0, 0), math3d.V3(1, 0, 0))
	sc, err := scene.New(wall)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	log := New(&buf, WithNoColor(), WithVerbose(true))
	res, err := tracer.New(sc, tracer.WithObserver(log)).Trace(math3d.V3(0, 0, 1), math3d.V3(10, 3, 1), 1)
	if err != nil {
		t.Fatal(err)
	}
	if res.Len() != 0 {
		t.Fatalf("got %d paths through the wall, want 0", res.Len())
	}

	s := log.Stats()
	if s.Candidates != 2 || s.Accepted != 0 || s.Missed+s.Shadowed != 2 || s.Shadowed < 1 {
		t.Errorf("Stats() = %+v", s)
	}
	out := buf.String()
	for _, want := range []string{"candidate [los]", "rejected [los]: shadowed by #" + wall.ID().String()} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	log.Summary()
	if got := buf.String(); !strings.Contains(got, "2 candidates, 0 paths") {
		t.Errorf("Summary() = %q", got)
	}
}

func TestLoggerConcurrent(t *testing.T) {
	a := shape.MustPlane(math3d.Zero3(), math3d.V3(0, 0, 1))
	b := shape.MustPlane(math3d.V3(0, 0, 10), math3d.V3(0, 0, -1))
	c := shape.MustPlane(math3d.V3(0, 10, 0), math3d.V3(0, -1, 0))
	sc, err := scene.New(a, b, c)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	log := New(&buf, WithVerbose(true))
	tr := tracer.New(sc, tracer.WithObserver(log), tracer.WithWorkers(4))
	res, err := tr.TraceParallel(context.Background(), math3d.V3(0, 0, 3), math3d.V3(8, 2, 4), 3)
	if err != nil {
		t.Fatal(err)
	}

	s := log.Stats()
	if want := tracer.CountAllSequences(3, 3); s.Candidates != int64(want) {
		t.Errorf("Candidates = %d, want %d", s.Candidates, want)
	}
	if s.Accepted != int64(res.Len()) {
		t.Errorf("Accepted = %d, want %d", s.Accepted, res.Len())
	}
	if got := strings.Count(buf.String(), "\n"); got == 0 {
		t.Error("nothing logged")
	}
}
