package main

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/taigrr/ratracer/pkg/config"
	"github.com/taigrr/ratracer/pkg/shape"
)

const groundScene = `{
  "frequency": 1e9,
  "maxReflections": 1,
  "surfaces": [
    {"name": "ground", "point": [0, 0, 0], "normal": [0, 0, 1],
     "material": {"kind": "constant", "value": 0.5}}
  ],
  "tx": {"position": [0, 0, 5]},
  "rx": {"position": [0, 10, 5]}
}`

func traceGround(t *testing.T) *report {
	t.Helper()
	cfg, err := config.Parse([]byte(groundScene))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	setup, err := cfg.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	res, err := setup.Tracer.Trace(setup.Tx.Position, setup.Rx.Position, setup.MaxReflections)
	if err != nil {
		t.Fatalf("Trace: %v", err)
	}
	names := map[shape.ID]string{}
	for _, s := range setup.Surfaces {
		names[s.Plane.ID()] = s.Name
	}
	return newReport("scenes/ground.json", cfg.Frequency, setup, res, names)
}

func TestNewReport(t *testing.T) {
	rep := traceGround(t)

	if _, err := uuid.Parse(rep.ID); err != nil {
		t.Errorf("ID %q is not a uuid: %v", rep.ID, err)
	}
	if rep.Scene != "ground.json" {
		t.Errorf("Scene = %q, want ground.json", rep.Scene)
	}
	if rep.Triangles != 2 {
		t.Errorf("Triangles = %d, want 2 for one quad", rep.Triangles)
	}
	if len(rep.Paths) != 2 {
		t.Fatalf("got %d paths, want 2", len(rep.Paths))
	}

	los, bounce := rep.Paths[0], rep.Paths[1]
	if los.Reflections != 0 || math.Abs(los.Length-10) > 1e-9 {
		t.Errorf("line of sight = %+v", los)
	}
	if bounce.Reflections != 1 || len(bounce.Surfaces) != 1 || bounce.Surfaces[0] != "ground" {
		t.Errorf("ground path = %+v", bounce)
	}
	if want := math.Sqrt(200); math.Abs(bounce.Length-want) > 1e-9 {
		t.Errorf("ground path length = %v, want %v", bounce.Length, want)
	}
	if math.Abs(bounce.Reflectance-0.5) > 1e-12 {
		t.Errorf("ground reflectance = %v, want 0.5", bounce.Reflectance)
	}
	if len(bounce.Points) != 3 || math.Abs(bounce.Points[1][2]) > 1e-9 {
		t.Errorf("ground path points = %v", bounce.Points)
	}
	if rep.PowerDB == nil || los.PowerDB == nil {
		t.Fatal("expected finite powers")
	}
	if *rep.PowerDB >= 0 {
		t.Errorf("received power %v dB should be a loss", *rep.PowerDB)
	}
}

func TestReportJSONNulls(t *testing.T) {
	rep := traceGround(t)
	rep.addSweep([]float64{1, 2}, []float64{-40, math.Inf(-1)})

	var buf bytes.Buffer
	if err := rep.writeJSON(&buf); err != nil {
		t.Fatalf("writeJSON: %v", err)
	}

	var got struct {
		Paths []struct {
			Surfaces []string `json:"surfaces"`
		} `json:"paths"`
		Sweep struct {
			PowerDB []*float64 `json:"powerDb"`
		} `json:"sweep"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if len(got.Paths) != 2 {
		t.Errorf("got %d paths, want 2", len(got.Paths))
	}
	if len(got.Sweep.PowerDB) != 2 || got.Sweep.PowerDB[0] == nil || got.Sweep.PowerDB[1] != nil {
		t.Errorf("sweep powers = %v, want [-40 null]", got.Sweep.PowerDB)
	}
}

func TestWriteTextPlain(t *testing.T) {
	rep := traceGround(t)
	rep.Elapsed = "1ms"

	var buf bytes.Buffer
	rep.writeText(&buf, false)
	out := buf.String()

	for _, want := range []string{"line of sight", "via ground", "2 paths", "elapsed 1ms"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("plain output contains escape codes:\n%s", out)
	}
}

func TestFormatDB(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{-42.126, "-42.13 dB"},
		{0, "0.00 dB"},
		{math.Inf(-1), "-inf dB"},
		{math.NaN(), "-inf dB"},
	}
	for _, tt := range tests {
		if got := formatDB(finiteOrNil(tt.in)); got != tt.want {
			t.Errorf("formatDB(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
