package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/taigrr/ratracer/pkg/math3d"
	"github.com/taigrr/ratracer/pkg/radio"
)

const twoPlanes = `{
  "frequency": 860e6,
  "maxReflections": 3,
  "surfaces": [
    {"name": "ground", "point": [0, 0, 0], "normal": [0, 0, 1],
     "material": {"kind": "fresnel", "permittivity": 15, "conductivity": 0.005, "polarization": 1}},
    {"name": "ceiling", "point": [0, 0, 10], "normal": [0, 0, -1]}
  ],
  "tx": {"position": [0, 0, 5], "pattern": {"kind": "dipole"}},
  "rx": {"position": [0, 10, 5]}
}`

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`{"tx": {"position": [0, 0, 5]}, "rx": {"position": [0, 10, 5]}}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Frequency != DefaultFrequency {
		t.Errorf("Frequency = %v, want %v", cfg.Frequency, DefaultFrequency)
	}
	if *cfg.MaxReflections != DefaultMaxReflections {
		t.Errorf("MaxReflections = %v, want %v", *cfg.MaxReflections, DefaultMaxReflections)
	}
}

func TestParseZeroReflectionsIsKept(t *testing.T) {
	cfg, err := Parse([]byte(`{"maxReflections": 0, "tx": {"position": [0, 0, 5]}, "rx": {"position": [0, 10, 5]}}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if *cfg.MaxReflections != 0 {
		t.Errorf("MaxReflections = %v, want 0", *cfg.MaxReflections)
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		field string
	}{
		{"negative frequency", `{"frequency": -1, "rx": {"position": [1, 0, 0]}}`, "frequency"},
		{"negative bound", `{"maxReflections": -1, "rx": {"position": [1, 0, 0]}}`, "maxReflections"},
		{"zero normal", `{"surfaces": [{"point": [0, 0, 0], "normal": [0, 0, 0]}], "rx": {"position": [1, 0, 0]}}`, "surfaces[0].normal"},
		{"same position", `{"tx": {"position": [1, 2, 3]}, "rx": {"position": [1, 2, 3]}}`, "rx.position"},
		{"bad sweep axis", `{"rx": {"position": [1, 0, 0]}, "sweep": {"axis": "w", "from": 1, "to": 2}}`, "sweep.axis"},
		{"reversed sweep", `{"rx": {"position": [1, 0, 0]}, "sweep": {"axis": "y", "from": 3, "to": 2}}`, "sweep.to"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("err = %v, want ErrInvalidConfig", err)
			}
			var fe *FieldError
			if !errors.As(err, &fe) || fe.Field != tt.field {
				t.Errorf("err = %v, want field %q", err, tt.field)
			}
		})
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	if _, err := Parse([]byte(`{"reflections": 2}`)); err == nil {
		t.Error("unknown field accepted")
	}
}

func TestBuild(t *testing.T) {
	cfg, err := Parse([]byte(twoPlanes))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	setup, err := cfg.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if setup.Scene.Len() != 2 || len(setup.Surfaces) != 2 {
		t.Fatalf("scene has %d surfaces, want 2", setup.Scene.Len())
	}
	if setup.MaxReflections != 3 {
		t.Errorf("MaxReflections = %d, want 3", setup.MaxReflections)
	}
	ground := setup.Surfaces[0]
	if _, ok := ground.Material.(radio.Fresnel); !ok {
		t.Errorf("ground material = %T, want radio.Fresnel", ground.Material)
	}
	if got := setup.Model.Reflectivity(setup.Surfaces[1].Plane.ID()); got != (radio.Constant{Value: radio.DefaultReflectance}) {
		t.Errorf("ceiling reflectivity = %v", got)
	}
	if _, ok := setup.Tx.Pattern.(radio.Dipole); !ok {
		t.Errorf("tx pattern = %T, want radio.Dipole", setup.Tx.Pattern)
	}
	if !setup.Tx.Axis.Normalize().ApproxEqual(math3d.V3(0, 1, 0), 1e-12) {
		t.Errorf("tx axis = %v, want toward rx", setup.Tx.Axis)
	}

	res, err := setup.Tracer.Trace(setup.Tx.Position, setup.Rx.Position, setup.MaxReflections)
	if err != nil {
		t.Fatalf("Trace: %v", err)
	}
	if res.Len() != 7 {
		t.Errorf("got %d paths, want 7", res.Len())
	}
}

func TestBuildUnknownMaterial(t *testing.T) {
	cfg, err := Parse([]byte(`{
	  "surfaces": [{"point": [0, 0, 0], "normal": [0, 0, 1], "material": {"kind": "granite"}}],
	  "tx": {"position": [0, 0, 5]}, "rx": {"position": [0, 10, 5]}
	}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, err := cfg.Build(); !errors.Is(err, radio.ErrUnknownKind) {
		t.Errorf("err = %v, want radio.ErrUnknownKind", err)
	}
}

func TestBuildSweep(t *testing.T) {
	cfg, err := Parse([]byte(`{
	  "tx": {"position": [0, 0, 5]}, "rx": {"position": [0, 0, 0.5]},
	  "sweep": {"axis": "y", "from": 0.1, "to": 20}
	}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	setup, err := cfg.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if setup.Sweep == nil || len(setup.Sweep.Distances) != DefaultSweepSteps {
		t.Fatalf("Sweep = %+v", setup.Sweep)
	}
	if setup.Sweep.Direction != math3d.V3(0, 1, 0) {
		t.Errorf("sweep direction = %v", setup.Sweep.Direction)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.json")
	if err := os.WriteFile(path, []byte(twoPlanes), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Surfaces) != 2 || cfg.Surfaces[0].Name != "ground" {
		t.Errorf("surfaces = %+v", cfg.Surfaces)
	}
	cfg.Model = "room.glb"
	if got := cfg.ModelPath(); got != filepath.Join(dir, "room.glb") {
		t.Errorf("ModelPath = %q", got)
	}

	if _, err := Load(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("missing file accepted")
	}
}

func TestLoadDefersValidation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.json")
	doc := `{"frequency": -1, "maxReflections": -2, "tx": {"position": [0, 0, 5]}, "rx": {"position": [0, 10, 5]}}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := cfg.Build(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Build before overrides: err = %v, want ErrInvalidConfig", err)
	}

	k := 1
	cfg.Frequency = 2.4e9
	cfg.MaxReflections = &k
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate after overrides: %v", err)
	}
	setup, err := cfg.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if setup.MaxReflections != 1 || setup.Model.Frequency() != 2.4e9 {
		t.Errorf("setup = k %d, f %v", setup.MaxReflections, setup.Model.Frequency())
	}
}

func TestBuildModelMissing(t *testing.T) {
	cfg, err := Parse([]byte(`{"model": "/nonexistent/room.glb", "tx": {"position": [0, 0, 5]}, "rx": {"position": [0, 10, 5]}}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, err := cfg.Build(); err == nil {
		t.Error("missing model accepted")
	}
}
