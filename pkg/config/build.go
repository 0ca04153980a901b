package config

import (
	"fmt"
	"math"

	"github.com/taigrr/ratracer/pkg/math3d"
	"github.com/taigrr/ratracer/pkg/models"
	"github.com/taigrr/ratracer/pkg/radio"
	"github.com/taigrr/ratracer/pkg/scene"
	"github.com/taigrr/ratracer/pkg/shape"
	"github.com/taigrr/ratracer/pkg/tracer"
)

// Surface is a built reflecting plane with its drawable outline.
type Surface struct {
	Name     string
	Plane    *shape.Plane
	Mesh     *models.Mesh
	Material radio.Reflectivity
}

// Sweep is a resolved receiver sweep.
type Sweep struct {
	Direction math3d.Vec3
	Distances []float64
}

// Setup is everything needed to run a configured query.
type Setup struct {
	Surfaces       []Surface
	Scene          *scene.Scene
	Tracer         *tracer.Tracer
	Model          *radio.Model
	Tx             radio.Device
	Rx             radio.Device
	MaxReflections int
	Sweep          *Sweep
}

// Build validates c and creates the scene, tracer and pathloss model. opts
// are passed to the tracer.
func (c *Config) Build(opts ...tracer.Option) (*Setup, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	var surfaces []Surface

	extent := math.Max(10, 1.5*math3d.FromArray(c.Tx.Position).Distance(math3d.FromArray(c.Rx.Position)))
	for i, sc := range c.Surfaces {
		name := sc.Name
		if name == "" {
			name = fmt.Sprintf("surface%d", i)
		}
		p, err := shape.NewPlane(math3d.FromArray(sc.Point), math3d.FromArray(sc.Normal))
		if err != nil {
			return nil, fmt.Errorf("surface %q: %w", name, err)
		}
		r, err := sc.Material.Reflectivity()
		if err != nil {
			return nil, fmt.Errorf("surface %q: %w", name, err)
		}
		surfaces = append(surfaces, Surface{
			Name:     name,
			Plane:    p,
			Mesh:     models.Quad(name, p.Anchor(), p.Normal(), extent),
			Material: r,
		})
	}

	if c.Model != "" {
		imported, err := c.loadModel()
		if err != nil {
			return nil, err
		}
		surfaces = append(surfaces, imported...)
	}

	planes := make([]*shape.Plane, len(surfaces))
	for i, s := range surfaces {
		planes[i] = s.Plane
	}
	sc, err := scene.New(planes...)
	if err != nil {
		return nil, fmt.Errorf("build scene: %w", err)
	}
	tr := tracer.New(sc, opts...)

	mopts := make([]radio.ModelOption, 0, len(surfaces))
	for _, s := range surfaces {
		mopts = append(mopts, radio.WithMaterial(s.Plane.ID(), s.Material))
	}
	model := radio.NewModel(tr, c.Frequency, mopts...)

	wavelength := radio.Wavelength(c.Frequency)
	tx, err := c.Tx.device(c.Rx.Position, wavelength)
	if err != nil {
		return nil, fmt.Errorf("tx: %w", err)
	}
	rx, err := c.Rx.device(c.Tx.Position, wavelength)
	if err != nil {
		return nil, fmt.Errorf("rx: %w", err)
	}

	setup := &Setup{
		Surfaces:       surfaces,
		Scene:          sc,
		Tracer:         tr,
		Model:          model,
		Tx:             tx,
		Rx:             rx,
		MaxReflections: *c.MaxReflections,
	}
	if s := c.Sweep; s != nil {
		setup.Sweep = &Sweep{
			Direction: math3d.FromArray(axes[s.Axis]),
			Distances: radio.Distances(s.From, s.To, s.Steps),
		}
	}
	return setup, nil
}

func (c *Config) loadModel() ([]Surface, error) {
	overrides := make(map[string]radio.MaterialSpec, len(c.Materials))
	for _, m := range c.Materials {
		overrides[m.Mesh] = m.Material
	}

	imported, err := models.LoadSurfaces(c.ModelPath(), c.PlanarityRMS)
	if err != nil {
		return nil, fmt.Errorf("model: %w", err)
	}
	surfaces := make([]Surface, 0, len(imported))
	for _, s := range imported {
		spec := s.Material
		if o, ok := overrides[s.Name]; ok {
			spec = o
		}
		r, err := spec.Reflectivity()
		if err != nil {
			return nil, fmt.Errorf("mesh %q: %w", s.Name, err)
		}
		surfaces = append(surfaces, Surface{Name: s.Name, Plane: s.Plane, Mesh: s.Mesh, Material: r})
	}
	return surfaces, nil
}

// device builds the antenna. A missing axis points at peer and a missing
// up vector is +Z.
func (d DeviceCfg) device(peer Vec, wavelength float64) (radio.Device, error) {
	pattern, err := d.Pattern.Pattern(wavelength)
	if err != nil {
		return radio.Device{}, err
	}
	pos := math3d.FromArray(d.Position)
	axis := math3d.FromArray(d.Axis)
	if axis == math3d.Zero3() {
		axis = math3d.FromArray(peer).Sub(pos)
	}
	up := math3d.FromArray(d.Up)
	if up == math3d.Zero3() {
		up = math3d.V3(0, 0, 1)
	}
	return radio.Device{Position: pos, Axis: axis, Up: up, Pattern: pattern}, nil
}
