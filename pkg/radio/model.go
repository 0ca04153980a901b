package radio

import (
	"context"
	"fmt"
	"math/cmplx"

	"github.com/taigrr/ratracer/pkg/math3d"
	"github.com/taigrr/ratracer/pkg/shape"
	"github.com/taigrr/ratracer/pkg/tracer"
)

// Contribution is the complex amplitude one traced path adds to the
// received signal.
type Contribution struct {
	Path        int        // index in the trace result
	Length      float64    // travelled distance
	Reflectance complex128 // product of the reflection coefficients
	TxGain      float64
	RxGain      float64
	Amplitude   complex128
}

// Model is the k-ray pathloss model: the received amplitude is the sum over
// traced paths of ½/(kL)·e^{-jkL}·ΠΓ·G_tx·G_rx.
//
// A Model may be used concurrently once configured. SetFrequency and
// SetMaterial must not race with evaluation.
type Model struct {
	tracer    *tracer.Tracer
	frequency float64
	k         float64
	materials map[shape.ID]Reflectivity
	fallback  Reflectivity
}

// ModelOption configures a Model.
type ModelOption func(*Model)

// WithMaterial assigns a reflectivity to surface id.
func WithMaterial(id shape.ID, r Reflectivity) ModelOption {
	return func(m *Model) {
		m.materials[id] = r
	}
}

// WithDefaultReflectivity sets the reflectivity of surfaces without a
// material. The default is Constant{DefaultReflectance}.
func WithDefaultReflectivity(r Reflectivity) ModelOption {
	return func(m *Model) {
		m.fallback = r
	}
}

// NewModel creates a pathloss model over tr at frequency f in Hz.
func NewModel(tr *tracer.Tracer, f float64, opts ...ModelOption) *Model {
	m := &Model{
		tracer:    tr,
		materials: make(map[shape.ID]Reflectivity),
		fallback:  Constant{Value: DefaultReflectance},
	}
	m.SetFrequency(f)
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Tracer returns the underlying tracer.
func (m *Model) Tracer() *tracer.Tracer {
	return m.tracer
}

// Frequency returns the carrier frequency in Hz.
func (m *Model) Frequency() float64 {
	return m.frequency
}

// SetFrequency changes the carrier frequency and the derived wave number.
func (m *Model) SetFrequency(f float64) {
	m.frequency = f
	m.k = WaveNumber(f)
}

// SetMaterial assigns a reflectivity to surface id.
func (m *Model) SetMaterial(id shape.ID, r Reflectivity) {
	m.materials[id] = r
}

// Reflectivity returns the reflectivity used for surface id.
func (m *Model) Reflectivity(id shape.ID) Reflectivity {
	if r, ok := m.materials[id]; ok && r != nil {
		return r
	}
	return m.fallback
}

// Pathloss traces from tx to rx and returns the summed complex amplitude.
func (m *Model) Pathloss(tx, rx Device, maxReflections int) (complex128, error) {
	res, err := m.tracer.Trace(tx.Position, rx.Position, maxReflections)
	if err != nil {
		return 0, fmt.Errorf("pathloss: %w", err)
	}
	return m.Sum(res, tx, rx), nil
}

// PathlossParallel is like Pathloss but traces with TraceParallel.
func (m *Model) PathlossParallel(ctx context.Context, tx, rx Device, maxReflections int) (complex128, error) {
	res, err := m.tracer.TraceParallel(ctx, tx.Position, rx.Position, maxReflections)
	if err != nil {
		return 0, fmt.Errorf("pathloss: %w", err)
	}
	return m.Sum(res, tx, rx), nil
}

// Sum adds the contributions of every path in res.
func (m *Model) Sum(res *tracer.Result, tx, rx Device) complex128 {
	var total complex128
	for i := range res.Len() {
		total += m.contribution(res, i, tx, rx).Amplitude
	}
	return total
}

// Contributions returns the per-path amplitudes of res.
func (m *Model) Contributions(res *tracer.Result, tx, rx Device) []Contribution {
	out := make([]Contribution, res.Len())
	for i := range out {
		out[i] = m.contribution(res, i, tx, rx)
	}
	return out
}

func (m *Model) contribution(res *tracer.Result, i int, tx, rx Device) Contribution {
	p := res.Path(i)
	c := Contribution{
		Path:        i,
		Length:      p.Length(),
		Reflectance: 1,
		TxGain:      1,
		RxGain:      1,
	}
	for _, seg := range p {
		if seg.Shape != shape.NoID {
			c.Reflectance *= m.Reflectivity(seg.Shape).Coefficient(seg.Cosine, m.frequency)
		}
	}
	if len(p) > 0 {
		c.TxGain = tx.GainToward(p[0].Direction)
		c.RxGain = rx.GainToward(p[len(p)-1].Direction.Negate())
	}
	c.Amplitude = rayAmplitude(m.k, c.Length) * c.Reflectance * complex(c.TxGain*c.RxGain, 0)
	return c
}

func rayAmplitude(k, length float64) complex128 {
	kl := k * length
	if kl < math3d.Tolerance {
		return 0
	}
	return complex(0.5/kl, 0) * cmplx.Exp(complex(0, -kl))
}
