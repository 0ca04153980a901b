package radio

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
)

// ErrUnknownKind is returned for an unknown reflectivity or pattern kind.
var ErrUnknownKind = errors.New("unknown kind")

// DefaultReflectance is used for surfaces without a material.
const DefaultReflectance = 0.9

// Reflectivity gives the complex reflection coefficient of a surface for a
// ray with the given incidence cosine (relative to the surface normal) at
// frequency f.
type Reflectivity interface {
	Coefficient(cos, f float64) complex128
}

// Constant reflects every ray with the same coefficient.
type Constant struct {
	Value float64
}

// Coefficient returns Value.
func (c Constant) Coefficient(float64, float64) complex128 {
	return complex(c.Value, 0)
}

// Fresnel is a smooth dielectric half-space with losses.
type Fresnel struct {
	Permittivity float64 // relative permittivity ε
	Conductivity float64 // σ in S/m
	// Polarization weights the perpendicular (TE) coefficient against the
	// parallel (TM) one: 1 is pure TE, 0 is pure TM.
	Polarization float64
	// Frequency, when positive, fixes the frequency used for the complex
	// permittivity instead of the one passed to Coefficient.
	Frequency float64
}

// Eta returns the complex relative permittivity ε - j·60·λ·σ.
func (m Fresnel) Eta(f float64) complex128 {
	if m.Frequency > 0 {
		f = m.Frequency
	}
	return complex(m.Permittivity, -60*Wavelength(f)*m.Conductivity)
}

// Coefficient returns the weighted TE/TM reflection coefficient.
func (m Fresnel) Coefficient(cos, f float64) complex128 {
	eta := m.Eta(f)
	c := complex(math.Abs(cos), 0)
	root := cmplx.Sqrt(eta - complex(1-real(c)*real(c), 0))
	te := (c - root) / (c + root)
	tm := (eta*c - root) / (eta*c + root)
	p := complex(m.Polarization, 0)
	return p*te + (1-p)*tm
}

// MaterialSpec is the declarative form of a Reflectivity.
type MaterialSpec struct {
	Kind         string  `json:"kind"`
	Value        float64 `json:"value,omitempty"`
	Permittivity float64 `json:"permittivity,omitempty"`
	Conductivity float64 `json:"conductivity,omitempty"`
	Polarization float64 `json:"polarization,omitempty"`
	Frequency    float64 `json:"frequency,omitempty"`
}

// Reflectivity builds the described model. An empty kind is a Constant
// with DefaultReflectance.
func (s MaterialSpec) Reflectivity() (Reflectivity, error) {
	switch s.Kind {
	case "":
		return Constant{Value: DefaultReflectance}, nil
	case "constant":
		return Constant{Value: s.Value}, nil
	case "fresnel":
		if s.Permittivity <= 0 {
			return nil, fmt.Errorf("fresnel: permittivity must be positive, got %v", s.Permittivity)
		}
		return Fresnel{
			Permittivity: s.Permittivity,
			Conductivity: s.Conductivity,
			Polarization: s.Polarization,
			Frequency:    s.Frequency,
		}, nil
	default:
		return nil, fmt.Errorf("reflectivity %q: %w", s.Kind, ErrUnknownKind)
	}
}
