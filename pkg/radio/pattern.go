package radio

import (
	"fmt"
	"math"

	"github.com/taigrr/ratracer/pkg/math3d"
)

// Pattern is an antenna radiation pattern. cosTheta is the cosine between
// the ray and the antenna boresight; cosPhi is the cosine of the azimuth
// around the boresight, measured from the antenna's up vector.
type Pattern interface {
	Gain(cosTheta, cosPhi float64) float64
}

// Isotropic radiates equally in every direction.
type Isotropic struct{}

// Gain returns 1.
func (Isotropic) Gain(float64, float64) float64 { return 1 }

// Dipole is a half-wave dipole whose wire is perpendicular to the
// boresight. It does not radiate into the back hemisphere.
type Dipole struct{}

// Gain returns |cos(π/2·sinθ) / cosθ|.
func (Dipole) Gain(cosTheta, _ float64) float64 {
	if cosTheta < math3d.Tolerance {
		return 0
	}
	return math.Abs(math.Cos(math.Pi/2*sine(cosTheta)) / cosTheta)
}

// Patch is a rectangular microstrip patch of the given size in metres.
type Patch struct {
	Width      float64
	Height     float64
	Wavelength float64
}

// Gain returns the patch array factor times the element factor.
func (p Patch) Gain(cosTheta, cosPhi float64) float64 {
	return math.Abs(p.factor(cosTheta, cosPhi)) *
		math.Sqrt(cosPhi*cosPhi+cosTheta*cosTheta*(1-cosPhi*cosPhi))
}

func (p Patch) factor(cosTheta, cosPhi float64) float64 {
	sinTheta, sinPhi := sine(cosTheta), sine(cosPhi)
	kw := math.Pi / p.Wavelength * p.Width
	kh := math.Pi / p.Wavelength * p.Height

	switch {
	case cosTheta < math3d.Tolerance:
		return 0
	case sinTheta < math3d.Tolerance:
		return 1
	case sinPhi < math3d.Tolerance:
		return math.Cos(kh * sinTheta)
	}
	x := kw * sinTheta * sinPhi
	return math.Sin(x) * math.Cos(kh*sinTheta*cosPhi) / x
}

// PatternSpec is the declarative form of a Pattern.
type PatternSpec struct {
	Kind   string  `json:"kind"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
}

// Pattern builds the described pattern for the given wavelength. An empty
// kind is Isotropic.
func (s PatternSpec) Pattern(wavelength float64) (Pattern, error) {
	switch s.Kind {
	case "", "isotropic":
		return Isotropic{}, nil
	case "dipole":
		return Dipole{}, nil
	case "patch":
		if s.Width <= 0 || s.Height <= 0 {
			return nil, fmt.Errorf("patch: width and height must be positive, got %vx%v", s.Width, s.Height)
		}
		return Patch{Width: s.Width, Height: s.Height, Wavelength: wavelength}, nil
	default:
		return nil, fmt.Errorf("pattern %q: %w", s.Kind, ErrUnknownKind)
	}
}
