// Package radio turns traced ray paths into received signal: surface
// reflectivity, antenna radiation patterns and the k-ray pathloss sum.
package radio

import (
	"math"
	"math/cmplx"
)

// LightSpeed is the speed of light in vacuum, in m/s.
const LightSpeed = 299792458.0

// PowerFloor is the smallest linear power ToLog maps to a finite value.
const PowerFloor = 1e-9

// Wavelength returns the free-space wavelength for frequency f in Hz.
func Wavelength(f float64) float64 {
	return LightSpeed / f
}

// WaveNumber returns 2π/λ for frequency f in Hz.
func WaveNumber(f float64) float64 {
	return 2 * math.Pi / Wavelength(f)
}

// ToLog converts a linear power ratio to dB. Values at or below PowerFloor
// map to -Inf.
func ToLog(p float64) float64 {
	if p <= PowerFloor {
		return math.Inf(-1)
	}
	return 10 * math.Log10(p)
}

// ToLinear converts dB to a linear power ratio.
func ToLinear(db float64) float64 {
	return math.Pow(10, db/10)
}

// Amplitude returns |s|.
func Amplitude(s complex128) float64 {
	return cmplx.Abs(s)
}

// Power returns |s|².
func Power(s complex128) float64 {
	a := cmplx.Abs(s)
	return a * a
}

// Phase returns the argument of s in radians.
func Phase(s complex128) float64 {
	return cmplx.Phase(s)
}

func sine(cos float64) float64 {
	return math.Sqrt(math.Max(0, 1-cos*cos))
}
