package radio

import "math"

// FreeSpace returns the free-space power gain (λ / 4πd)² between isotropic
// antennas d metres apart.
func FreeSpace(d, f float64) float64 {
	k := Wavelength(f) / (4 * math.Pi)
	return (k / d) * (k / d)
}

// TwoRay returns the power gain of the direct ray plus one ground
// reflection between antennas at heights hTx and hRx separated by the
// horizontal distance d. gamma is the (real) ground reflection coefficient
// and gain gives the product of both antenna gains for a ray with the given
// depression angle.
func TwoRay(d, hTx, hRx, f, gamma float64, gain func(angle float64) float64) float64 {
	if gain == nil {
		gain = func(float64) float64 { return 1 }
	}
	d0 := math.Hypot(hTx-hRx, d)
	d1 := math.Hypot(hTx+hRx, d)
	g0 := gain(math.Atan2(d, hTx-hRx))
	g1 := gain(math.Atan2(d, hTx+hRx))
	k := Wavelength(f) / (4 * math.Pi)
	return k * k * ((g0/d0)*(g0/d0) + (g1*gamma/d1)*(g1*gamma/d1) +
		2*g0*g1*gamma/(d0*d1)*math.Cos((d1-d0)/(2*k)))
}
