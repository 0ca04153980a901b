package radio

import "github.com/taigrr/ratracer/pkg/math3d"

// Device is a transmitter or receiver antenna placed in the scene.
type Device struct {
	Position math3d.Vec3
	Axis     math3d.Vec3 // boresight
	Up       math3d.Vec3 // azimuth reference, need not be orthogonal to Axis
	Pattern  Pattern     // nil means Isotropic
}

// GainToward returns the pattern gain for a ray leaving the device along
// dir. dir need not be normalized.
func (d Device) GainToward(dir math3d.Vec3) float64 {
	if d.Pattern == nil {
		return 1
	}
	dir = dir.Normalize()
	axis := d.Axis.Normalize()
	if axis == math3d.Zero3() {
		return d.Pattern.Gain(1, 1)
	}
	cosTheta := dir.Dot(axis)

	cosPhi := 1.0
	up := d.Up.Sub(axis.Scale(d.Up.Dot(axis))).Normalize()
	side := dir.Sub(axis.Scale(cosTheta)).Normalize()
	if up != math3d.Zero3() && side != math3d.Zero3() {
		cosPhi = side.Dot(up)
	}
	return d.Pattern.Gain(cosTheta, cosPhi)
}

// At returns a copy of d moved to p.
func (d Device) At(p math3d.Vec3) Device {
	d.Position = p
	return d
}
