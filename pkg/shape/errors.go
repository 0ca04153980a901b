package shape

import (
	"errors"
	"fmt"

	"github.com/taigrr/ratracer/pkg/math3d"
)

// ErrInvalidSurface is returned when a reflecting surface cannot be built.
var ErrInvalidSurface = errors.New("invalid surface")

// SurfaceError describes a rejected surface.
type SurfaceError struct {
	Anchor math3d.Vec3
	Normal math3d.Vec3
	Reason string
}

func (e *SurfaceError) Error() string {
	return fmt.Sprintf("%v: %s (anchor %v, normal %v)", ErrInvalidSurface, e.Reason, e.Anchor, e.Normal)
}

// Unwrap returns ErrInvalidSurface.
func (e *SurfaceError) Unwrap() error {
	return ErrInvalidSurface
}
