package render

import (
	"math"

	"github.com/taigrr/ratracer/pkg/math3d"
)

// maxElevation keeps the eye off the poles where LookAt degenerates.
const maxElevation = math.Pi/2 - 0.01

// Camera orbits a target point in a Z-up world.
type Camera struct {
	// Orbit parameters
	Target    math3d.Vec3
	Distance  float64 // Eye distance from Target
	Azimuth   float64 // Angle around +Z, measured from +X (radians)
	Elevation float64 // Angle above the XY plane (radians)

	// Projection parameters
	FOV         float64 // Vertical field of view in radians
	AspectRatio float64 // Width / Height
	Near        float64 // Near clipping plane
	Far         float64 // Far clipping plane

	// Cached matrices (computed on demand)
	viewMatrix     math3d.Mat4
	projMatrix     math3d.Mat4
	viewProjMatrix math3d.Mat4
	viewDirty      bool
	projDirty      bool
}

// NewCamera creates a camera looking at the origin from the south-west.
func NewCamera() *Camera {
	return &Camera{
		Distance:    20,
		Azimuth:     -3 * math.Pi / 4,
		Elevation:   math.Pi / 6,
		FOV:         math.Pi / 3, // 60 degrees
		AspectRatio: 16.0 / 9.0,
		Near:        0.1,
		Far:         1000,
		viewDirty:   true,
		projDirty:   true,
	}
}

// SetTarget moves the orbit centre.
func (c *Camera) SetTarget(target math3d.Vec3) {
	c.Target = target
	c.viewDirty = true
}

// SetOrbit sets azimuth, elevation (radians) and distance.
func (c *Camera) SetOrbit(azimuth, elevation, distance float64) {
	c.Azimuth = azimuth
	c.Elevation = clampElevation(elevation)
	c.Distance = math.Max(distance, c.Near)
	c.viewDirty = true
}

// Orbit rotates the eye around the target by the given angles.
func (c *Camera) Orbit(deltaAzimuth, deltaElevation float64) {
	c.SetOrbit(c.Azimuth+deltaAzimuth, c.Elevation+deltaElevation, c.Distance)
}

// Zoom scales the eye distance. Factors below one move closer.
func (c *Camera) Zoom(factor float64) {
	if factor <= 0 {
		return
	}
	c.SetOrbit(c.Azimuth, c.Elevation, c.Distance*factor)
}

// Frame points the camera at the centre of the box and backs off until the
// whole box fits the vertical field of view.
func (c *Camera) Frame(box AABB) {
	center := box.Center()
	radius := box.Max.Sub(box.Min).Len() / 2
	if radius < math3d.Tolerance {
		radius = 1
	}
	dist := 1.1 * radius / math.Sin(c.FOV/2)
	c.SetClipPlanes(dist/1000, 10*dist+4*radius)
	c.SetTarget(center)
	c.SetOrbit(c.Azimuth, c.Elevation, dist)
}

// SetAspectRatio sets the aspect ratio.
func (c *Camera) SetAspectRatio(aspect float64) {
	c.AspectRatio = aspect
	c.projDirty = true
}

// SetClipPlanes sets the near and far clipping planes.
func (c *Camera) SetClipPlanes(near, far float64) {
	c.Near = near
	c.Far = far
	c.projDirty = true
}

// Position returns the eye position in world space.
func (c *Camera) Position() math3d.Vec3 {
	ce := math.Cos(c.Elevation)
	offset := math3d.V3(
		ce*math.Cos(c.Azimuth),
		ce*math.Sin(c.Azimuth),
		math.Sin(c.Elevation),
	)
	return c.Target.Add(offset.Scale(c.Distance))
}

// Forward returns the unit viewing direction.
func (c *Camera) Forward() math3d.Vec3 {
	return c.Target.Sub(c.Position()).Normalize()
}

// ViewMatrix returns the view matrix.
func (c *Camera) ViewMatrix() math3d.Mat4 {
	if c.viewDirty {
		c.viewMatrix = math3d.LookAt(c.Position(), c.Target, math3d.V3(0, 0, 1))
		c.viewDirty = false
	}
	return c.viewMatrix
}

// ProjectionMatrix returns the projection matrix.
func (c *Camera) ProjectionMatrix() math3d.Mat4 {
	if c.projDirty {
		c.projMatrix = math3d.Perspective(c.FOV, c.AspectRatio, c.Near, c.Far)
		c.projDirty = false
	}
	return c.projMatrix
}

// ViewProjectionMatrix returns the combined view-projection matrix.
func (c *Camera) ViewProjectionMatrix() math3d.Mat4 {
	if c.viewDirty || c.projDirty {
		view := c.ViewMatrix()
		proj := c.ProjectionMatrix()
		c.viewProjMatrix = proj.Mul(view)
	}
	return c.viewProjMatrix
}

// WorldToScreen transforms a world point to screen coordinates.
// Returns (screenX, screenY, depth, visible).
func (c *Camera) WorldToScreen(worldPos math3d.Vec3, screenWidth, screenHeight int) (x, y, depth float64, visible bool) {
	clipPos := c.ViewProjectionMatrix().MulVec4(math3d.V4FromV3(worldPos, 1))

	// Behind the eye
	if clipPos.W <= 0 {
		return 0, 0, 0, false
	}

	ndc := clipPos.PerspectiveDivide()
	if ndc.X < -1 || ndc.X > 1 || ndc.Y < -1 || ndc.Y > 1 || ndc.Z < -1 || ndc.Z > 1 {
		return 0, 0, 0, false
	}

	x, y = toScreen(ndc.X, ndc.Y, screenWidth, screenHeight)
	return x, y, ndc.Z, true
}

// Frustum returns the current view frustum.
func (c *Camera) Frustum() Frustum {
	return NewFrustumFromMatrix(c.ViewProjectionMatrix())
}

// toScreen maps NDC to pixel coordinates with Y pointing down.
func toScreen(ndcX, ndcY float64, width, height int) (x, y float64) {
	return (ndcX + 1) * 0.5 * float64(width), (1 - ndcY) * 0.5 * float64(height)
}

func clampElevation(e float64) float64 {
	return math.Max(-maxElevation, math.Min(maxElevation, e))
}
