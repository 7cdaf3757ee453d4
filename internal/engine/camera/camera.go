// Package camera provides the orbit camera used to inspect loaded models.
package camera

import (
	"github.com/chewxy/math32"

	"github.com/meshworks/meshstudio/internal/engine/geometry"
	"github.com/meshworks/meshstudio/pkg/math"
)

// OrbitCamera circles a center point at a fixed distance. Dragging rotates
// around the center, the wheel zooms, and panning shifts the center along
// the view plane.
type OrbitCamera struct {
	Center   math.Vec3
	Distance float32

	RotationX float32 // pitch, radians
	RotationY float32 // yaw, radians

	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	DragSensitivity float32
	ZoomSensitivity float32
	PanSensitivity  float32
}

// NewOrbitCamera returns a camera with defaults sized for typical model
// extents. FrameBounds rescales it to whatever actually gets loaded.
func NewOrbitCamera() *OrbitCamera {
	return &OrbitCamera{
		Distance:        5,
		RotationX:       0.35,
		RotationY:       0.7,
		MinDistance:     0.05,
		MaxDistance:     5000,
		MinPitch:        -1.5,
		MaxPitch:        1.5,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
		PanSensitivity:  0.002,
	}
}

// Position returns the camera eye point in world space.
func (c *OrbitCamera) Position() math.Vec3 {
	cp := math32.Cos(c.RotationX)
	return math.Vec3{
		X: c.Center.X + c.Distance*cp*math32.Sin(c.RotationY),
		Y: c.Center.Y + c.Distance*math32.Sin(c.RotationX),
		Z: c.Center.Z + c.Distance*cp*math32.Cos(c.RotationY),
	}
}

// ViewMatrix returns the world-to-camera transform.
func (c *OrbitCamera) ViewMatrix() math.Mat4 {
	return math.LookAt(c.Position(), c.Center, math.Vec3{Y: 1})
}

// HandleDrag updates rotation from a mouse drag delta. Pitch is clamped
// short of the poles so the up vector stays valid.
func (c *OrbitCamera) HandleDrag(deltaX, deltaY float32) {
	c.RotationY -= deltaX * c.DragSensitivity
	c.RotationX += deltaY * c.DragSensitivity

	if c.RotationX < c.MinPitch {
		c.RotationX = c.MinPitch
	}
	if c.RotationX > c.MaxPitch {
		c.RotationX = c.MaxPitch
	}
}

// HandleZoom scales the orbit distance from a scroll wheel delta. Positive
// delta zooms in.
func (c *OrbitCamera) HandleZoom(delta float32) {
	c.Distance -= delta * c.Distance * c.ZoomSensitivity
	if c.Distance < c.MinDistance {
		c.Distance = c.MinDistance
	}
	if c.Distance > c.MaxDistance {
		c.Distance = c.MaxDistance
	}
}

// Pan shifts the orbit center along the view plane so the scene follows the
// cursor. Deltas are in screen coordinates, y growing downward.
func (c *OrbitCamera) Pan(deltaX, deltaY float32) {
	right := math.Vec3{X: math32.Cos(c.RotationY), Z: -math32.Sin(c.RotationY)}
	forward := c.Center.Sub(c.Position()).Normalize()
	up := right.Cross(forward)

	step := c.Distance * c.PanSensitivity
	c.Center = c.Center.Sub(right.Scale(deltaX * step)).Add(up.Scale(deltaY * step))
}

// FrameBounds recenters on box and backs off far enough that the box's
// enclosing sphere fits a frustum with the given vertical field of view.
// The orbit angles are left alone.
func (c *OrbitCamera) FrameBounds(box geometry.Box, fovY float32) {
	c.Center = box.Center()

	radius := box.Size().Length() * 0.5
	if radius <= 0 {
		c.Distance = 1
		return
	}

	c.Distance = 1.25 * radius / math32.Sin(fovY*0.5)
	if c.Distance < c.MinDistance {
		c.Distance = c.MinDistance
	}
	if c.Distance > c.MaxDistance {
		c.Distance = c.MaxDistance
	}
}

// ClipPlanes picks near and far planes for the current distance so depth
// precision follows the zoom level.
func (c *OrbitCamera) ClipPlanes() (near, far float32) {
	near = c.Distance * 0.01
	if near < 0.001 {
		near = 0.001
	}
	return near, c.Distance*50 + 100
}
