package scene

import (
	"github.com/chewxy/math32"

	fmath "farmscene/math"
)

// CameraMovement is a held-key movement direction.
type CameraMovement int

const (
	Forward CameraMovement = iota
	Backward
	Left
	Right
)

const (
	DefaultYaw         = -90.0
	DefaultPitch       = 0.0
	DefaultSpeed       = 2.5
	DefaultSensitivity = 0.1
	DefaultZoom        = 45.0

	ZoomMin  = 1.0
	ZoomMax  = 45.0
	PitchMax = 89.0
)

// Camera is a first-person camera driven by yaw/pitch angles in degrees.
type Camera struct {
	Position fmath.Vec3
	Front    fmath.Vec3
	Up       fmath.Vec3
	Right    fmath.Vec3
	WorldUp  fmath.Vec3

	Yaw   float32
	Pitch float32

	MovementSpeed    float32
	MouseSensitivity float32
	Zoom             float32
}

func NewCamera(position fmath.Vec3) *Camera {
	c := &Camera{
		Position:         position,
		WorldUp:          fmath.Vec3Up,
		Yaw:              DefaultYaw,
		Pitch:            DefaultPitch,
		MovementSpeed:    DefaultSpeed,
		MouseSensitivity: DefaultSensitivity,
		Zoom:             DefaultZoom,
	}
	c.updateVectors()
	return c
}

func (c *Camera) ViewMatrix() fmath.Mat4 {
	return fmath.Mat4LookAt(c.Position, c.Position.Add(c.Front), c.Up)
}

// ProjectionMatrix uses Zoom as the vertical field of view.
func (c *Camera) ProjectionMatrix(aspect, near, far float32) fmath.Mat4 {
	return fmath.Mat4Perspective(fmath.Radians(c.Zoom), aspect, near, far)
}

func (c *Camera) ProcessKeyboard(direction CameraMovement, deltaTime float32) {
	velocity := c.MovementSpeed * deltaTime
	switch direction {
	case Forward:
		c.Position = c.Position.Add(c.Front.Mul(velocity))
	case Backward:
		c.Position = c.Position.Sub(c.Front.Mul(velocity))
	case Left:
		c.Position = c.Position.Sub(c.Right.Mul(velocity))
	case Right:
		c.Position = c.Position.Add(c.Right.Mul(velocity))
	}
}

// ProcessMouseMovement turns the camera by a cursor offset in pixels.
// yoffset is positive when the cursor moves up.
func (c *Camera) ProcessMouseMovement(xoffset, yoffset float32, constrainPitch bool) {
	c.Yaw += xoffset * c.MouseSensitivity
	c.Pitch += yoffset * c.MouseSensitivity

	if constrainPitch {
		c.Pitch = fmath.Clamp(c.Pitch, -PitchMax, PitchMax)
	}
	c.updateVectors()
}

func (c *Camera) ProcessMouseScroll(yoffset float32) {
	c.Zoom = fmath.Clamp(c.Zoom-yoffset, ZoomMin, ZoomMax)
}

// SetFront adopts front as the facing vector and derives yaw and pitch from it,
// so later mouse movement continues from the same orientation.
// A zero vector is ignored.
func (c *Camera) SetFront(front fmath.Vec3) {
	length := front.Length()
	if length == 0 {
		return
	}
	n := front.Mul(1 / length)
	c.Pitch = fmath.Clamp(fmath.Degrees(math32.Asin(fmath.Clamp(n.Y, -1, 1))), -PitchMax, PitchMax)
	c.Yaw = fmath.Degrees(math32.Atan2(n.Z, n.X))

	c.Front = front
	c.Right = front.Cross(c.WorldUp).Normalize()
	c.Up = c.Right.Cross(front).Normalize()
}

// Reset moves the camera back to position without changing where it looks.
func (c *Camera) Reset(position fmath.Vec3) {
	c.Position = position
}

func (c *Camera) updateVectors() {
	yaw := fmath.Radians(c.Yaw)
	pitch := fmath.Radians(c.Pitch)
	front := fmath.Vec3{
		X: math32.Cos(yaw) * math32.Cos(pitch),
		Y: math32.Sin(pitch),
		Z: math32.Sin(yaw) * math32.Cos(pitch),
	}
	c.Front = front.Normalize()
	c.Right = c.Front.Cross(c.WorldUp).Normalize()
	c.Up = c.Right.Cross(c.Front).Normalize()
}
