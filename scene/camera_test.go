package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"

	fmath "farmscene/math"
)

const tol = 1e-4

func assertVec3(t *testing.T, expected, actual fmath.Vec3) {
	t.Helper()
	assert.InDelta(t, expected.X, actual.X, tol, "X")
	assert.InDelta(t, expected.Y, actual.Y, tol, "Y")
	assert.InDelta(t, expected.Z, actual.Z, tol, "Z")
}

func TestNewCameraLooksDownNegativeZ(t *testing.T) {
	c := NewCamera(fmath.Vec3{X: 1, Y: 2, Z: 3})

	assertVec3(t, fmath.Vec3{X: 0, Y: 0, Z: -1}, c.Front)
	assertVec3(t, fmath.Vec3{X: 1, Y: 0, Z: 0}, c.Right)
	assertVec3(t, fmath.Vec3Up, c.Up)
	assert.Equal(t, float32(DefaultZoom), c.Zoom)
}

func TestProcessKeyboard(t *testing.T) {
	c := NewCamera(fmath.Vec3Zero)

	c.ProcessKeyboard(Forward, 1)
	assertVec3(t, fmath.Vec3{Z: -DefaultSpeed}, c.Position)

	c.ProcessKeyboard(Right, 0.5)
	assertVec3(t, fmath.Vec3{X: DefaultSpeed / 2, Z: -DefaultSpeed}, c.Position)

	c.ProcessKeyboard(Backward, 1)
	c.ProcessKeyboard(Left, 0.5)
	assertVec3(t, fmath.Vec3Zero, c.Position)
}

func TestZoomStaysInRange(t *testing.T) {
	c := NewCamera(fmath.Vec3Zero)
	for _, dy := range []float32{3, 10, 100, -7, -200, 0.5, 44, -1} {
		c.ProcessMouseScroll(dy)
		assert.GreaterOrEqual(t, c.Zoom, float32(ZoomMin))
		assert.LessOrEqual(t, c.Zoom, float32(ZoomMax))
	}

	c.ProcessMouseScroll(1000)
	assert.Equal(t, float32(ZoomMin), c.Zoom)
	c.ProcessMouseScroll(-1000)
	assert.Equal(t, float32(ZoomMax), c.Zoom)
}

func TestPitchIsConstrained(t *testing.T) {
	c := NewCamera(fmath.Vec3Zero)

	c.ProcessMouseMovement(0, 5000, true)
	assert.Equal(t, float32(PitchMax), c.Pitch)

	c.ProcessMouseMovement(0, -10000, true)
	assert.Equal(t, float32(-PitchMax), c.Pitch)

	c.ProcessMouseMovement(0, 2000, false)
	assert.Greater(t, c.Pitch, float32(PitchMax))
}

func TestMouseMovementTurnsYaw(t *testing.T) {
	c := NewCamera(fmath.Vec3Zero)

	// 900 px at 0.1 sensitivity is a quarter turn to the right.
	c.ProcessMouseMovement(900, 0, true)
	assert.InDelta(t, 0, c.Yaw, tol)
	assertVec3(t, fmath.Vec3{X: 1}, c.Front)
}

func TestSetFrontDerivesAngles(t *testing.T) {
	c := NewCamera(fmath.Vec3Zero)
	front := fmath.Vec3{X: 2, Y: 0, Z: 0}

	c.SetFront(front)
	assert.Equal(t, front, c.Front)
	assert.InDelta(t, 0, c.Yaw, tol)
	assert.InDelta(t, 0, c.Pitch, tol)

	// Continuing from the derived angles keeps the orientation.
	c.ProcessMouseMovement(0, 0, true)
	assertVec3(t, fmath.Vec3{X: 1}, c.Front)

	c.SetFront(fmath.Vec3{X: 0, Y: 1, Z: -1})
	assert.InDelta(t, -90, c.Yaw, tol)
	assert.InDelta(t, 45, c.Pitch, tol)
}

func TestSetFrontIgnoresZero(t *testing.T) {
	c := NewCamera(fmath.Vec3Zero)
	before := *c

	c.SetFront(fmath.Vec3Zero)
	assert.Equal(t, before, *c)
}

func TestResetKeepsOrientation(t *testing.T) {
	c := NewCamera(fmath.Vec3Zero)
	c.ProcessMouseMovement(100, 50, true)
	front := c.Front

	start := fmath.Vec3{X: -2.32, Y: 0.54, Z: 5.87}
	c.ProcessKeyboard(Forward, 3)
	c.Reset(start)

	assert.Equal(t, start, c.Position)
	assert.Equal(t, front, c.Front)
}

func TestViewMatrixMovesEyeToOrigin(t *testing.T) {
	eye := fmath.Vec3{X: 3, Y: 1, Z: -2}
	c := NewCamera(eye)

	assertVec3(t, fmath.Vec3Zero, c.ViewMatrix().MulVec3(eye))
	// A point straight ahead ends up on the -Z axis.
	ahead := c.ViewMatrix().MulVec3(eye.Add(c.Front.Mul(5)))
	assertVec3(t, fmath.Vec3{Z: -5}, ahead)
}

func TestFlashlight(t *testing.T) {
	c := NewCamera(fmath.Vec3{X: 1, Y: 2, Z: 3})

	on := Flashlight(c, true)
	assert.Equal(t, c.Position, on.Position)
	assert.Equal(t, c.Front, on.Direction)
	assert.Equal(t, Grey(1), on.Diffuse)
	assert.InDelta(t, 0.976296, on.CutOff, tol)
	assert.InDelta(t, 0.965926, on.OuterCutOff, tol)
	assert.Greater(t, on.CutOff, on.OuterCutOff)

	off := Flashlight(c, false)
	assert.Equal(t, fmath.Vec3Zero, off.Diffuse)
	assert.Equal(t, fmath.Vec3Zero, off.Specular)
	assert.Equal(t, on.CutOff, off.CutOff)
}

func TestPointLightAttenuation(t *testing.T) {
	p := PointLight{Constant: 1, Linear: 0.5, Quadratic: 0.25}
	assert.InDelta(t, 1, p.Attenuation(0), tol)
	assert.InDelta(t, 1.0/(1+1+1), p.Attenuation(2), tol)

	moved := p.At(fmath.Vec3{X: 4})
	assert.Equal(t, fmath.Vec3{X: 4}, moved.Position)
	assert.Equal(t, fmath.Vec3Zero, p.Position)
}
