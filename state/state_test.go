package state

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fmath "farmscene/math"
)

var start = fmath.Vec3{X: -2.32, Y: 0.54, Z: 5.87}

func TestNewDefaults(t *testing.T) {
	s := New(start)

	assert.Equal(t, fmath.Vec3Zero, s.ClearColor)
	assert.False(t, s.OverlayEnabled)
	assert.True(t, s.CameraMouseMovementEnabled)
	assert.False(t, s.SpotlightOn)
	assert.True(t, s.BloomOn)
	assert.Equal(t, float32(1), s.Exposure)
	assert.Equal(t, start, s.Camera.Position)
	assert.Equal(t, fmath.Vec3{X: -0.2, Y: -1, Z: -0.3}, s.DirLight.Direction)
	assert.Equal(t, float32(0.8), s.PointLight.Linear)
}

func TestWriteFormat(t *testing.T) {
	s := New(fmath.Vec3{X: 1.5, Y: -2, Z: 0.1})
	s.ClearColor = fmath.Vec3{X: 0.25, Y: 0, Z: 1}
	s.OverlayEnabled = true
	s.Camera.SetFront(fmath.Vec3{X: 0, Y: 0, Z: -1})

	var buf bytes.Buffer
	require.NoError(t, s.Write(&buf))
	assert.Equal(t, "0.25\n0\n1\n1\n1.5\n-2\n0.1\n0\n0\n-1\n", buf.String())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "program_state.txt")

	saved := New(start)
	saved.ClearColor = fmath.Vec3{X: 0.1, Y: 0.2, Z: 0.3}
	saved.OverlayEnabled = true
	saved.Camera.Position = fmath.Vec3{X: -71.123456, Y: 3.3333333, Z: 52.000001}
	saved.Camera.ProcessMouseMovement(123.4, -56.7, true)
	require.NoError(t, saved.Save(path))

	loaded := New(start)
	require.NoError(t, loaded.Load(path))

	assert.Equal(t, saved.ClearColor, loaded.ClearColor)
	assert.Equal(t, saved.OverlayEnabled, loaded.OverlayEnabled)
	assert.Equal(t, saved.Camera.Position, loaded.Camera.Position)
	assert.Equal(t, saved.Camera.Front, loaded.Camera.Front)
	assert.InDelta(t, saved.Camera.Yaw, loaded.Camera.Yaw, 1e-3)
	assert.InDelta(t, saved.Camera.Pitch, loaded.Camera.Pitch, 1e-3)
}

func TestLoadOverlayDisablesMouseLook(t *testing.T) {
	s := New(start)
	require.NoError(t, s.Read(strings.NewReader("0 0 0 1 0 0 0 0 0 -1")))
	assert.True(t, s.OverlayEnabled)
	assert.False(t, s.CameraMouseMovementEnabled)

	require.NoError(t, s.Read(strings.NewReader("0 0 0 0 0 0 0 0 0 -1")))
	assert.False(t, s.OverlayEnabled)
	assert.True(t, s.CameraMouseMovementEnabled)
}

func TestLoadMissingFileKeepsDefaults(t *testing.T) {
	s := New(start)
	require.NoError(t, s.Load(filepath.Join(t.TempDir(), "missing.txt")))
	assert.Equal(t, New(start), s)
}

func TestLoadTruncatedKeepsReadFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "program_state.txt")
	require.NoError(t, os.WriteFile(path, []byte("0.5\n0.6\n0.7\n1\n4\n"), 0o644))

	s := New(start)
	err := s.Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformed)

	assert.Equal(t, fmath.Vec3{X: 0.5, Y: 0.6, Z: 0.7}, s.ClearColor)
	assert.True(t, s.OverlayEnabled)
	assert.Equal(t, fmath.Vec3{X: 4, Y: start.Y, Z: start.Z}, s.Camera.Position)
	assert.Equal(t, New(start).Camera.Front, s.Camera.Front)
}

func TestReadBadToken(t *testing.T) {
	s := New(start)
	err := s.Read(strings.NewReader("0.5 zero 0.7 1 0 0 0 0 0 -1"))
	assert.ErrorIs(t, err, ErrMalformed)

	assert.Equal(t, float32(0.5), s.ClearColor.X)
	assert.Equal(t, float32(0), s.ClearColor.Y)
	assert.False(t, s.OverlayEnabled)
}

func TestReadEmpty(t *testing.T) {
	s := New(start)
	assert.ErrorIs(t, s.Read(strings.NewReader("")), ErrMalformed)
	assert.Equal(t, New(start), s)
}

func TestAdjustExposureNeverNegative(t *testing.T) {
	s := New(start)
	for i := 0; i < 500; i++ {
		s.AdjustExposure(-0.01)
		assert.GreaterOrEqual(t, s.Exposure, float32(0))
	}
	assert.Equal(t, float32(0), s.Exposure)

	s.AdjustExposure(0.01)
	assert.InDelta(t, 0.01, s.Exposure, 1e-6)
}

func TestToggleOverlayLockstep(t *testing.T) {
	s := New(start)
	for i := 0; i < 4; i++ {
		s.ToggleOverlay()
		assert.Equal(t, !s.OverlayEnabled, s.CameraMouseMovementEnabled)
	}
	assert.False(t, s.OverlayEnabled)
}
