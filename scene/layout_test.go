package scene

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fmath "farmscene/math"
)

func assertMat4(t *testing.T, expected, actual fmath.Mat4) {
	t.Helper()
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			assert.InDelta(t, expected[i][j], actual[i][j], tol, "[%d][%d]", i, j)
		}
	}
}

func TestDefaultLayout(t *testing.T) {
	l := DefaultLayout()
	require.NoError(t, l.Validate())

	assert.Len(t, l.Models, 6)
	assert.Len(t, l.Placements, 10)
	assert.Len(t, l.Billboards, 1)
	assert.Len(t, l.PointLights, 2)
	assert.Len(t, l.SkyboxFaces, 6)

	fences := 0
	for _, p := range l.Placements {
		if p.Model == "picket_fence" {
			fences++
		}
	}
	assert.Equal(t, 5, fences)
}

func TestPlacementModelMatrixOrder(t *testing.T) {
	p := Placement{
		Translation: Triple{-49, 2.19, 44},
		Rotation:    Triple{-91, 1, -89},
		Scale:       0.05,
	}

	// Scale first, then Z, Y and X rotations, then translation.
	want := fmath.Mat4Scale(fmath.Vec3{X: 0.05, Y: 0.05, Z: 0.05}).
		Mul(fmath.Mat4RotationZ(fmath.Radians(-89))).
		Mul(fmath.Mat4RotationY(fmath.Radians(1))).
		Mul(fmath.Mat4RotationX(fmath.Radians(-91))).
		Mul(fmath.Mat4Translation(fmath.Vec3{X: -49, Y: 2.19, Z: 44}))

	assertMat4(t, want, p.ModelMatrix(0))
	assertMat4(t, want, p.ModelMatrix(12.5))
}

func TestPlacementBob(t *testing.T) {
	p := Placement{
		Translation:  Triple{-73, 5, 48.3},
		Scale:        1,
		BobAmplitude: 1,
		BobFrequency: 0.6,
	}

	assert.InDelta(t, 6, p.ModelMatrix(0)[3][1], tol)
	// cos(π) = -1 at t = π/0.6.
	assert.InDelta(t, 4, p.ModelMatrix(5.235987755982989)[3][1], tol)
	assert.InDelta(t, -73, p.ModelMatrix(5.235987755982989)[3][0], tol)
}

func TestDecodeLayoutKeepsDefaults(t *testing.T) {
	l, err := DecodeLayout([]byte(`camera_start = [1.0, 2.0, 3.0]`))
	require.NoError(t, err)

	assert.Equal(t, Triple{1, 2, 3}, l.CameraStart)
	assert.Equal(t, DefaultLayout().Placements, l.Placements)
	assert.Equal(t, DefaultLayout().SkyboxFaces, l.SkyboxFaces)
}

func TestDecodeLayoutOverrides(t *testing.T) {
	data := `
billboard_texture = "textures/flower.png"
point_lights = [[0.0, 1.0, 0.0]]

[[model]]
name = "barn"
path = "objects/barn.glb"

[[placement]]
model = "barn"
translation = [1.0, 0.0, -4.0]
rotation = [0.0, 90.0, 0.0]
scale = 2.0
`
	l, err := DecodeLayout([]byte(data))
	require.NoError(t, err)

	require.Len(t, l.Placements, 1)
	assert.Equal(t, "barn", l.Placements[0].Model)
	assert.Equal(t, Triple{1, 0, -4}, l.Placements[0].Translation)
	assert.Equal(t, float32(2), l.Placements[0].Scale)
	assert.Equal(t, []Triple{{0, 1, 0}}, l.PointLights)
	assert.Equal(t, "textures/flower.png", l.BillboardTexture)
}

func TestDecodeLayoutRejects(t *testing.T) {
	tests := map[string]string{
		"unknown model": `
[[model]]
name = "barn"
path = "barn.obj"
[[placement]]
model = "silo"
scale = 1.0
`,
		"unknown key":    `fog = true`,
		"short skybox":   `skybox_faces = ["a.jpg", "b.jpg"]`,
		"malformed toml": `camera_start = [1.0, `,
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeLayout([]byte(data))
			assert.Error(t, err)
		})
	}
}

func TestLayoutFileRoundTrip(t *testing.T) {
	want := DefaultLayout()
	data, err := EncodeLayout(want)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "layout.toml")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	got, err := LoadLayout(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadLayoutMissingFile(t *testing.T) {
	_, err := LoadLayout(filepath.Join(t.TempDir(), "nope.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSortBackToFront(t *testing.T) {
	near := Billboard{Translation: Triple{0, 0, 1}}
	far := Billboard{Translation: Triple{0, 0, 5}}
	mid := Billboard{Translation: Triple{0, 3, 0}}
	in := []Billboard{near, far, mid}

	got := SortBackToFront(in, fmath.Vec3Zero)
	assert.Equal(t, []Billboard{far, mid, near}, got)
	assert.Equal(t, []Billboard{near, far, mid}, in)

	// From the other side the order flips.
	got = SortBackToFront(in, fmath.Vec3{Z: 10})
	assert.Equal(t, []Billboard{mid, near, far}, got)
}
