package renderer

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farmscene/assets"
	fmath "farmscene/math"
	"farmscene/pipeline"
	"farmscene/scene"
	"farmscene/state"
)

type fakeUploader struct{ next uint32 }

func (f *fakeUploader) UploadTexture(*scene.Texture) uint32 {
	f.next++
	return f.next
}

func (f *fakeUploader) UploadCubemap([6]*scene.Texture) uint32 {
	f.next++
	return f.next
}

type fakeBackend struct {
	calls      []string
	frame      pipeline.Frame
	billboards []fmath.Mat4
	blur       []pipeline.BlurPass
	composite  pipeline.Composite
	resized    [][2]int
	reloadErr  error
	destroyed  bool
}

func (f *fakeBackend) log(format string, args ...any) {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakeBackend) BeginFrame(clear fmath.Vec3) { f.log("begin") }
func (f *fakeBackend) SetFrame(fr pipeline.Frame) { f.frame = fr; f.log("frame") }
func (f *fakeBackend) DrawMesh(_ *scene.Mesh, _ fmath.Mat4, _, _ uint32) {
	f.log("mesh")
}
func (f *fakeBackend) BeginBillboards() { f.log("billboards-begin") }
func (f *fakeBackend) DrawBillboard(model fmath.Mat4, texture uint32) {
	f.billboards = append(f.billboards, model)
	f.log("billboard:%d", texture)
}
func (f *fakeBackend) EndBillboards() { f.log("billboards-end") }
func (f *fakeBackend) DrawSkybox(cubemap uint32) { f.log("skybox:%d", cubemap) }
func (f *fakeBackend) Blur(passes []pipeline.BlurPass) { f.blur = passes; f.log("blur") }
func (f *fakeBackend) Composite(c pipeline.Composite) { f.composite = c; f.log("composite") }
func (f *fakeBackend) DrawOverlay(img *image.RGBA) { f.log("overlay") }
func (f *fakeBackend) Resize(w, h int) { f.resized = append(f.resized, [2]int{w, h}) }
func (f *fakeBackend) ReloadShaders(path string) error { return f.reloadErr }
func (f *fakeBackend) Destroy() { f.destroyed = true }

type fakePresenter struct{ backend *fakeBackend }

func (p fakePresenter) SwapBuffers() { p.backend.log("present") }

func writePNG(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{G: 200, A: 128})
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func testLayout() scene.Layout {
	return scene.Layout{
		CameraStart: scene.Triple{0, 0, 3},
		Models: []scene.ModelSource{
			{Name: "barn", Path: "objects/barn.obj"},
			{Name: "ghost", Path: "objects/ghost.obj"},
		},
		Placements: []scene.Placement{
			{Model: "barn", Scale: 1},
			{Model: "barn", Translation: scene.Triple{0, 0, 50}, Scale: 1},
			{Model: "ghost", Scale: 1},
		},
		Billboards: []scene.Billboard{
			{Translation: scene.Triple{0, 0, 1}, Scale: 1},
			{Translation: scene.Triple{0, 0, -5}, Scale: 1},
		},
		BillboardTexture: "textures/grass.png",
		SkyboxFaces: []string{
			"sky/posx.png", "sky/negx.png", "sky/posy.png",
			"sky/negy.png", "sky/posz.png", "sky/negz.png",
		},
		PointLights: []scene.Triple{{1, 1, 1}, {2, 2, 2}},
	}
}

func newEngine(t *testing.T) (*RenderEngine, *fakeBackend, *bytes.Buffer, *state.ProgramState) {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "objects"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "objects", "barn.obj"),
		[]byte("v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"), 0o644))
	writePNG(t, filepath.Join(root, "textures", "grass.png"))

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	lib := assets.NewLibrary(root, &fakeUploader{}, logger)

	backend := &fakeBackend{}
	layout := testLayout()
	re := NewRenderEngine(backend, fakePresenter{backend}, lib, scene.NewScene(layout), DefaultOptions(), logger)
	re.LoadAssets()
	return re, backend, &logs, state.New(layout.CameraStart.Vec3())
}

func TestLoadAssetsSkipsBrokenModel(t *testing.T) {
	re, _, logs, _ := newEngine(t)

	assert.Contains(t, re.models, "barn")
	assert.NotContains(t, re.models, "ghost")
	assert.Contains(t, logs.String(), "model failed to load")
	assert.Equal(t, uint32(1), re.billboardTex)
	assert.Equal(t, uint32(2), re.skybox)
}

func TestRenderPassOrder(t *testing.T) {
	re, backend, _, s := newEngine(t)

	require.NoError(t, re.Render(s, 0, 800.0/600.0, nil))
	assert.Equal(t, []string{
		"begin",
		"frame",
		"mesh",
		"billboards-begin",
		"billboard:1",
		"billboard:1",
		"billboards-end",
		"skybox:2",
		"blur",
		"composite",
		"present",
	}, backend.calls)
}

func TestRenderCullsAndSkipsMissingModels(t *testing.T) {
	re, _, _, s := newEngine(t)

	require.NoError(t, re.Render(s, 0, 1, nil))
	drawn, culled := re.DrawStats()
	assert.Equal(t, 1, drawn)
	assert.Equal(t, 1, culled)
}

func TestRenderWithoutCulling(t *testing.T) {
	re, backend, _, s := newEngine(t)
	re.opts.FrustumCulling = false

	require.NoError(t, re.Render(s, 0, 1, nil))
	drawn, culled := re.DrawStats()
	assert.Equal(t, 2, drawn)
	assert.Equal(t, 0, culled)
	assert.Equal(t, 2, countCalls(backend.calls, "mesh"))
}

func countCalls(calls []string, name string) int {
	n := 0
	for _, c := range calls {
		if c == name {
			n++
		}
	}
	return n
}

func TestRenderBillboardsBackToFront(t *testing.T) {
	re, backend, _, s := newEngine(t)

	require.NoError(t, re.Render(s, 0, 1, nil))
	require.Len(t, backend.billboards, 2)
	assert.InDelta(t, -5, backend.billboards[0][3][2], 1e-5)
	assert.InDelta(t, 1, backend.billboards[1][3][2], 1e-5)
}

func TestRenderFrameUniforms(t *testing.T) {
	re, backend, _, s := newEngine(t)
	s.PointLight.Linear = 0.5

	require.NoError(t, re.Render(s, 0, 1, nil))
	f := backend.frame
	assert.Equal(t, s.Camera.Position, f.ViewPos)
	assert.Equal(t, s.DirLight, f.Lights.Dir)
	require.Len(t, f.Lights.Points, 2)
	for _, p := range f.Lights.Points {
		assert.Equal(t, float32(0.5), p.Linear)
	}
	assert.Equal(t, fmath.Vec3{X: 2, Y: 2, Z: 2}, f.Lights.Points[1].Position)
	assert.Equal(t, fmath.Vec3Zero, f.Lights.Spot.Diffuse)

	s.SpotlightOn = true
	require.NoError(t, re.Render(s, 0, 1, nil))
	assert.NotEqual(t, fmath.Vec3Zero, backend.frame.Lights.Spot.Diffuse)
}

func TestRenderBloomAndExposure(t *testing.T) {
	re, backend, _, s := newEngine(t)
	s.BloomOn = false
	s.Exposure = 2.5

	require.NoError(t, re.Render(s, 0, 1, nil))
	assert.Equal(t, pipeline.Composite{Bloom: false, Exposure: 2.5}, backend.composite)
	require.Len(t, backend.blur, pipeline.DefaultBlurPasses)
	assert.True(t, backend.blur[0].Horizontal)
	assert.Equal(t, pipeline.BrightPass, backend.blur[0].Source)
}

func TestRenderOverlayBeforePresent(t *testing.T) {
	re, backend, _, s := newEngine(t)
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))

	require.NoError(t, re.Render(s, 0, 1, img))
	assert.NotContains(t, backend.calls, "overlay")

	backend.calls = nil
	s.ToggleOverlay()
	require.NoError(t, re.Render(s, 0, 1, img))
	n := len(backend.calls)
	require.GreaterOrEqual(t, n, 3)
	assert.Equal(t, []string{"composite", "overlay", "present"}, backend.calls[n-3:])
}

func TestRenderNeedsCamera(t *testing.T) {
	re, _, _, _ := newEngine(t)
	assert.Error(t, re.Render(&state.ProgramState{}, 0, 1, nil))
}

func TestResizeIgnoresEmptySize(t *testing.T) {
	re, backend, _, _ := newEngine(t)
	re.Resize(0, 0)
	re.Resize(1024, 768)
	assert.Equal(t, [][2]int{{1024, 768}}, backend.resized)
}

func TestReloadShadersWrapsError(t *testing.T) {
	re, backend, _, _ := newEngine(t)
	assert.NoError(t, re.ReloadShaders("shaders/lit.frag"))

	boom := errors.New("boom")
	backend.reloadErr = boom
	err := re.ReloadShaders("shaders/lit.frag")
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "lit.frag")

	re.Destroy()
	assert.True(t, backend.destroyed)
}
