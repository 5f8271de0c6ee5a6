package app

import (
	"bytes"
	"errors"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farmscene/core"
	"farmscene/input"
	fmath "farmscene/math"
	"farmscene/scene"
	"farmscene/state"
)

type fakeWindow struct {
	closed   bool
	captured []bool
	now      float64
	polls    int
	maxPolls int
}

func (w *fakeWindow) ShouldClose() bool { return w.closed }
func (w *fakeWindow) SetShouldClose(v bool) { w.closed = v }
func (w *fakeWindow) PollEvents() {
	w.polls++
	w.now += 0.5
	if w.polls >= w.maxPolls {
		w.closed = true
	}
}
func (w *fakeWindow) Time() float64                   { return w.now }
func (w *fakeWindow) SetCursorCaptured(captured bool) { w.captured = append(w.captured, captured) }
func (w *fakeWindow) AspectRatio() float32            { return 4.0 / 3.0 }

type renderCall struct {
	t       float64
	aspect  float32
	overlay *image.RGBA
}

type fakeEngine struct {
	renders   []renderCall
	resized   [][2]int
	reloaded  []string
	reloadErr error
	renderErr error
}

func (e *fakeEngine) Render(s *state.ProgramState, t float64, aspect float32, overlay *image.RGBA) error {
	e.renders = append(e.renders, renderCall{t, aspect, overlay})
	return e.renderErr
}

func (e *fakeEngine) Resize(w, h int) { e.resized = append(e.resized, [2]int{w, h}) }

func (e *fakeEngine) ReloadShaders(path string) error {
	e.reloaded = append(e.reloaded, path)
	return e.reloadErr
}

var start = fmath.Vec3{X: -2.32, Y: 0.54, Z: 5.87}

func newApp(t *testing.T) (*App, *fakeWindow, *fakeEngine, *bytes.Buffer) {
	t.Helper()
	win := &fakeWindow{maxPolls: 1 << 30}
	eng := &fakeEngine{}
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	a := New(win, eng, Options{
		CameraStart:  start,
		StateFile:    filepath.Join(t.TempDir(), "program_state.txt"),
		Exposure:     1,
		ExposureStep: 0.01,
	}, logger)
	return a, win, eng, &logs
}

func press(k core.Key) input.KeyEvent   { return input.KeyEvent{Key: k, Action: core.Press} }
func release(k core.Key) input.KeyEvent { return input.KeyEvent{Key: k, Action: core.Release} }
func repeat(k core.Key) input.KeyEvent  { return input.KeyEvent{Key: k, Action: core.Repeat} }

func TestOverlayToggleMovesInLockstep(t *testing.T) {
	a, win, _, _ := newApp(t)
	require.False(t, a.State.OverlayEnabled)

	a.Dispatch([]input.Event{press(core.KeyF1)})
	assert.True(t, a.State.OverlayEnabled)
	assert.False(t, a.State.CameraMouseMovementEnabled)
	assert.Equal(t, []bool{false}, win.captured)

	a.Dispatch([]input.Event{release(core.KeyF1), repeat(core.KeyF1)})
	assert.True(t, a.State.OverlayEnabled)

	a.Dispatch([]input.Event{press(core.KeyF1)})
	assert.False(t, a.State.OverlayEnabled)
	assert.True(t, a.State.CameraMouseMovementEnabled)
	assert.Equal(t, []bool{false, true}, win.captured)
}

func TestTogglesFireOncePerPress(t *testing.T) {
	a, _, _, _ := newApp(t)
	require.True(t, a.State.BloomOn)
	require.False(t, a.State.SpotlightOn)

	a.Dispatch([]input.Event{press(core.KeyB), repeat(core.KeyB), repeat(core.KeyB)})
	assert.False(t, a.State.BloomOn)
	a.Dispatch([]input.Event{release(core.KeyB), press(core.KeyB)})
	assert.True(t, a.State.BloomOn)

	a.Dispatch([]input.Event{press(core.KeyF), release(core.KeyF)})
	assert.True(t, a.State.SpotlightOn)
}

func TestExposureKeys(t *testing.T) {
	a, _, _, _ := newApp(t)

	a.Dispatch([]input.Event{press(core.KeyE), repeat(core.KeyE)})
	assert.InDelta(t, 1.02, a.State.Exposure, 1e-5)

	events := []input.Event{press(core.KeyQ)}
	for i := 0; i < 200; i++ {
		events = append(events, repeat(core.KeyQ))
	}
	a.Dispatch(events)
	assert.Equal(t, float32(0), a.State.Exposure)
}

func TestEscapeRequestsClose(t *testing.T) {
	a, win, _, _ := newApp(t)
	a.Dispatch([]input.Event{press(core.KeyEscape)})
	assert.True(t, win.closed)
}

func TestCursorDrivesCameraOnlyWhenEnabled(t *testing.T) {
	a, _, _, _ := newApp(t)
	cam := a.State.Camera

	a.Dispatch([]input.Event{input.CursorEvent{X: 100, Y: 100}})
	assert.Equal(t, float32(scene.DefaultYaw), cam.Yaw)

	a.Dispatch([]input.Event{input.CursorEvent{X: 110, Y: 90}})
	assert.InDelta(t, scene.DefaultYaw+1, cam.Yaw, 1e-4)
	assert.InDelta(t, 1, cam.Pitch, 1e-4)

	a.Dispatch([]input.Event{press(core.KeyF1), input.CursorEvent{X: 300, Y: 90}})
	assert.InDelta(t, scene.DefaultYaw+1, cam.Yaw, 1e-4)

	// The tracker kept following the cursor while look was disabled.
	a.Dispatch([]input.Event{press(core.KeyF1), input.CursorEvent{X: 310, Y: 90}})
	assert.InDelta(t, scene.DefaultYaw+2, cam.Yaw, 1e-4)
}

func TestScrollZooms(t *testing.T) {
	a, _, _, _ := newApp(t)
	a.Dispatch([]input.Event{input.ScrollEvent{DY: 5}})
	assert.Equal(t, float32(40), a.State.Camera.Zoom)
}

func TestOverlayNavigation(t *testing.T) {
	a, _, _, _ := newApp(t)
	before := a.State.DirLight.Direction.X

	a.Dispatch([]input.Event{press(core.KeyRight), press(core.KeyDown)})
	assert.Equal(t, before, a.State.DirLight.Direction.X)
	assert.Equal(t, 0, a.Overlay.Selected)

	a.Dispatch([]input.Event{press(core.KeyF1), press(core.KeyRight), repeat(core.KeyRight)})
	assert.InDelta(t, before+0.1, a.State.DirLight.Direction.X, 1e-5)

	a.Dispatch([]input.Event{press(core.KeyUp)})
	assert.Equal(t, len(a.Overlay.Fields)-1, a.Overlay.Selected)
	a.Dispatch([]input.Event{press(core.KeyRight), press(core.KeyRight)})
	assert.InDelta(t, 0.5, a.State.PointLight.Quadratic, 1e-5)
}

func TestResizeAndReloadReachEngine(t *testing.T) {
	a, _, eng, logs := newApp(t)
	eng.reloadErr = errors.New("syntax error")

	a.Dispatch([]input.Event{
		input.ResizeEvent{W: 1024, H: 768},
		input.ReloadShadersEvent{Path: "shaders/lit.frag"},
	})
	assert.Equal(t, [][2]int{{1024, 768}}, eng.resized)
	assert.Equal(t, []string{"shaders/lit.frag"}, eng.reloaded)
	assert.Contains(t, logs.String(), "shader reload")
	assert.Contains(t, logs.String(), "syntax error")
}

func TestUpdateMovesWithHeldKeys(t *testing.T) {
	a, _, _, _ := newApp(t)
	cam := a.State.Camera

	a.Dispatch([]input.Event{press(core.KeyW)})
	a.Update(1)
	assert.InDelta(t, start.Z-scene.DefaultSpeed, cam.Position.Z, 1e-4)

	a.Update(1)
	assert.InDelta(t, start.Z-2*scene.DefaultSpeed, cam.Position.Z, 1e-4)

	a.Dispatch([]input.Event{release(core.KeyW), press(core.KeyM)})
	a.Update(1)
	assert.Equal(t, start, cam.Position)
}

func TestFrameDrainsQueueAndRenders(t *testing.T) {
	a, _, eng, _ := newApp(t)
	a.lastFrame = 1

	a.Queue.Push(press(core.KeyB))
	require.NoError(t, a.Frame(1.5))
	assert.False(t, a.State.BloomOn)
	assert.Zero(t, a.Queue.Len())
	require.Len(t, eng.renders, 1)
	assert.Equal(t, 1.5, eng.renders[0].t)
	assert.Equal(t, float32(4.0/3.0), eng.renders[0].aspect)
	assert.Nil(t, eng.renders[0].overlay)

	a.Queue.Push(press(core.KeyF1))
	require.NoError(t, a.Frame(2))
	require.Len(t, eng.renders, 2)
	assert.NotNil(t, eng.renders[1].overlay)
}

func TestRunStopsOnCloseAndError(t *testing.T) {
	a, win, eng, _ := newApp(t)
	win.maxPolls = 3
	require.NoError(t, a.Run())
	assert.Len(t, eng.renders, 3)

	a, win, eng, _ = newApp(t)
	eng.renderErr = errors.New("lost context")
	assert.ErrorIs(t, a.Run(), eng.renderErr)
	assert.Len(t, eng.renders, 1)
}

func TestStateSurvivesRestart(t *testing.T) {
	a, _, _, _ := newApp(t)
	a.State.ClearColor = fmath.Vec3{X: 0.1, Y: 0.2, Z: 0.3}
	a.Dispatch([]input.Event{press(core.KeyF1)})
	a.State.Camera.Position = fmath.Vec3{X: 1, Y: 2, Z: 3}
	require.NoError(t, a.SaveState())

	b, win, _, _ := newApp(t)
	b.opts.StateFile = a.opts.StateFile
	b.LoadState()
	assert.Equal(t, a.State.ClearColor, b.State.ClearColor)
	assert.True(t, b.State.OverlayEnabled)
	assert.False(t, b.State.CameraMouseMovementEnabled)
	assert.Equal(t, fmath.Vec3{X: 1, Y: 2, Z: 3}, b.State.Camera.Position)
	assert.Equal(t, []bool{false}, win.captured)
}

func TestLoadStateWarnsOnMalformedFile(t *testing.T) {
	a, win, _, logs := newApp(t)
	require.NoError(t, os.WriteFile(a.opts.StateFile, []byte("0.5 0.5\n"), 0o644))

	a.LoadState()
	assert.Contains(t, logs.String(), "settings not loaded")
	assert.Equal(t, float32(0.5), a.State.ClearColor.Y)
	assert.Equal(t, []bool{true}, win.captured)
}
