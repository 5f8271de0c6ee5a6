// Package app ties the program state, input queue, overlay and renderer
// together and runs the frame loop.
package app

import (
	"image"
	"log/slog"

	"farmscene/core"
	"farmscene/input"
	fmath "farmscene/math"
	"farmscene/overlay"
	"farmscene/scene"
	"farmscene/state"
)

// Window is the part of the OS window the app drives.
type Window interface {
	ShouldClose() bool
	SetShouldClose(v bool)
	PollEvents()
	Time() float64
	SetCursorCaptured(captured bool)
	AspectRatio() float32
}

// Engine renders frames.
type Engine interface {
	Render(s *state.ProgramState, t float64, aspect float32, overlay *image.RGBA) error
	Resize(width, height int)
	ReloadShaders(path string) error
}

type Options struct {
	CameraStart  fmath.Vec3
	StateFile    string
	Exposure     float32
	ExposureStep float32
}

// App owns every piece of mutable program state. Window callbacks only
// push to Queue; Frame applies the queued events in order.
type App struct {
	State   *state.ProgramState
	Queue   *input.Queue
	Keys    input.KeyState
	Mouse   input.MouseTracker
	Overlay *overlay.Overlay

	window Window
	engine Engine
	opts   Options
	logger *slog.Logger

	lastFrame float64
}

func New(window Window, engine Engine, opts Options, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	s := state.New(opts.CameraStart)
	s.Exposure = opts.Exposure
	return &App{
		State:   s,
		Queue:   input.NewQueue(),
		Overlay: overlay.New(),
		window:  window,
		engine:  engine,
		opts:    opts,
		logger:  logger,
	}
}

// LoadState restores the settings file. A file that cannot be read keeps
// the defaults for whatever was not read, and is only worth a warning.
func (a *App) LoadState() {
	if err := a.State.Load(a.opts.StateFile); err != nil {
		a.logger.Warn("settings not loaded", "path", a.opts.StateFile, "err", err)
	}
	a.window.SetCursorCaptured(!a.State.OverlayEnabled)
}

func (a *App) SaveState() error {
	return a.State.Save(a.opts.StateFile)
}

// Dispatch applies events in order.
func (a *App) Dispatch(events []input.Event) {
	for _, e := range events {
		switch e := e.(type) {
		case input.KeyEvent:
			a.Keys.Apply(e)
			a.handleKey(e)
		case input.CursorEvent:
			dx, dy := a.Mouse.Offset(e.X, e.Y)
			if a.State.CameraMouseMovementEnabled {
				a.State.Camera.ProcessMouseMovement(dx, dy, true)
			}
		case input.ScrollEvent:
			a.State.Camera.ProcessMouseScroll(float32(e.DY))
		case input.ResizeEvent:
			a.engine.Resize(e.W, e.H)
		case input.ReloadShadersEvent:
			if err := a.engine.ReloadShaders(e.Path); err != nil {
				a.logger.Warn("shader reload", "path", e.Path, "err", err)
			}
		}
	}
}

func (a *App) handleKey(e input.KeyEvent) {
	if e.Action == core.Release {
		return
	}
	s := a.State
	held := e.Action == core.Repeat

	switch e.Key {
	case core.KeyQ:
		s.AdjustExposure(-a.opts.ExposureStep)
	case core.KeyE:
		s.AdjustExposure(a.opts.ExposureStep)
	case core.KeyUp, core.KeyDown, core.KeyLeft, core.KeyRight:
		if s.OverlayEnabled {
			a.navigate(e.Key)
		}
	}
	if held {
		return
	}

	switch e.Key {
	case core.KeyEscape:
		a.window.SetShouldClose(true)
	case core.KeyF1:
		s.ToggleOverlay()
		a.window.SetCursorCaptured(!s.OverlayEnabled)
	case core.KeyF:
		s.SpotlightOn = !s.SpotlightOn
	case core.KeyB:
		s.BloomOn = !s.BloomOn
		a.logger.Debug("bloom", "on", s.BloomOn)
	}
}

func (a *App) navigate(key core.Key) {
	switch key {
	case core.KeyUp:
		a.Overlay.Select(-1)
	case core.KeyDown:
		a.Overlay.Select(1)
	case core.KeyLeft:
		a.Overlay.Adjust(a.State, -1)
	case core.KeyRight:
		a.Overlay.Adjust(a.State, 1)
	}
}

// Update applies held-key camera movement for a frame lasting dt seconds.
func (a *App) Update(dt float32) {
	cam := a.State.Camera
	moves := []struct {
		key core.Key
		dir scene.CameraMovement
	}{
		{core.KeyW, scene.Forward},
		{core.KeyS, scene.Backward},
		{core.KeyA, scene.Left},
		{core.KeyD, scene.Right},
	}
	for _, m := range moves {
		if a.Keys.Down(m.key) {
			cam.ProcessKeyboard(m.dir, dt)
		}
	}
	if a.Keys.Down(core.KeyM) {
		cam.Reset(a.opts.CameraStart)
	}
}

// OverlayImage renders the debug panel, or nil while it is hidden.
func (a *App) OverlayImage() *image.RGBA {
	if !a.State.OverlayEnabled {
		return nil
	}
	return overlay.Rasterize(a.Overlay.Lines(a.State))
}

// Frame drains the queue, moves the camera and draws at time now.
func (a *App) Frame(now float64) error {
	dt := float32(now - a.lastFrame)
	a.lastFrame = now

	a.Dispatch(a.Queue.Drain())
	a.Update(dt)
	return a.engine.Render(a.State, now, a.window.AspectRatio(), a.OverlayImage())
}

// Run loops until the window is asked to close.
func (a *App) Run() error {
	a.lastFrame = a.window.Time()
	for !a.window.ShouldClose() {
		a.window.PollEvents()
		if err := a.Frame(a.window.Time()); err != nil {
			return err
		}
	}
	return nil
}
