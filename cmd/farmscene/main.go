// Command farmscene renders the farm scene in a window until it is closed
// or Escape is pressed.
package main

import (
	"os"

	"farmscene/app"
	"farmscene/assets"
	"farmscene/config"
	"farmscene/core"
	"farmscene/core/window"
	"farmscene/input"
	"farmscene/internal/logx"
	"farmscene/internal/opengl"
	"farmscene/internal/watch"
	"farmscene/renderer"
	"farmscene/scene"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, cfgErr := config.Load(config.Path())
	logger := logx.Setup(os.Stderr, cfg.LogLevel)
	if cfgErr != nil {
		logger.Warn("config not loaded, using defaults", "err", cfgErr)
	}

	layout := scene.DefaultLayout()
	if cfg.Layout != "" {
		l, err := scene.LoadLayout(cfg.Resolve(cfg.Layout))
		if err != nil {
			logger.Error("layout not loaded, using the built-in farm", "err", err)
		} else {
			layout = l
		}
	}

	win, err := window.New(window.Config{
		Width:     cfg.Window.Width,
		Height:    cfg.Window.Height,
		Title:     cfg.Window.Title,
		Resizable: true,
		VSync:     cfg.Window.VSync,
	})
	if err != nil {
		logger.Error("failed to create window", "err", err)
		return 1
	}
	defer win.Destroy()

	backend, err := opengl.NewRenderer(win.Width, win.Height, cfg.Shaders.Dir, logger)
	if err != nil {
		logger.Error("failed to create renderer", "err", err)
		return 1
	}
	lib := assets.NewLibrary(cfg.Resources, backend, logger)
	engine := renderer.NewRenderEngine(backend, win, lib, scene.NewScene(layout), renderer.Options{
		Near:           cfg.Render.Near,
		Far:            cfg.Render.Far,
		BlurPasses:     cfg.Render.BlurPasses,
		FrustumCulling: cfg.Render.FrustumCulling,
	}, logger)
	defer engine.Destroy()
	engine.LoadAssets()

	a := app.New(win, engine, app.Options{
		CameraStart:  layout.CameraStart.Vec3(),
		StateFile:    cfg.Resolve(cfg.StateFile),
		Exposure:     cfg.Render.Exposure,
		ExposureStep: cfg.Render.ExposureStep,
	}, logger)

	// Callbacks run inside PollEvents; they only record.
	win.OnKey = func(key core.Key, action core.Action) {
		a.Queue.Push(input.KeyEvent{Key: key, Action: action})
	}
	win.OnCursor = func(x, y float64) {
		a.Queue.Push(input.CursorEvent{X: x, Y: y})
	}
	win.OnScroll = func(dx, dy float64) {
		a.Queue.Push(input.ScrollEvent{DX: dx, DY: dy})
	}
	win.OnResize = func(w, h int) {
		a.Queue.Push(input.ResizeEvent{W: w, H: h})
	}

	if cfg.Shaders.Watch {
		w, err := watch.Start(cfg.Shaders.Dir, a.Queue, logger)
		if err != nil {
			logger.Warn("shader hot reload disabled", "err", err)
		} else {
			defer w.Close()
		}
	}

	a.LoadState()
	runErr := a.Run()
	if err := a.SaveState(); err != nil {
		logger.Error("settings not saved", "err", err)
	}
	if runErr != nil {
		logger.Error("render loop stopped", "err", runErr)
		return 1
	}
	return 0
}
