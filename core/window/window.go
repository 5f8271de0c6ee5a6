// Package window opens the GLFW window that owns the OpenGL context.
package window

import (
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"

	"farmscene/core"
)

func init() {
	// GLFW and the OpenGL context must stay on the main OS thread.
	runtime.LockOSThread()
}

// Window wraps a GLFW window. Callbacks fire inside PollEvents.
type Window struct {
	Handle *glfw.Window
	Width  int
	Height int
	Title  string

	// Input callbacks. They run inside PollEvents on the main thread and
	// should only record the event.
	OnKey    func(key core.Key, action core.Action)
	OnCursor func(x, y float64)
	OnScroll func(xoff, yoff float64)
	OnResize func(width, height int)
}

type Config struct {
	Width     int
	Height    int
	Title     string
	Resizable bool
	VSync     bool
}

func DefaultConfig() Config {
	return Config{
		Width:     800,
		Height:    600,
		Title:     "farmscene",
		Resizable: true,
		VSync:     true,
	}
}

// New creates a window with a current OpenGL 4.1 core context.
func New(config Config) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, boolToInt(config.Resizable))

	handle, err := glfw.CreateWindow(config.Width, config.Height, config.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}
	handle.MakeContextCurrent()
	if config.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	window := &Window{
		Handle: handle,
		Width:  config.Width,
		Height: config.Height,
		Title:  config.Title,
	}
	// Framebuffer size, not window size, so HiDPI displays get pixel dimensions.
	window.Width, window.Height = handle.GetFramebufferSize()

	handle.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if window.OnKey != nil {
			window.OnKey(core.Key(key), core.Action(action))
		}
	})
	handle.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		if window.OnCursor != nil {
			window.OnCursor(x, y)
		}
	})
	handle.SetScrollCallback(func(_ *glfw.Window, xoff, yoff float64) {
		if window.OnScroll != nil {
			window.OnScroll(xoff, yoff)
		}
	})
	handle.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		window.Width = width
		window.Height = height
		if window.OnResize != nil {
			window.OnResize(width, height)
		}
	})

	return window, nil
}

func (w *Window) ShouldClose() bool {
	return w.Handle.ShouldClose()
}

func (w *Window) SetShouldClose(v bool) {
	w.Handle.SetShouldClose(v)
}

func (w *Window) PollEvents() {
	glfw.PollEvents()
}

func (w *Window) SwapBuffers() {
	w.Handle.SwapBuffers()
}

// Time returns seconds since GLFW was initialised.
func (w *Window) Time() float64 {
	return glfw.GetTime()
}

// SetCursorCaptured hides and locks the cursor for mouse look, or releases it.
func (w *Window) SetCursorCaptured(captured bool) {
	if captured {
		w.Handle.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
	} else {
		w.Handle.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
	}
}

func (w *Window) AspectRatio() float32 {
	if w.Height == 0 {
		return 1
	}
	return float32(w.Width) / float32(w.Height)
}

func (w *Window) Destroy() {
	w.Handle.Destroy()
	glfw.Terminate()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
