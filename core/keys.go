package core

import "fmt"

// Key is a keyboard key. Values match GLFW key codes, which use ASCII for
// printable keys.
type Key int

const (
	KeyA      Key = 65
	KeyB      Key = 66
	KeyD      Key = 68
	KeyE      Key = 69
	KeyF      Key = 70
	KeyM      Key = 77
	KeyQ      Key = 81
	KeyS      Key = 83
	KeyW      Key = 87
	KeyEscape Key = 256
	KeyRight  Key = 262
	KeyLeft   Key = 263
	KeyDown   Key = 264
	KeyUp     Key = 265
	KeyF1     Key = 290

	// KeyLast bounds key-state tables.
	KeyLast Key = 348
)

// Action is what happened to a key. Values match GLFW.
type Action int

const (
	Release Action = 0
	Press   Action = 1
	Repeat  Action = 2
)

func (a Action) String() string {
	switch a {
	case Release:
		return "release"
	case Press:
		return "press"
	case Repeat:
		return "repeat"
	}
	return fmt.Sprintf("action(%d)", int(a))
}
