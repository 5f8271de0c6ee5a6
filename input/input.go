// Package input turns window callbacks into a queue of events that the
// render loop applies once per frame.
package input

import (
	"sync"

	"farmscene/core"
)

// Event is one of KeyEvent, CursorEvent, ScrollEvent, ResizeEvent or
// ReloadShadersEvent.
type Event interface {
	isEvent()
}

type KeyEvent struct {
	Key    core.Key
	Action core.Action
}

// CursorEvent is an absolute cursor position in window coordinates.
type CursorEvent struct {
	X, Y float64
}

type ScrollEvent struct {
	DX, DY float64
}

// ResizeEvent carries the new framebuffer size in pixels.
type ResizeEvent struct {
	W, H int
}

// ReloadShadersEvent asks for the shader programs to be rebuilt because
// Path changed on disk.
type ReloadShadersEvent struct {
	Path string
}

func (KeyEvent) isEvent()           {}
func (CursorEvent) isEvent()        {}
func (ScrollEvent) isEvent()        {}
func (ResizeEvent) isEvent()        {}
func (ReloadShadersEvent) isEvent() {}

// Queue is a FIFO of events. Push may be called from any goroutine.
type Queue struct {
	mu     sync.Mutex
	events []Event
}

func NewQueue() *Queue {
	return &Queue{}
}

func (q *Queue) Push(e Event) {
	q.mu.Lock()
	q.events = append(q.events, e)
	q.mu.Unlock()
}

// Drain returns the pending events in arrival order and empties the queue.
func (q *Queue) Drain() []Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	events := q.events
	q.events = nil
	return events
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// KeyState tracks which keys are held down.
type KeyState struct {
	down [core.KeyLast + 1]bool
}

// Apply records a key event. Repeat keeps a key down.
func (k *KeyState) Apply(e KeyEvent) {
	if e.Key < 0 || e.Key > core.KeyLast {
		return
	}
	k.down[e.Key] = e.Action != core.Release
}

func (k *KeyState) Down(key core.Key) bool {
	if key < 0 || key > core.KeyLast {
		return false
	}
	return k.down[key]
}

// Reset releases every key, e.g. after focus loss.
func (k *KeyState) Reset() {
	k.down = [core.KeyLast + 1]bool{}
}

// MouseTracker turns absolute cursor positions into look offsets.
type MouseTracker struct {
	lastX, lastY float64
	seeded       bool
}

// Offset returns the movement since the previous position with Y reversed,
// so moving the cursor up gives a positive dy. The first call only seeds
// the tracker and returns zero.
func (m *MouseTracker) Offset(x, y float64) (dx, dy float32) {
	if !m.seeded {
		m.lastX, m.lastY = x, y
		m.seeded = true
	}
	dx = float32(x - m.lastX)
	dy = float32(m.lastY - y)
	m.lastX, m.lastY = x, y
	return dx, dy
}
