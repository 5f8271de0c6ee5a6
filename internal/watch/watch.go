// Package watch reports edits to shader source files so they can be
// recompiled without restarting.
package watch

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"farmscene/input"
)

// ShaderExts are the file extensions treated as shader sources.
var ShaderExts = []string{".vert", ".frag", ".glsl"}

// Pusher receives events from the watcher goroutine.
type Pusher interface {
	Push(e input.Event)
}

// Watcher watches one directory and pushes a ReloadShadersEvent for each
// written, created or renamed shader file.
type Watcher struct {
	watcher *fsnotify.Watcher
	done    chan struct{}
	stopped chan struct{}
}

// Start begins watching dir. Events go to q from a separate goroutine.
func Start(dir string, q Pusher, logger *slog.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("shader watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("shader watcher %q: %w", dir, err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	w := &Watcher{
		watcher: fw,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go func() {
		defer close(w.stopped)
		for {
			select {
			case <-w.done:
				return
			case event, ok := <-fw.Events:
				if !ok {
					return
				}
				if Relevant(event) {
					logger.Debug("shader changed", "path", event.Name, "op", event.Op.String())
					q.Push(input.ReloadShadersEvent{Path: event.Name})
				}
			case err, ok := <-fw.Errors:
				if !ok {
					return
				}
				logger.Warn("shader watcher", "err", err)
			}
		}
	}()
	logger.Info("watching shaders", "dir", dir)
	return w, nil
}

// Relevant reports whether event should trigger a shader reload.
func Relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	ext := strings.ToLower(filepath.Ext(event.Name))
	for _, e := range ShaderExts {
		if ext == e {
			return true
		}
	}
	return false
}

// Close stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Close() error {
	close(w.done)
	err := w.watcher.Close()
	<-w.stopped
	return err
}
