// Package watch keeps a single filesystem watch on the current workspace
// directory. Events accumulate between dispatcher turns; Poll drains them
// and answers once per turn, so a burst of changes still costs one relist.
package watch

import (
	"github.com/fsnotify/fsnotify"
)

// Watcher wraps one inotify/kqueue watch.
type Watcher struct {
	w     *fsnotify.Watcher
	armed string
}

// New opens the underlying notifier; callers without kernel support may
// simply run with a nil *Watcher, every method tolerates it.
func New() (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{w: w}, nil
}

// Arm points the watch at path, dropping any previous target.
func (w *Watcher) Arm(path string) error {
	if w == nil {
		return nil
	}
	w.Disarm()
	if err := w.w.Add(path); err != nil {
		return err
	}
	w.armed = path
	return nil
}

// Target is the directory currently watched, empty when disarmed.
func (w *Watcher) Target() string {
	if w == nil {
		return ""
	}
	return w.armed
}

// Disarm removes the current watch, if any.
func (w *Watcher) Disarm() {
	if w == nil || w.armed == "" {
		return
	}
	_ = w.w.Remove(w.armed)
	w.armed = ""
}

// Poll drains all pending events and reports whether any of them should
// trigger a listing rebuild. Pure permission churn is ignored.
func (w *Watcher) Poll() bool {
	if w == nil {
		return false
	}
	dirty := false
	for {
		select {
		case ev, ok := <-w.w.Events:
			if !ok {
				return dirty
			}
			if ev.Op&^fsnotify.Chmod != 0 {
				dirty = true
			}
		case _, ok := <-w.w.Errors:
			if !ok {
				return dirty
			}
		default:
			return dirty
		}
	}
}

// Close releases the notifier.
func (w *Watcher) Close() {
	if w == nil {
		return
	}
	_ = w.w.Close()
}
