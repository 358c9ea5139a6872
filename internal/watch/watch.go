// Package watch re-runs an action whenever a watched unit file changes.
package watch

import (
	"context"
	"io"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Op is a set of file operations.
type Op uint8

const (
	OpCreate Op = 1 << iota
	OpWrite
	OpRemove
	OpRename
	OpChmod
)

// Event is a change to one watched file.
type Event struct {
	Path string
	Op   Op
}

// DefaultDelay is how long a file must stay quiet before the action runs.
const DefaultDelay = 100 * time.Millisecond

// Watcher delivers debounced change notifications for a set of files.
type Watcher struct {
	w      *fsnotify.Watcher
	files  map[string]bool
	delay  time.Duration
	logger *log.Logger
}

type Option func(*Watcher)

// WithDelay sets the debounce interval.
func WithDelay(d time.Duration) Option { return func(w *Watcher) { w.delay = d } }

func WithLogger(l *log.Logger) Option { return func(w *Watcher) { w.logger = l } }

// New watches files. Their directories are watched rather than the files so that
// editors replacing a file by rename are still observed.
func New(files []string, opts ...Option) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		w:      fw,
		files:  make(map[string]bool),
		delay:  DefaultDelay,
		logger: log.New(io.Discard, "[rangeloop] ", 0),
	}
	for _, opt := range opts {
		opt(w)
	}
	dirs := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			fw.Close()
			return nil, err
		}
		w.files[abs] = true
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, err
		}
		dirs[dir] = true
	}
	return w, nil
}

func (w *Watcher) Close() error { return w.w.Close() }

func translate(op fsnotify.Op) Op {
	var out Op
	if op&fsnotify.Create != 0 {
		out |= OpCreate
	}
	if op&fsnotify.Write != 0 {
		out |= OpWrite
	}
	if op&fsnotify.Remove != 0 {
		out |= OpRemove
	}
	if op&fsnotify.Rename != 0 {
		out |= OpRename
	}
	if op&fsnotify.Chmod != 0 {
		out |= OpChmod
	}
	return out
}

// Run calls action for every watched file that was created or written, once per
// burst of events, until ctx is done or the underlying watcher fails. Errors from
// action are logged and do not stop the watcher.
func (w *Watcher) Run(ctx context.Context, action func(Event) error) error {
	pending := make(map[string]Op)
	timer := time.NewTimer(w.delay)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.w.Events:
			if !ok {
				return nil
			}
			op := translate(ev.Op)
			if !w.files[filepath.Clean(ev.Name)] || op&(OpCreate|OpWrite) == 0 {
				continue
			}
			pending[filepath.Clean(ev.Name)] |= op
			timer.Reset(w.delay)
		case err, ok := <-w.w.Errors:
			if !ok {
				return nil
			}
			return err
		case <-timer.C:
			for path, op := range pending {
				if err := action(Event{Path: path, Op: op}); err != nil {
					w.logger.Printf("%s: %v", path, err)
				}
				delete(pending, path)
			}
		}
	}
}
