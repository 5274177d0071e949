package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/indaco/venvsync/internal/locator"
	"github.com/indaco/venvsync/internal/logging"
)

// DefaultDebounce is how long the Watcher waits for more changes before
// notifying. Creating a venv touches many files in quick succession.
const DefaultDebounce = 750 * time.Millisecond

// scriptDirs hold the interpreter inside a venv.
var scriptDirs = []string{"bin", "Scripts"}

// Watcher notices candidate venv folders appearing or disappearing in the
// directories between the active document and the workspace root.
//
// For every directory in that chain it watches the directory itself, each
// existing candidate folder in it, and the folder's script directory, so
// both a new venv and a deleted interpreter are seen.
type Watcher struct {
	fsw        *fsnotify.Watcher
	workspace  string
	candidates map[string]bool
	debounce   time.Duration
	notify     func()
	log        *logging.Channel

	mu      sync.Mutex
	chain   map[string]bool
	watched map[string]bool
}

// WatcherOption customises a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) { w.debounce = d }
}

// NewWatcher creates a Watcher that calls notify, debounced, when a
// candidate venv folder changes. The workspace root is watched at once.
func NewWatcher(workspace string, candidates []string, notify func(), log *logging.Channel, opts ...WatcherOption) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if log == nil {
		log = logging.Discard()
	}

	w := &Watcher{
		fsw:        fsw,
		workspace:  filepath.Clean(workspace),
		candidates: make(map[string]bool, len(candidates)),
		debounce:   DefaultDebounce,
		notify:     notify,
		log:        log,
		chain:      map[string]bool{},
		watched:    map[string]bool{},
	}
	for _, c := range candidates {
		w.candidates[c] = true
	}
	for _, opt := range opts {
		opt(w)
	}

	w.Track(w.workspace)
	return w, nil
}

// Track moves the watched chain to the directories from path (a file or a
// directory) up to the workspace root. Paths outside the workspace only
// watch their own directory.
func (w *Watcher) Track(path string) {
	dir := filepath.Clean(path)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		dir = filepath.Dir(dir)
	}

	chain := map[string]bool{w.workspace: true}
	for d := dir; ; d = filepath.Dir(d) {
		chain[d] = true
		if d == w.workspace || !locator.Within(w.workspace, d) || filepath.Dir(d) == d {
			break
		}
	}

	want := map[string]bool{}
	for d := range chain {
		want[d] = true
		for c := range w.candidates {
			venv := filepath.Join(d, c)
			if isDir(venv) {
				want[venv] = true
				for _, s := range scriptDirs {
					if sd := filepath.Join(venv, s); isDir(sd) {
						want[sd] = true
					}
				}
			}
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.chain = chain
	for p := range w.watched {
		if !want[p] {
			_ = w.fsw.Remove(p)
			delete(w.watched, p)
		}
	}
	for p := range want {
		w.addLocked(p)
	}
}

func (w *Watcher) addLocked(p string) {
	if w.watched[p] {
		return
	}
	if err := w.fsw.Add(p); err != nil {
		w.log.Debug("cannot watch directory", "path", p, "error", err)
		return
	}
	w.watched[p] = true
}

// Watched returns the directories currently watched.
func (w *Watcher) Watched() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, 0, len(w.watched))
	for p := range w.watched {
		out = append(out, p)
	}
	return out
}

// Run forwards relevant changes to notify until ctx is done or the watcher
// is closed.
func (w *Watcher) Run(ctx context.Context) error {
	var timer *time.Timer
	var timerC <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.handle(event) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			timerC = timer.C

		case <-timerC:
			timerC = nil
			w.log.Debug("virtual environment folders changed")
			w.notify()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watcher error", "error", err)
		}
	}
}

// handle updates watches for event and reports whether it concerns a
// candidate venv folder.
func (w *Watcher) handle(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	name := filepath.Clean(event.Name)
	parent := filepath.Dir(name)

	switch {
	case w.chain[parent] && w.candidates[filepath.Base(name)]:
		// The venv folder itself.
	case w.chain[filepath.Dir(parent)] && w.candidates[filepath.Base(parent)]:
		// Something directly inside a venv folder: a script directory, or
		// python.exe in the Windows layout.
	case w.isScriptDir(parent):
		// An interpreter inside bin or Scripts.
	default:
		return false
	}

	if event.Has(fsnotify.Create) && isDir(name) {
		w.addLocked(name)
	}
	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		delete(w.watched, name)
	}
	return true
}

func (w *Watcher) isScriptDir(dir string) bool {
	venv := filepath.Dir(dir)
	if !w.candidates[filepath.Base(venv)] || !w.chain[filepath.Dir(venv)] {
		return false
	}
	base := filepath.Base(dir)
	for _, s := range scriptDirs {
		if base == s {
			return true
		}
	}
	return false
}

// Close stops the underlying fsnotify watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func isDir(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}
