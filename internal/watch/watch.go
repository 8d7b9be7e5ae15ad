// Package watch reports playlist files appearing, changing and disappearing in
// the working directory.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	log "github.com/chmouel/lazyplaylist/internal/log"
)

// DefaultDebounce is the window in which repeated events for a file collapse.
const DefaultDebounce = 300 * time.Millisecond

// Change kinds.
const (
	Created  = "created"
	Modified = "modified"
	Removed  = "removed"
)

// Change is one reported file event.
type Change struct {
	Kind string
	Name string // base name inside the watched directory
	At   time.Time
}

func (c Change) String() string {
	return fmt.Sprintf("%s %s", c.Kind, c.Name)
}

// Watcher watches a single directory, non-recursively.
type Watcher struct {
	dir      string
	pattern  string
	debounce time.Duration
	watcher  *fsnotify.Watcher
	now      func() time.Time

	mu   sync.Mutex
	last map[string]time.Time
}

// New starts watching dir for files whose base name matches pattern.
func New(dir, pattern string, debounce time.Duration) (*Watcher, error) {
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid playlist pattern %q: %w", pattern, err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	return &Watcher{
		dir:      dir,
		pattern:  pattern,
		debounce: debounce,
		watcher:  fw,
		now:      time.Now,
		last:     make(map[string]time.Time),
	}, nil
}

// Run calls fn for every change until ctx is done, then closes the watcher.
func (w *Watcher) Run(ctx context.Context, fn func(Change)) error {
	defer func() { _ = w.watcher.Close() }()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			change, ok := w.classify(event)
			if !ok || !w.shouldEmit(change) {
				continue
			}
			fn(change)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("watch: %v", err)
		}
	}
}

func (w *Watcher) classify(event fsnotify.Event) (Change, bool) {
	name := filepath.Base(event.Name)
	if filepath.Dir(event.Name) != filepath.Clean(w.dir) {
		return Change{}, false
	}
	if ok, _ := filepath.Match(w.pattern, name); !ok {
		return Change{}, false
	}

	change := Change{Name: name, At: w.now()}
	switch {
	case event.Op&fsnotify.Create != 0:
		change.Kind = Created
	case event.Op&fsnotify.Write != 0:
		change.Kind = Modified
	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		change.Kind = Removed
	default:
		return Change{}, false
	}
	return change, true
}

// shouldEmit drops a change when the same kind of change to the same file was
// emitted less than the debounce window ago. Entries outside the window are
// pruned whenever a change is recorded.
func (w *Watcher) shouldEmit(c Change) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	key := c.Kind + "\x00" + c.Name
	if last, ok := w.last[key]; ok && c.At.Sub(last) < w.debounce {
		return false
	}
	for k, at := range w.last {
		if c.At.Sub(at) >= w.debounce {
			delete(w.last, k)
		}
	}
	w.last[key] = c.At
	return true
}
