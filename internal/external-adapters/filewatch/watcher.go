// Package filewatch reports content changes of a single file.
package filewatch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ochairo/filedrecipes/internal/domain/interfaces"
)

// DefaultDebounce is the quiet period applied when none is configured
const DefaultDebounce = 200 * time.Millisecond

// Event reports that the watched file settled with different content
type Event struct {
	Path string
	// Digest is the hex SHA-256 of the new content, empty when the file is gone
	Digest string
	Time   time.Time
}

// Watcher watches the parent directory of one file, so atomic
// replace-by-rename is observed, and emits one Event per debounced burst of
// writes that changed the file's content.
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	debounce time.Duration
	logger   interfaces.Logger

	events   chan Event
	done     chan struct{}
	stopOnce sync.Once

	mu       sync.Mutex
	started  bool
	lastSeen string
}

// Option configures a Watcher
type Option func(*Watcher)

// WithDebounce sets the quiet period after the last filesystem event
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger interfaces.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// NewWatcher creates a watcher for path. Call Start to begin delivery.
func NewWatcher(path string, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	w := &Watcher{
		path:     abs,
		watcher:  fsw,
		debounce: DefaultDebounce,
		logger:   &interfaces.NoOpLogger{},
		events:   make(chan Event, 1),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start watches the file's directory until ctx is done or Stop is called.
// The Events channel is closed when watching ends.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return nil
	}
	w.started = true
	w.mu.Unlock()

	digest, err := fileDigest(w.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	w.lastSeen = digest

	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(w.path), err)
	}

	go w.loop(ctx)
	return nil
}

// Events returns the change channel
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Stop ends watching. Safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		_ = w.watcher.Close()
	})
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.events)

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
			return
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path || event.Op == fsnotify.Chmod {
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
			w.flush()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("File watcher error", interfaces.F("error", err))
		}
	}
}

func (w *Watcher) flush() {
	digest, err := fileDigest(w.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		w.logger.Warn("Failed to hash watched file",
			interfaces.F("path", w.path),
			interfaces.F("error", err))
		return
	}
	if digest == w.lastSeen {
		return
	}
	w.lastSeen = digest

	event := Event{Path: w.path, Digest: digest, Time: time.Now()}
	select {
	case w.events <- event:
	default:
		// A pending event already tells the consumer to reload
		w.logger.Debug("Dropped coalesced change event", interfaces.F("path", w.path))
	}
}

// fileDigest returns the hex SHA-256 of the file, or "" with an
// os.ErrNotExist error when it is missing
func fileDigest(path string) (string, error) {
	//nolint:gosec // G304: path is the configured recipe file
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	//nolint:errcheck // Defer close on read-only file
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash file: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
