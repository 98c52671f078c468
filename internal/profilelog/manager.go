package profilelog

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Option customizes a single Log call.
type Option func(*record)

// WithDuration attaches duration_sec to the record.
func WithDuration(seconds float64) Option {
	return func(r *record) {
		r.duration = &seconds
	}
}

// WithExtra attaches a free-form nested payload under "extra".
func WithExtra(extra map[string]any) Option {
	return func(r *record) {
		r.extra = extra
	}
}

// WithStep overrides the process-context step for this record.
func WithStep(step int) Option {
	return func(r *record) {
		r.step = step
	}
}

// WithWorker overrides the process-context rank for this record.
func WithWorker(rank int) Option {
	return func(r *record) {
		r.worker = rank
	}
}

// WithFields appends caller fields, emitted after the reserved prefix in the
// order given.
func WithFields(fields ...Field) Option {
	return func(r *record) {
		r.fields = append(r.fields, fields...)
	}
}

// handle is one cached append-mode log file. mu serializes write+flush so
// concurrent Log calls to the same path cannot interleave lines.
type handle struct {
	mu   sync.Mutex
	file *os.File
	w    *bufio.Writer
}

// Manager caches one open append-mode handle per log path and appends one
// JSON line per Log call, flushing immediately. Safe for concurrent use.
type Manager struct {
	mu      sync.Mutex
	handles map[string]*handle
}

// NewManager constructs an empty manager. The owner is responsible for
// calling CloseAll when the manager is no longer needed.
func NewManager() *Manager {
	return &Manager{handles: make(map[string]*handle)}
}

var (
	defaultOnce    sync.Once
	defaultManager *Manager
)

// Default returns the process-wide manager, constructing it on first call.
// Go has no exit hooks, so the process owner defers CloseAll on shutdown;
// CloseAll is idempotent and may be called from more than one exit path.
func Default() *Manager {
	defaultOnce.Do(func() {
		defaultManager = NewManager()
	})
	return defaultManager
}

// getOrCreateHandle returns the cached handle for path, creating parent
// directories and opening the file in append mode on first use. The cache
// holds at most one handle per path.
func (m *Manager) getOrCreateHandle(path string) (*handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if h, ok := m.handles[path]; ok {
		return h, nil
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log directory %s: %w", dir, err)
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	h := &handle{file: file, w: bufio.NewWriter(file)}
	m.handles[path] = h
	return h, nil
}

// Log appends one event record to the file at path and flushes it. Step and
// worker default to the process context unless overridden via WithStep /
// WithWorker. Directory-creation, open, write, and serialization failures are
// returned; there is no retry and no fallback destination.
func (m *Manager) Log(path, event string, opts ...Option) error {
	rec := record{
		timestamp: time.Now(),
		step:      CurrentStep(),
		worker:    CurrentRank(),
		event:     event,
	}
	for _, opt := range opts {
		opt(&rec)
	}

	line, err := rec.encode()
	if err != nil {
		return err
	}

	h, err := m.getOrCreateHandle(path)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, err := h.w.Write(line); err != nil {
		return fmt.Errorf("write log record to %s: %w", path, err)
	}
	if err := h.w.Flush(); err != nil {
		return fmt.Errorf("flush log file %s: %w", path, err)
	}
	return nil
}

// OpenHandles reports how many distinct paths currently hold an open handle.
func (m *Manager) OpenHandles() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.handles)
}

// CloseAll flushes and closes every cached handle and empties the cache.
// Idempotent: a second call finds an empty cache and returns nil. The first
// error encountered is returned after all handles have been closed.
func (m *Manager) CloseAll() error {
	m.mu.Lock()
	handles := m.handles
	m.handles = make(map[string]*handle)
	m.mu.Unlock()

	var firstErr error
	for path, h := range handles {
		h.mu.Lock()
		if err := h.w.Flush(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("flush log file %s: %w", path, err)
		}
		if err := h.file.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close log file %s: %w", path, err)
		}
		h.mu.Unlock()
	}
	return firstErr
}
