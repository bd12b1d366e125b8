// Package preview manages local preview files for staged image
// attachments. Each preview is a handle owned by one staged record:
// Acquire copies the source into a private directory, and the copy is
// deleted when the handle is released or the registry is closed.
package preview

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// ErrUnknownHandle is returned when releasing a handle that is not live.
var ErrUnknownHandle = errors.New("unknown preview handle")

// ErrClosed is returned by Acquire after Close.
var ErrClosed = errors.New("preview registry closed")

// Handle identifies one preview.
type Handle struct {
	ID string

	// Path is the preview file a viewer can open.
	Path string
}

// Valid reports whether h refers to a preview at all.
func (h Handle) Valid() bool { return h.ID != "" }

type entry struct {
	path string
}

// Registry owns preview files.
type Registry struct {
	mu      sync.Mutex
	dir     string
	ownsDir bool
	entries map[string]*entry
	closed  bool
	logger  *slog.Logger
}

// NewRegistry creates a registry storing previews in dir. An empty dir
// creates a temporary directory that Close removes.
func NewRegistry(dir string, logger *slog.Logger) (*Registry, error) {
	if logger == nil {
		logger = slog.Default()
	}

	r := &Registry{dir: dir, entries: make(map[string]*entry), logger: logger}

	if dir == "" {
		tmp, err := os.MkdirTemp("", "bidmatch-preview-*")
		if err != nil {
			return nil, fmt.Errorf("create preview directory: %w", err)
		}

		r.dir, r.ownsDir = tmp, true
	} else if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create preview directory: %w", err)
	}

	return r, nil
}

// Acquire copies src into the registry and returns a handle with one
// reference.
func (r *Registry) Acquire(src string) (Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return Handle{}, ErrClosed
	}

	id := uuid.NewString()
	dst := filepath.Join(r.dir, id+strings.ToLower(filepath.Ext(src)))

	if err := copyFile(src, dst); err != nil {
		return Handle{}, err
	}

	r.entries[id] = &entry{path: dst}

	r.logger.Debug("preview acquired", slog.String("id", id), slog.String("src", src))

	return Handle{ID: id, Path: dst}, nil
}

// Release deletes the preview file. Releasing a handle twice returns
// ErrUnknownHandle.
func (r *Registry) Release(h Handle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[h.ID]
	if !ok {
		return ErrUnknownHandle
	}

	delete(r.entries, h.ID)

	r.logger.Debug("preview released", slog.String("id", h.ID))

	if err := os.Remove(e.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove preview: %w", err)
	}

	return nil
}

// Live returns the number of previews still held.
func (r *Registry) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.entries)
}

// Dir returns the directory previews are written to.
func (r *Registry) Dir() string { return r.dir }

// Close releases every preview still held.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}

	r.closed = true

	var errs []error

	for id, e := range r.entries {
		if err := os.Remove(e.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}

		delete(r.entries, id)
	}

	if r.ownsDir {
		if err := os.RemoveAll(r.dir); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}

	defer func() {
		_ = in.Close()
	}()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("create preview: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)

		return fmt.Errorf("copy preview: %w", err)
	}

	return out.Close()
}
