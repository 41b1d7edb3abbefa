// Package library keeps the set of source images a batch works on.
package library

import (
	"context"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/photowatermark/internal/codec"
	"github.com/aliskhannn/photowatermark/internal/processor"
)

// Thumbnail bounds of library entries.
const (
	ThumbnailWidth  = 200
	ThumbnailHeight = 150
)

// Entry is an imported image with its metadata and preview.
type Entry struct {
	Info      codec.Info
	Thumbnail *image.NRGBA
	Image     codec.Image
}

// Manager holds imported images in import order, keyed by absolute path.
// It is safe for concurrent use.
type Manager struct {
	mu      sync.RWMutex
	entries []Entry
	index   map[string]int
}

// NewManager creates an empty Manager.
func NewManager() *Manager {
	return &Manager{index: make(map[string]int)}
}

// Import loads path and adds it to the library. Importing a path that is
// already present succeeds without adding it again.
func (m *Manager) Import(path string) error {
	key, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	m.mu.RLock()
	_, exists := m.index[key]
	m.mu.RUnlock()
	if exists {
		zlog.Logger.Warn().Str("path", path).Msg("image already imported")
		return nil
	}

	img, err := codec.Load(path)
	if err != nil {
		return err
	}
	info, err := codec.Metadata(path)
	if err != nil {
		return err
	}
	entry := Entry{
		Info:      info,
		Thumbnail: codec.Thumbnail(img, ThumbnailWidth, ThumbnailHeight),
		Image:     img,
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.index[key]; exists {
		return nil
	}
	m.index[key] = len(m.entries)
	m.entries = append(m.entries, entry)

	zlog.Logger.Info().Str("path", path).Int("width", info.Width).Int("height", info.Height).Msg("image imported")

	return nil
}

// ImportMany imports paths in order and reports progress after each one.
// A failed import is logged and counted; it never stops the loop. Paths left
// when ctx is cancelled are counted as failed.
func (m *Manager) ImportMany(ctx context.Context, paths []string, progress processor.ProgressFunc) (int, int) {
	total := len(paths)
	ok, failed := 0, 0

	for i, path := range paths {
		err := ctx.Err()
		if err == nil {
			err = m.Import(path)
		}
		if err != nil {
			failed++
			zlog.Logger.Error().Err(err).Str("path", path).Msg("import failed")
		} else {
			ok++
		}

		if progress != nil && i < total-1 {
			progress(processor.Percent(i, total), fmt.Sprintf("importing image %d/%d", i+1, total))
		}
	}

	if progress != nil {
		progress(100, fmt.Sprintf("import finished: %d succeeded, %d failed", ok, failed))
	}

	return ok, failed
}

// ImportFolder imports every supported image below dir, recursively.
func (m *Manager) ImportFolder(ctx context.Context, dir string, progress processor.ProgressFunc) (int, int, error) {
	paths, err := ScanFolder(dir)
	if err != nil {
		return 0, 0, err
	}

	zlog.Logger.Info().Str("dir", dir).Int("found", len(paths)).Msg("scanned folder")

	ok, failed := m.ImportMany(ctx, paths, progress)
	return ok, failed, nil
}

// ScanFolder lists the supported image files below dir in lexical order.
func ScanFolder(dir string) ([]string, error) {
	st, err := os.Stat(dir)
	if err != nil || !st.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", codec.ErrNotFound, dir)
	}

	var paths []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && codec.IsSupported(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}

	return paths, nil
}

// Remove drops path from the library and reports whether it was present.
func (m *Manager) Remove(path string) bool {
	key, err := filepath.Abs(path)
	if err != nil {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	i, ok := m.index[key]
	if !ok {
		zlog.Logger.Warn().Str("path", path).Msg("image not in library")
		return false
	}

	m.entries = append(m.entries[:i], m.entries[i+1:]...)
	delete(m.index, key)
	for k, j := range m.index {
		if j > i {
			m.index[k] = j - 1
		}
	}

	return true
}

// Clear removes every entry.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = nil
	m.index = make(map[string]int)
}

// Count returns the number of entries.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.entries)
}

// Get returns the entry imported from path.
func (m *Manager) Get(path string) (Entry, bool) {
	key, err := filepath.Abs(path)
	if err != nil {
		return Entry{}, false
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	i, ok := m.index[key]
	if !ok {
		return Entry{}, false
	}
	return m.entries[i], true
}

// Entries returns a snapshot of all entries in import order.
func (m *Manager) Entries() []Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]Entry(nil), m.entries...)
}

// Images returns the loaded images in import order.
func (m *Manager) Images() []codec.Image {
	m.mu.RLock()
	defer m.mu.RUnlock()

	images := make([]codec.Image, len(m.entries))
	for i, e := range m.entries {
		images[i] = e.Image
	}
	return images
}
