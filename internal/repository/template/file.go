package template

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/aliskhannn/photowatermark/internal/model"
)

// FileStore keeps templates in a single JSON file. It is used when no
// database is configured, e.g. by the batch CLI.
type FileStore struct {
	path string
	now  func() time.Time

	mu sync.Mutex
}

// NewFileStore creates a FileStore backed by path. The file is created on
// the first save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, now: time.Now}
}

// SaveTemplate inserts a template or replaces the one with the same name.
func (s *FileStore) SaveTemplate(_ context.Context, t model.Template) (model.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.read()
	if err != nil {
		return model.Template{}, err
	}

	t.UpdatedAt = s.now().UTC()
	all[t.Name] = t

	if err := s.write(all); err != nil {
		return model.Template{}, err
	}

	return t, nil
}

// GetTemplate retrieves a template by name.
func (s *FileStore) GetTemplate(_ context.Context, name string) (model.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.read()
	if err != nil {
		return model.Template{}, err
	}

	t, ok := all[name]
	if !ok {
		return model.Template{}, ErrTemplateNotFound
	}

	return t, nil
}

// ListTemplates returns all templates ordered by name.
func (s *FileStore) ListTemplates(_ context.Context) ([]model.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.read()
	if err != nil {
		return nil, err
	}

	templates := make([]model.Template, 0, len(all))
	for _, t := range all {
		templates = append(templates, t)
	}
	sort.Slice(templates, func(i, j int) bool { return templates[i].Name < templates[j].Name })

	return templates, nil
}

// DeleteTemplate deletes a template by name.
func (s *FileStore) DeleteTemplate(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.read()
	if err != nil {
		return err
	}

	if _, ok := all[name]; !ok {
		return ErrTemplateNotFound
	}
	delete(all, name)

	return s.write(all)
}

func (s *FileStore) read() (map[string]model.Template, error) {
	all := make(map[string]model.Template)

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return all, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read templates: %w", err)
	}

	if err := json.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("failed to decode templates %s: %w", s.path, err)
	}

	return all, nil
}

func (s *FileStore) write(all map[string]model.Template) error {
	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode templates: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create templates directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write templates: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace templates: %w", err)
	}

	return nil
}
