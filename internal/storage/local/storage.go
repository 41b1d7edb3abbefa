// Package local writes exported images to the local filesystem.
package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Storage saves files under regular directories, creating them as needed.
type Storage struct {
	dirPerm  os.FileMode
	filePerm os.FileMode
}

// NewStorage creates a Storage with 0755 directories and 0644 files.
func NewStorage() *Storage {
	return &Storage{dirPerm: 0o755, filePerm: 0o644}
}

// Save writes src to dir/filename and returns the written path.
// The file is written to a temporary name first and renamed into place,
// so a failed export never leaves a truncated image behind.
func (s *Storage) Save(ctx context.Context, dir, filename string, src io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, s.dirPerm); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	dst := filepath.Join(dir, filename)
	tmp, err := os.CreateTemp(dir, "."+filename+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Chmod(s.filePerm); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to set file mode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close file: %w", err)
	}

	if err := os.Rename(tmp.Name(), dst); err != nil {
		return "", fmt.Errorf("failed to move file into place: %w", err)
	}

	return dst, nil
}
