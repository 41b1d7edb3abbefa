package codec

import (
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// Info describes an image file without keeping it open.
type Info struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	SizeBytes int64  `json:"size_bytes"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Format    string `json:"format"`
	Mode      string `json:"mode"`
}

// Load decodes the image at path and normalizes its color mode.
func Load(path string) (Image, error) {
	if !IsSupported(path) {
		return Image{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}

	f, err := openRegular(path)
	if err != nil {
		return Image{}, err
	}
	defer f.Close()

	// Decode into an image object.
	img, err := imaging.Decode(f)
	if err != nil {
		return Image{}, fmt.Errorf("%w: %s: %v", ErrDecodeFailure, path, err)
	}

	return FromImage(img, modeOf(img), path), nil
}

// Metadata reads name, size, dimensions, format and mode of the file at path.
// Only the image header is decoded.
func Metadata(path string) (Info, error) {
	f, err := openRegular(path)
	if err != nil {
		return Info{}, err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return Info{}, fmt.Errorf("stat %s: %w", path, err)
	}

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return Info{}, fmt.Errorf("%w: %s: %v", ErrDecodeFailure, path, err)
	}

	return Info{
		Name:      filepath.Base(path),
		Path:      path,
		SizeBytes: st.Size(),
		Width:     cfg.Width,
		Height:    cfg.Height,
		Format:    strings.ToUpper(format),
		Mode:      modeName(cfg.ColorModel),
	}, nil
}

// openRegular opens path, mapping a missing file or a directory to ErrNotFound.
func openRegular(path string) (*os.File, error) {
	st, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if st.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrNotFound, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}
