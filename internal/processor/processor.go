package processor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/photowatermark/internal/codec"
	"github.com/aliskhannn/photowatermark/internal/geometry"
	"github.com/aliskhannn/photowatermark/internal/model"
)

// ErrIdenticalPath is returned when an export would overwrite its source file.
var ErrIdenticalPath = errors.New("output path is identical to source path")

// fileStorage defines the interface for the export sink.
// It allows writing files to a backend (e.g., local FS, S3, MinIO).
type fileStorage interface {
	Save(ctx context.Context, dir, filename string, src io.Reader) (string, error)
}

// compositor draws a watermark onto an image without mutating it.
type compositor interface {
	Render(img codec.Image, spec model.WatermarkSpec) codec.Image
}

// Processor runs the export pipeline: resize, watermark, convert, encode, write.
type Processor struct {
	fileStorage fileStorage
	compositor  compositor
	load        func(path string) (codec.Image, error)
}

// New creates a new Processor with the given storage backend and compositor.
func New(fs fileStorage, c compositor) *Processor {
	return &Processor{fileStorage: fs, compositor: c, load: codec.Load}
}

// Rendered holds the final pixels of an export together with the path they
// will be written to.
type Rendered struct {
	Image codec.Image
	Path  string
}

// OutputFilename builds "{prefix}{stem}{suffix}{ext}" for a source file name.
// JPEG exports use ".jpg", PNG exports ".png"; anything else keeps the
// source extension.
func OutputFilename(source, prefix, suffix string, format model.Format) string {
	base := filepath.Base(source)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	switch format {
	case model.JPEG:
		ext = ".jpg"
	case model.PNG:
		ext = ".png"
	}

	return prefix + stem + suffix + ext
}

// Export renders img according to spec and wm and writes the result to
// spec.OutputDir. It returns the path reported by the storage backend.
// A nil wm, or one with empty text, exports without a watermark.
func (p *Processor) Export(ctx context.Context, img codec.Image, spec model.ExportSpec, wm *model.WatermarkSpec) (string, error) {
	rendered, err := p.Render(img, spec, wm)
	if err != nil {
		return "", err
	}

	data, err := codec.Encode(rendered.Image, spec.Format, spec.Quality)
	if err != nil {
		return "", fmt.Errorf("failed to encode %s: %w", rendered.Path, err)
	}

	dst, err := p.fileStorage.Save(ctx, spec.OutputDir, filepath.Base(rendered.Path), bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %w", codec.ErrEncodeFailure, err)
	}

	zlog.Logger.Info().
		Str("source", img.Path()).
		Str("output", dst).
		Str("format", string(spec.Format)).
		Msg("image exported")

	return dst, nil
}

// Render performs every pipeline step up to encoding and returns the final
// pixels. The identical-path guard runs first, before any pixel work.
func (p *Processor) Render(img codec.Image, spec model.ExportSpec, wm *model.WatermarkSpec) (Rendered, error) {
	if img.IsZero() {
		return Rendered{}, fmt.Errorf("%w: empty image", codec.ErrDecodeFailure)
	}

	name := OutputFilename(img.Path(), spec.Prefix, spec.Suffix, spec.Format)
	out := filepath.Join(spec.OutputDir, name)
	if samePath(out, img.Path()) {
		return Rendered{}, fmt.Errorf("%w: %s", ErrIdenticalPath, out)
	}

	if spec.Format != model.JPEG && spec.Format != model.PNG {
		return Rendered{}, fmt.Errorf("%w: %q", codec.ErrUnsupportedFormat, spec.Format)
	}

	result := img
	if !spec.Resize.IsNone() {
		resized, err := geometry.Resize(result, spec.Resize)
		if err != nil {
			return Rendered{}, fmt.Errorf("failed to resize %s: %w", img.Path(), err)
		}
		result = resized
	}

	if wm != nil && wm.Text != "" {
		result = p.compositor.Render(result, *wm)
	}

	return Rendered{Image: codec.Convert(result, spec.Format), Path: out}, nil
}

// samePath reports whether a and b resolve to the same absolute path.
func samePath(a, b string) bool {
	if b == "" {
		return false
	}
	absA, err := filepath.Abs(a)
	if err != nil {
		return false
	}
	absB, err := filepath.Abs(b)
	if err != nil {
		return false
	}
	return absA == absB
}
