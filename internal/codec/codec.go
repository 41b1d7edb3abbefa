// Package codec loads, describes and encodes raster images.
//
// Every decoded image is normalized once at load time: images carrying an alpha
// channel keep it (RGBA), everything else (RGB, luminance, palette, CMYK) becomes
// opaque RGB. Pixels are always held as *image.NRGBA.
package codec

import (
	"errors"
	"image"
	"image/color"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

var (
	// ErrUnsupportedFormat is returned for file extensions or export formats the codec does not handle.
	ErrUnsupportedFormat = errors.New("unsupported image format")
	// ErrNotFound is returned when the source file does not exist.
	ErrNotFound = errors.New("image not found")
	// ErrDecodeFailure is returned when a file cannot be read or decoded as an image.
	ErrDecodeFailure = errors.New("failed to decode image")
	// ErrEncodeFailure is returned when an image cannot be encoded or written.
	ErrEncodeFailure = errors.New("failed to encode image")
)

// supportedFormats maps lower-case file extensions to the format they hold.
var supportedFormats = map[string]string{
	".jpg":  "JPEG",
	".jpeg": "JPEG",
	".jpe":  "JPEG",
	".jfif": "JPEG",
	".png":  "PNG",
	".bmp":  "BMP",
	".dib":  "BMP",
	".tif":  "TIFF",
	".tiff": "TIFF",
}

// IsSupported reports whether path has a supported image extension.
// The check is case-insensitive and does not touch the file.
func IsSupported(path string) bool {
	_, ok := supportedFormats[strings.ToLower(filepath.Ext(path))]
	return ok
}

// FormatOf returns the format name implied by the extension of path, or "".
func FormatOf(path string) string {
	return supportedFormats[strings.ToLower(filepath.Ext(path))]
}

// SupportedExtensions returns the recognised extensions, grouped by format.
func SupportedExtensions() []string {
	return []string{".jpg", ".jpeg", ".jpe", ".jfif", ".png", ".bmp", ".dib", ".tif", ".tiff"}
}

// Mode is the channel layout of an Image.
type Mode string

const (
	// ModeRGB is an opaque image; every alpha value is 255.
	ModeRGB Mode = "RGB"
	// ModeRGBA is an image with a meaningful alpha channel.
	ModeRGBA Mode = "RGBA"
)

// HasAlpha reports whether the mode carries an alpha channel.
func (m Mode) HasAlpha() bool {
	return m == ModeRGBA
}

// Image is a decoded, immutable raster image.
// Operations that change pixels return a new Image; the buffer held by an
// Image is never written after construction.
type Image struct {
	pix  *image.NRGBA
	mode Mode
	path string
}

// FromImage copies src into a new Image. RGB mode forces every pixel opaque.
func FromImage(src image.Image, mode Mode, path string) Image {
	pix := imaging.Clone(src)
	if mode != ModeRGBA {
		mode = ModeRGB
		setOpaque(pix)
	}
	return Image{pix: pix, mode: mode, path: path}
}

// Derive wraps pix as a new Image with the same mode and origin path as i.
// Ownership of pix passes to the returned Image.
func (i Image) Derive(pix *image.NRGBA) Image {
	return Image{pix: pix, mode: i.mode, path: i.path}
}

// Pixels returns the pixel buffer. It is shared and must be treated as read-only.
func (i Image) Pixels() *image.NRGBA { return i.pix }

// Clone returns a private, writable copy of the pixel buffer.
func (i Image) Clone() *image.NRGBA { return imaging.Clone(i.pix) }

// Mode returns the channel layout fixed at load time.
func (i Image) Mode() Mode { return i.mode }

// Path is the file the image was loaded from.
func (i Image) Path() string { return i.path }

// Width returns the image width in pixels.
func (i Image) Width() int { return i.pix.Bounds().Dx() }

// Height returns the image height in pixels.
func (i Image) Height() int { return i.pix.Bounds().Dy() }

// IsZero reports whether i holds no pixels.
func (i Image) IsZero() bool { return i.pix == nil }

// Thumbnail fits the image into maxW x maxH keeping its aspect ratio.
// Images already inside the box are copied unchanged.
func Thumbnail(img Image, maxW, maxH int) *image.NRGBA {
	return imaging.Fit(img.pix, maxW, maxH, imaging.Lanczos)
}

// modeOf classifies a decoded image. Straight-alpha models always keep alpha;
// premultiplied models (PNG truecolor and some TIFFs decode to them) only when
// some pixel is actually translucent.
func modeOf(img image.Image) Mode {
	switch img.ColorModel() {
	case color.NRGBAModel, color.NRGBA64Model:
		return ModeRGBA
	case color.RGBAModel, color.RGBA64Model:
		if o, ok := img.(interface{ Opaque() bool }); ok && !o.Opaque() {
			return ModeRGBA
		}
	}
	return ModeRGB
}

// modeName names the color model found in a file header.
func modeName(m color.Model) string {
	switch m {
	case color.GrayModel, color.Gray16Model:
		return "L"
	case color.NRGBAModel, color.NRGBA64Model:
		return "RGBA"
	case color.CMYKModel:
		return "CMYK"
	}
	if _, ok := m.(color.Palette); ok {
		return "P"
	}
	return "RGB"
}

func setOpaque(pix *image.NRGBA) {
	for i := 3; i < len(pix.Pix); i += 4 {
		pix.Pix[i] = 0xff
	}
}
