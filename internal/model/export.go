package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidResize is returned for resize policies with non-positive values.
var ErrInvalidResize = errors.New("invalid resize policy")

// Format is an export file format.
type Format string

const (
	JPEG Format = "JPEG"
	PNG  Format = "PNG"
)

// ParseFormat accepts "jpeg", "jpg" or "png" in any case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "JPEG", "JPG":
		return JPEG, nil
	case "PNG":
		return PNG, nil
	default:
		return "", fmt.Errorf("unknown export format: %q", s)
	}
}

// UnmarshalText lets JSON and flags name formats in any case.
func (f *Format) UnmarshalText(text []byte) error {
	parsed, err := ParseFormat(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// ResizeKind tags the active ResizePolicy variant.
type ResizeKind string

const (
	ResizeNone           ResizeKind = "none"
	ResizePercent        ResizeKind = "percent"
	ResizeWidth          ResizeKind = "width"
	ResizeHeight         ResizeKind = "height"
	ResizeWidthAndHeight ResizeKind = "width_and_height"
)

// ResizePolicy is a tagged variant: only the fields of Kind are meaningful.
// Build values with the constructors below.
type ResizePolicy struct {
	Kind    ResizeKind `json:"kind"`
	Percent float64    `json:"percent,omitempty"`
	Width   int        `json:"width,omitempty"`
	Height  int        `json:"height,omitempty"`
}

// NoResize keeps the original dimensions.
func NoResize() ResizePolicy { return ResizePolicy{Kind: ResizeNone} }

// ByPercent scales both sides by p percent.
func ByPercent(p float64) ResizePolicy { return ResizePolicy{Kind: ResizePercent, Percent: p} }

// ByWidth fixes the width and keeps the aspect ratio.
func ByWidth(w int) ResizePolicy { return ResizePolicy{Kind: ResizeWidth, Width: w} }

// ByHeight fixes the height and keeps the aspect ratio.
func ByHeight(h int) ResizePolicy { return ResizePolicy{Kind: ResizeHeight, Height: h} }

// ByWidthAndHeight sets both sides verbatim; the aspect ratio is not kept.
func ByWidthAndHeight(w, h int) ResizePolicy {
	return ResizePolicy{Kind: ResizeWidthAndHeight, Width: w, Height: h}
}

// IsNone reports whether the policy leaves dimensions untouched.
// The zero value counts as none.
func (p ResizePolicy) IsNone() bool {
	return p.Kind == ResizeNone || p.Kind == ""
}

// Validate checks that the values of the active variant are positive.
func (p ResizePolicy) Validate() error {
	switch p.Kind {
	case ResizeNone, "":
		return nil
	case ResizePercent:
		if p.Percent <= 0 {
			return fmt.Errorf("%w: percent must be > 0, got %v", ErrInvalidResize, p.Percent)
		}
	case ResizeWidth:
		if p.Width <= 0 {
			return fmt.Errorf("%w: width must be > 0, got %d", ErrInvalidResize, p.Width)
		}
	case ResizeHeight:
		if p.Height <= 0 {
			return fmt.Errorf("%w: height must be > 0, got %d", ErrInvalidResize, p.Height)
		}
	case ResizeWidthAndHeight:
		if p.Width <= 0 || p.Height <= 0 {
			return fmt.Errorf("%w: width and height must be > 0, got %dx%d", ErrInvalidResize, p.Width, p.Height)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidResize, p.Kind)
	}
	return nil
}

// DefaultSuffix is appended to exported file stems unless overridden.
const DefaultSuffix = "_watermarked"

// ExportSpec controls resizing, encoding and naming of exported files.
type ExportSpec struct {
	Format    Format       `json:"format"`
	Quality   int          `json:"quality"` // 0..100, clamped
	Resize    ResizePolicy `json:"resize"`
	Prefix    string       `json:"prefix"`
	Suffix    string       `json:"suffix"`
	OutputDir string       `json:"output_dir"`
}

// DefaultExportSpec returns JPEG at quality 95 with the default suffix.
func DefaultExportSpec(outputDir string) ExportSpec {
	return ExportSpec{
		Format:    JPEG,
		Quality:   95,
		Resize:    NoResize(),
		Suffix:    DefaultSuffix,
		OutputDir: outputDir,
	}
}
