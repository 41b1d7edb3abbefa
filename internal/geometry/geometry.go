// Package geometry resolves resize policies into target dimensions.
package geometry

import (
	"errors"
	"fmt"

	"github.com/disintegration/imaging"

	"github.com/aliskhannn/photowatermark/internal/codec"
	"github.com/aliskhannn/photowatermark/internal/model"
)

// ErrInvalidSize is returned when a policy resolves to a side shorter than one pixel.
var ErrInvalidSize = errors.New("invalid target size")

// TargetSize computes the output dimensions for policy.
//
// Scaled sides are truncated, never rounded. WidthAndHeight is applied verbatim
// and does not preserve the aspect ratio.
func TargetSize(origW, origH int, policy model.ResizePolicy) (int, int) {
	switch policy.Kind {
	case model.ResizePercent:
		scale := policy.Percent / 100
		return int(float64(origW) * scale), int(float64(origH) * scale)
	case model.ResizeWidth:
		ratio := float64(policy.Width) / float64(origW)
		return policy.Width, int(float64(origH) * ratio)
	case model.ResizeHeight:
		ratio := float64(policy.Height) / float64(origH)
		return int(float64(origW) * ratio), policy.Height
	case model.ResizeWidthAndHeight:
		return policy.Width, policy.Height
	default:
		return origW, origH
	}
}

// Resize returns img scaled per policy with a Lanczos filter.
// An identity policy returns img itself.
func Resize(img codec.Image, policy model.ResizePolicy) (codec.Image, error) {
	if err := policy.Validate(); err != nil {
		return codec.Image{}, err
	}

	w, h := TargetSize(img.Width(), img.Height(), policy)
	if w < 1 || h < 1 {
		return codec.Image{}, fmt.Errorf("%w: %dx%d from %dx%d", ErrInvalidSize, w, h, img.Width(), img.Height())
	}
	if w == img.Width() && h == img.Height() {
		return img, nil
	}

	return img.Derive(imaging.Resize(img.Pixels(), w, h, imaging.Lanczos)), nil
}
