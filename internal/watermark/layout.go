package watermark

import (
	"image"

	"github.com/aliskhannn/photowatermark/internal/model"
)

// Margin is the distance in pixels kept between the text and the image edges.
const Margin = 20

// Position returns the top-left corner of a tw x th text box placed at anchor
// inside a w x h image. Centered axes use integer division.
func Position(anchor model.Anchor, w, h, tw, th int) image.Point {
	left, right := Margin, w-tw-Margin
	top, bottom := Margin, h-th-Margin
	midX, midY := (w-tw)/2, (h-th)/2

	switch anchor {
	case model.TopLeft:
		return image.Pt(left, top)
	case model.TopRight:
		return image.Pt(right, top)
	case model.BottomLeft:
		return image.Pt(left, bottom)
	case model.Center:
		return image.Pt(midX, midY)
	case model.TopCenter:
		return image.Pt(midX, top)
	case model.BottomCenter:
		return image.Pt(midX, bottom)
	case model.LeftCenter:
		return image.Pt(left, midY)
	case model.RightCenter:
		return image.Pt(right, midY)
	default:
		return image.Pt(right, bottom)
	}
}

// Alpha maps an opacity percentage to an alpha byte: round-half-up of
// opacity*2.55, computed in integers so that Alpha(50) == 128.
func Alpha(opacity int) uint8 {
	opacity = model.ClampInt(opacity, 0, 100)
	return uint8((opacity*255 + 50) / 100)
}
