// Package watermark draws text watermarks onto images.
package watermark

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/f64"

	"github.com/aliskhannn/photowatermark/internal/codec"
	"github.com/aliskhannn/photowatermark/internal/fonts"
	"github.com/aliskhannn/photowatermark/internal/model"
)

const (
	// ItalicPadding surrounds the text layer used for simulated italics.
	ItalicPadding = 25
	// ItalicShear is the horizontal shear applied to fake an italic style.
	ItalicShear = 0.25
)

type offset struct{ x, y float64 }

// Bold is simulated by drawing each pass three times at half-pixel offsets.
var (
	regularPasses = []offset{{0, 0}}
	boldPasses    = []offset{{0, 0}, {0.5, 0}, {0, 0.5}}
)

// fontResolver resolves a family and style to a face.
type fontResolver interface {
	Resolve(family string, bold, italic bool, sizePx int) fonts.Face
}

// Compositor renders watermark text onto images.
type Compositor struct {
	fonts fontResolver
}

// New creates a Compositor that takes its faces from r.
func New(r fontResolver) *Compositor {
	return &Compositor{fonts: r}
}

// Render returns img with spec's text drawn onto it. Empty text returns img as is.
// The input image is never modified.
func (c *Compositor) Render(img codec.Image, spec model.WatermarkSpec) codec.Image {
	if spec.Text == "" {
		return img
	}
	spec = spec.Normalized()

	face := c.fonts.Resolve(spec.Font.Family, spec.Font.Bold, spec.Font.Italic, spec.Font.SizePx)
	box := measure(face, spec.Text)

	if face.SimulateItalic {
		return c.renderSheared(img, spec, face, box)
	}

	w, h := img.Width(), img.Height()
	pos := Position(spec.Anchor, w, h, box.w, box.h)
	alpha := Alpha(spec.Opacity)

	// Draw every pass onto a transparent overlay the size of the image.
	overlay := gg.NewContext(w, h)
	overlay.SetFontFace(face)
	pen := newPen(overlay, box, spec)

	if spec.Stroke {
		outline := color.NRGBA{A: alpha}
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				pen.draw(outline, float64(pos.X+dx), float64(pos.Y+dy))
			}
		}
	}
	if spec.Shadow {
		pen.draw(color.NRGBA{A: alpha / 2}, float64(pos.X+2), float64(pos.Y+2))
	}
	pen.draw(textColor(spec.Color, alpha), float64(pos.X), float64(pos.Y))

	return img.Derive(composite(img.Pixels(), overlay.Image().(*image.RGBA), image.Point{}))
}

// renderSheared draws the text alone on a padded layer, shears it, crops it to
// its visible pixels and pastes it at the anchor computed from the sheared size.
func (c *Compositor) renderSheared(img codec.Image, spec model.WatermarkSpec, face fonts.Face, box textBox) codec.Image {
	lw, lh := box.w+2*ItalicPadding, box.h+2*ItalicPadding

	layer := gg.NewContext(lw, lh)
	layer.SetFontFace(face)
	newPen(layer, box, spec).draw(textColor(spec.Color, Alpha(spec.Opacity)), ItalicPadding, ItalicPadding)

	sheared := shear(layer.Image(), ItalicShear)
	bbox, ok := opaqueBounds(sheared)
	if !ok {
		return img
	}
	glyphs := sheared.SubImage(bbox).(*image.RGBA)

	pos := Position(spec.Anchor, img.Width(), img.Height(), bbox.Dx(), bbox.Dy())
	return img.Derive(composite(img.Pixels(), glyphs, pos))
}

// pen draws the watermark text with the top-left of its ink box at (x, y).
type pen struct {
	dc     *gg.Context
	text   string
	origin offset
	passes []offset
}

func newPen(dc *gg.Context, box textBox, spec model.WatermarkSpec) pen {
	p := pen{
		dc:     dc,
		text:   spec.Text,
		origin: box.origin,
		passes: regularPasses,
	}
	if spec.Font.Bold {
		p.passes = boldPasses
	}
	return p
}

func (p pen) draw(c color.Color, x, y float64) {
	p.dc.SetColor(c)
	for _, o := range p.passes {
		p.dc.DrawString(p.text, x+p.origin.x+o.x, y+p.origin.y+o.y)
	}
}

func textColor(c model.Color, alpha uint8) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: alpha}
}

// textBox is the pixel-aligned ink bounding box of a string.
type textBox struct {
	w, h int
	// origin is the dot position relative to the box's top-left corner.
	origin offset
}

// measure returns the ink bounding box of text in face, so side bearings do
// not eat into the margin.
func measure(face font.Face, text string) textBox {
	b, _ := font.BoundString(face, text)
	left, top := b.Min.X.Floor(), b.Min.Y.Floor()
	return textBox{
		w:      b.Max.X.Ceil() - left,
		h:      b.Max.Y.Ceil() - top,
		origin: offset{x: float64(-left), y: float64(-top)},
	}
}

// shear skews src horizontally by factor k: x' = x - k*y, shifted right by k*height
// so the whole layer stays inside the destination.
func shear(src image.Image, k float64) *image.RGBA {
	b := src.Bounds()
	shift := k * float64(b.Dy())
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()+int(math.Ceil(shift)), b.Dy()))

	s2d := f64.Aff3{
		1, -k, shift - float64(b.Min.X) + k*float64(b.Min.Y),
		0, 1, -float64(b.Min.Y),
	}
	xdraw.CatmullRom.Transform(dst, s2d, src, b, xdraw.Over, nil)
	return dst
}

// opaqueBounds returns the smallest rectangle holding every pixel with non-zero alpha.
func opaqueBounds(img *image.RGBA) (image.Rectangle, bool) {
	b := img.Bounds()
	minX, minY := b.Max.X, b.Max.Y
	maxX, maxY := b.Min.X-1, b.Min.Y-1

	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y):]
		for x := 0; x < b.Dx(); x++ {
			if row[x*4+3] == 0 {
				continue
			}
			px := b.Min.X + x
			minX, maxX = min(minX, px), max(maxX, px)
			minY, maxY = min(minY, y), max(maxY, y)
		}
	}
	if maxX < minX {
		return image.Rectangle{}, false
	}
	return image.Rect(minX, minY, maxX+1, maxY+1), true
}

// composite lays layer over base at the given offset and returns a new image.
// Only pixels covered by a non-transparent layer pixel are blended, the rest are
// copied from base unchanged.
func composite(base *image.NRGBA, layer *image.RGBA, at image.Point) *image.NRGBA {
	dst := imaging.Clone(base)
	lb := layer.Bounds()
	area := image.Rectangle{Min: at, Max: at.Add(lb.Size())}.Intersect(dst.Bounds())

	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			src := layer.RGBAAt(lb.Min.X+x-at.X, lb.Min.Y+y-at.Y)
			if src.A == 0 {
				continue
			}
			i := dst.PixOffset(x, y)
			over(dst.Pix[i:i+4:i+4], src)
		}
	}
	return dst
}

// over blends the premultiplied src onto the straight-alpha pixel px in place.
func over(px []uint8, src color.RGBA) {
	sa := float64(src.A) / 255
	keep := float64(px[3]) / 255 * (1 - sa)
	outA := sa + keep

	blend := func(s, d uint8) uint8 {
		v := (float64(s)/255 + float64(d)/255*keep) / outA
		return uint8(math.Round(min(v, 1) * 255))
	}
	px[0] = blend(src.R, px[0])
	px[1] = blend(src.G, px[1])
	px[2] = blend(src.B, px[2])
	px[3] = uint8(math.Round(min(outA, 1) * 255))
}
