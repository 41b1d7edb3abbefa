// Package fonts resolves a family and style to a renderable font face.
//
// Resolution never fails: when no candidate file can be loaded the resolver
// degrades to a fixed-size built-in bitmap font and logs the fallback.
package fonts

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/golang/freetype/truetype"
	"github.com/wb-go/wbf/zlog"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"

	"github.com/aliskhannn/photowatermark/internal/model"
)

// Face is a resolved font face plus what the caller must know about it.
type Face struct {
	font.Face

	Family string
	Style  Style
	Path   string // empty for the built-in face

	// SimulateItalic asks the renderer to shear the text, the family has no italic glyphs.
	SimulateItalic bool
	// Fallback is set when the built-in default face replaced the requested font.
	Fallback bool
}

// parsedFont builds sized faces from a parsed font file.
type parsedFont interface {
	face(sizePx float64) (font.Face, error)
}

type trueTypeFont struct{ f *truetype.Font }

func (t trueTypeFont) face(sizePx float64) (font.Face, error) {
	return truetype.NewFace(t.f, &truetype.Options{Size: sizePx, DPI: 72}), nil
}

type openTypeFont struct{ f *opentype.Font }

func (o openTypeFont) face(sizePx float64) (font.Face, error) {
	return opentype.NewFace(o.f, &opentype.FaceOptions{Size: sizePx, DPI: 72, Hinting: font.HintingNone})
}

type resolveKey struct {
	family string
	style  Style
}

type resolution struct {
	path string
	font parsedFont
}

// Resolver looks fonts up in an ordered list of directories.
// Lookups and parsed files are cached for the lifetime of the Resolver.
// It is safe for concurrent use.
type Resolver struct {
	dirs []string

	mu       sync.Mutex
	resolved map[resolveKey]resolution
	parsed   map[string]parsedFont
}

// NewResolver creates a Resolver searching dirs in the given order.
func NewResolver(dirs []string) *Resolver {
	return &Resolver{
		dirs:     append([]string(nil), dirs...),
		resolved: make(map[resolveKey]resolution),
		parsed:   make(map[string]parsedFont),
	}
}

// Resolve returns a face for family at sizePx pixels.
func (r *Resolver) Resolve(family string, bold, italic bool, sizePx int) Face {
	if sizePx <= 0 {
		sizePx = model.DefaultFontSize
	}

	family = canonicalFamily(family)
	simulate := italic && noNativeItalic[family]
	if simulate {
		italic = false
	}
	style := StyleKey(bold, italic)

	res := r.lookup(family, style)
	if res.font != nil {
		face, err := res.font.face(float64(sizePx))
		if err == nil {
			return Face{Face: face, Family: family, Style: style, Path: res.path, SimulateItalic: simulate}
		}
		zlog.Logger.Warn().Err(err).Str("path", res.path).Msg("failed to build font face")
	}

	return Face{Face: basicfont.Face7x13, Family: family, Style: Normal, SimulateItalic: simulate, Fallback: true}
}

// lookup finds the first loadable candidate of style, then of the normal style.
func (r *Resolver) lookup(family string, style Style) resolution {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := resolveKey{family: family, style: style}
	if res, ok := r.resolved[key]; ok {
		return res
	}

	styles := []Style{style}
	if style != Normal {
		styles = append(styles, Normal)
	}

	var res resolution
	if candidates, ok := families[family]; ok {
	search:
		for _, s := range styles {
			for _, name := range candidates[s] {
				for _, dir := range r.dirs {
					path := filepath.Join(dir, name)
					if pf, err := r.load(path); err == nil {
						res = resolution{path: path, font: pf}
						break search
					}
				}
			}
		}
	}

	if res.font == nil {
		zlog.Logger.Warn().
			Str("family", family).
			Str("style", string(style)).
			Msg("font not found, using built-in default font")
	}

	r.resolved[key] = res
	return res
}

// load parses the font file at path, caching successful parses. Callers hold r.mu.
func (r *Resolver) load(path string) (parsedFont, error) {
	if pf, ok := r.parsed[path]; ok {
		return pf, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	pf, err := parseFont(path, data)
	if err != nil {
		zlog.Logger.Debug().Err(err).Str("path", path).Msg("skipping unreadable font")
		return nil, err
	}

	r.parsed[path] = pf
	return pf, nil
}

// parseFont decodes TrueType files with freetype and collections or CFF-based
// OpenType files with x/image/font/opentype.
func parseFont(path string, data []byte) (parsedFont, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ttc", ".otc":
		coll, err := opentype.ParseCollection(data)
		if err != nil {
			return nil, fmt.Errorf("parse collection %s: %w", path, err)
		}
		f, err := coll.Font(0)
		if err != nil {
			return nil, fmt.Errorf("read first font of %s: %w", path, err)
		}
		return openTypeFont{f: f}, nil
	case ".otf":
		f, err := opentype.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		return openTypeFont{f: f}, nil
	}

	if f, err := truetype.Parse(data); err == nil {
		return trueTypeFont{f: f}, nil
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return openTypeFont{f: f}, nil
}

// canonicalFamily matches family case-insensitively against the table.
func canonicalFamily(family string) string {
	family = strings.TrimSpace(family)
	if _, ok := families[family]; ok {
		return family
	}
	for name := range families {
		if strings.EqualFold(name, family) {
			return name
		}
	}
	return family
}
