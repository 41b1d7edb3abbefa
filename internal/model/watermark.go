package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Anchor is one of the nine named text placements relative to the image frame.
type Anchor string

const (
	TopLeft      Anchor = "top-left"
	TopCenter    Anchor = "top-center"
	TopRight     Anchor = "top-right"
	LeftCenter   Anchor = "left-center"
	Center       Anchor = "center"
	RightCenter  Anchor = "right-center"
	BottomLeft   Anchor = "bottom-left"
	BottomCenter Anchor = "bottom-center"
	BottomRight  Anchor = "bottom-right"
)

// Anchors lists every supported anchor in reading order.
var Anchors = []Anchor{
	TopLeft, TopCenter, TopRight,
	LeftCenter, Center, RightCenter,
	BottomLeft, BottomCenter, BottomRight,
}

// Valid reports whether a is one of the nine known anchors.
func (a Anchor) Valid() bool {
	for _, known := range Anchors {
		if a == known {
			return true
		}
	}
	return false
}

// DefaultFontSize is used when a spec carries a non-positive font size.
const DefaultFontSize = 36

// Font selects the face used to draw the watermark text.
type Font struct {
	Family string `json:"family"`
	SizePx int    `json:"size_px"`
	Bold   bool   `json:"bold"`
	Italic bool   `json:"italic"`
}

// Color is an opaque RGB triple.
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Hex returns the color as "#rrggbb".
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// UnmarshalJSON accepts either {"r":..,"g":..,"b":..} or a "#rrggbb" string.
func (c *Color) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := ParseColor(s)
		if err != nil {
			return err
		}
		*c = parsed
		return nil
	}

	type plain Color
	return json.Unmarshal(data, (*plain)(c))
}

// ParseColor parses "#rgb" or "#rrggbb" (the leading '#' is optional).
func ParseColor(s string) (Color, error) {
	str := strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(str) {
	case 3:
		str = fmt.Sprintf("%c%c%c%c%c%c", str[0], str[0], str[1], str[1], str[2], str[2])
	case 6:
	default:
		return Color{}, fmt.Errorf("invalid color format: %q", s)
	}

	var c Color
	if _, err := fmt.Sscanf(str, "%02x%02x%02x", &c.R, &c.G, &c.B); err != nil {
		return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}

	return c, nil
}

// WatermarkSpec describes the text watermark drawn onto an image.
type WatermarkSpec struct {
	Text    string `json:"text"`
	Anchor  Anchor `json:"anchor"`
	Opacity int    `json:"opacity"` // 0..100
	Font    Font   `json:"font"`
	Color   Color  `json:"color"`
	Shadow  bool   `json:"shadow"`
	Stroke  bool   `json:"stroke"`
}

// DefaultWatermarkSpec returns the settings a fresh watermark starts from.
func DefaultWatermarkSpec() WatermarkSpec {
	return WatermarkSpec{
		Anchor:  BottomRight,
		Opacity: 50,
		Font:    Font{Family: "Arial", SizePx: DefaultFontSize},
		Color:   Color{R: 255, G: 255, B: 255},
	}
}

// Normalized returns a copy with opacity clamped to [0,100], a positive font size
// and a known anchor.
func (s WatermarkSpec) Normalized() WatermarkSpec {
	s.Opacity = ClampInt(s.Opacity, 0, 100)
	if s.Font.SizePx <= 0 {
		s.Font.SizePx = DefaultFontSize
	}
	if !s.Anchor.Valid() {
		s.Anchor = BottomRight
	}
	return s
}

// ClampInt limits v to [lo, hi].
func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
