package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/aliskhannn/photowatermark/internal/model"
)

// options holds everything parsed from the command line.
type options struct {
	inputs        []string
	export        model.ExportSpec
	watermark     model.WatermarkSpec
	template      string
	templatesPath string
	fontDirs      []string
	systemFonts   bool
	logLevel      string

	// changed records which watermark flags were given explicitly; they
	// override the fields of a loaded template.
	changed map[string]bool
}

var watermarkFlags = []string{
	"text", "anchor", "opacity", "font", "size", "bold", "italic", "color", "shadow", "stroke",
}

func parseOptions(args []string) (options, error) {
	fs := pflag.NewFlagSet("photowatermark-batch", pflag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: photowatermark-batch [flags] <file|dir>...\n\n")
		fs.PrintDefaults()
	}

	def := model.DefaultWatermarkSpec()

	out := fs.StringP("out", "o", "", "output directory (required)")
	format := fs.StringP("format", "f", string(model.JPEG), "output format: JPEG or PNG")
	quality := fs.IntP("quality", "q", 95, "JPEG quality 0-100")
	prefix := fs.String("prefix", "", "output file name prefix")
	suffix := fs.String("suffix", model.DefaultSuffix, "output file name suffix")
	percent := fs.Float64("resize-percent", 0, "scale both sides by this percent")
	width := fs.Int("resize-width", 0, "target width; keeps aspect unless --resize-height is set too")
	height := fs.Int("resize-height", 0, "target height; keeps aspect unless --resize-width is set too")

	text := fs.StringP("text", "t", "", "watermark text; empty exports without watermark")
	anchor := fs.StringP("anchor", "a", string(def.Anchor), "watermark position, e.g. top-left, center, bottom-right")
	opacity := fs.Int("opacity", def.Opacity, "watermark opacity 0-100")
	family := fs.String("font", def.Font.Family, "font family")
	size := fs.Int("size", def.Font.SizePx, "font size in pixels")
	bold := fs.Bool("bold", false, "bold text")
	italic := fs.Bool("italic", false, "italic text")
	color := fs.String("color", def.Color.Hex(), "text color as #rrggbb")
	shadow := fs.Bool("shadow", false, "draw a drop shadow")
	stroke := fs.Bool("stroke", false, "draw a black outline")

	template := fs.String("template", "", "name of a saved watermark template")
	templatesPath := fs.String("templates", "./config/templates.json", "template file")
	fontDirs := fs.StringSlice("font-dir", nil, "extra font directory, searched first (repeatable)")
	noSystemFonts := fs.Bool("no-system-fonts", false, "do not search the OS font directories")
	logLevel := fs.String("log-level", "info", "log level")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	if fs.NArg() == 0 {
		return options{}, errors.New("no input files or folders given")
	}
	if *out == "" {
		return options{}, errors.New("--out is required")
	}

	f, err := model.ParseFormat(*format)
	if err != nil {
		return options{}, err
	}

	resize := resizePolicy(*percent, *width, *height)
	if err := resize.Validate(); err != nil {
		return options{}, err
	}

	if !model.Anchor(*anchor).Valid() {
		return options{}, fmt.Errorf("unknown anchor %q", *anchor)
	}

	c, err := model.ParseColor(*color)
	if err != nil {
		return options{}, err
	}

	opts := options{
		inputs: fs.Args(),
		export: model.ExportSpec{
			Format:    f,
			Quality:   *quality,
			Resize:    resize,
			Prefix:    *prefix,
			Suffix:    *suffix,
			OutputDir: *out,
		},
		watermark: model.WatermarkSpec{
			Text:    *text,
			Anchor:  model.Anchor(*anchor),
			Opacity: *opacity,
			Font:    model.Font{Family: *family, SizePx: *size, Bold: *bold, Italic: *italic},
			Color:   c,
			Shadow:  *shadow,
			Stroke:  *stroke,
		},
		template:      *template,
		templatesPath: *templatesPath,
		fontDirs:      *fontDirs,
		systemFonts:   !*noSystemFonts,
		logLevel:      *logLevel,
		changed:       make(map[string]bool),
	}
	for _, name := range watermarkFlags {
		opts.changed[name] = fs.Changed(name)
	}

	return opts, nil
}

// resizePolicy picks the policy from the resize flags; percent wins.
func resizePolicy(percent float64, width, height int) model.ResizePolicy {
	switch {
	case percent != 0:
		return model.ByPercent(percent)
	case width != 0 && height != 0:
		return model.ByWidthAndHeight(width, height)
	case width != 0:
		return model.ByWidth(width)
	case height != 0:
		return model.ByHeight(height)
	default:
		return model.NoResize()
	}
}

// overlay applies the explicitly given watermark flags on top of base.
func (o options) overlay(base model.WatermarkSpec) model.WatermarkSpec {
	wm := base
	set := func(name string, apply func()) {
		if o.changed[name] {
			apply()
		}
	}
	set("text", func() { wm.Text = o.watermark.Text })
	set("anchor", func() { wm.Anchor = o.watermark.Anchor })
	set("opacity", func() { wm.Opacity = o.watermark.Opacity })
	set("font", func() { wm.Font.Family = o.watermark.Font.Family })
	set("size", func() { wm.Font.SizePx = o.watermark.Font.SizePx })
	set("bold", func() { wm.Font.Bold = o.watermark.Font.Bold })
	set("italic", func() { wm.Font.Italic = o.watermark.Font.Italic })
	set("color", func() { wm.Color = o.watermark.Color })
	set("shadow", func() { wm.Shadow = o.watermark.Shadow })
	set("stroke", func() { wm.Stroke = o.watermark.Stroke })
	return wm
}
