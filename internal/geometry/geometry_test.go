package geometry

import (
	"errors"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/aliskhannn/photowatermark/internal/codec"
	"github.com/aliskhannn/photowatermark/internal/model"
)

func TestTargetSize(t *testing.T) {
	tests := []struct {
		name         string
		w, h         int
		policy       model.ResizePolicy
		wantW, wantH int
	}{
		{"none", 1000, 800, model.NoResize(), 1000, 800},
		{"zero value is none", 1000, 800, model.ResizePolicy{}, 1000, 800},
		{"percent 50", 1000, 800, model.ByPercent(50), 500, 400},
		{"percent 100", 123, 457, model.ByPercent(100), 123, 457},
		{"percent truncates", 999, 333, model.ByPercent(7), 69, 23},
		{"width keeps aspect", 1000, 800, model.ByWidth(500), 500, 400},
		{"width truncates", 1000, 333, model.ByWidth(500), 500, 166},
		{"height keeps aspect", 1000, 800, model.ByHeight(200), 250, 200},
		{"width and height verbatim", 1000, 800, model.ByWidthAndHeight(500, 300), 500, 300},
		{"upscale", 100, 50, model.ByPercent(250), 250, 125},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotW, gotH := TargetSize(tt.w, tt.h, tt.policy)
			if gotW != tt.wantW || gotH != tt.wantH {
				t.Errorf("TargetSize(%d, %d, %+v) = (%d, %d), want (%d, %d)",
					tt.w, tt.h, tt.policy, gotW, gotH, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestTargetSizePercent100IsIdentity(t *testing.T) {
	for w := 1; w <= 64; w += 7 {
		for h := 1; h <= 64; h += 5 {
			if gw, gh := TargetSize(w, h, model.ByPercent(100)); gw != w || gh != h {
				t.Fatalf("TargetSize(%d, %d, 100%%) = (%d, %d)", w, h, gw, gh)
			}
		}
	}
}

func TestResize(t *testing.T) {
	src := codec.FromImage(imaging.New(100, 80, color.NRGBA{R: 5, G: 6, B: 7, A: 255}), codec.ModeRGB, "a.jpg")

	out, err := Resize(src, model.ByWidthAndHeight(50, 30))
	if err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if out.Width() != 50 || out.Height() != 30 {
		t.Errorf("Resize size = %dx%d, want 50x30", out.Width(), out.Height())
	}
	if out.Mode() != src.Mode() || out.Path() != src.Path() {
		t.Errorf("Resize lost mode or path: %s %q", out.Mode(), out.Path())
	}
	if src.Width() != 100 {
		t.Error("Resize mutated its input")
	}

	same, err := Resize(src, model.NoResize())
	if err != nil {
		t.Fatal(err)
	}
	if same.Pixels() != src.Pixels() {
		t.Error("identity resize allocated a new buffer")
	}
}

func TestResizeErrors(t *testing.T) {
	src := codec.FromImage(imaging.New(10, 10, color.White), codec.ModeRGB, "a.jpg")

	if _, err := Resize(src, model.ByPercent(1)); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("Resize to 0x0 error = %v, want ErrInvalidSize", err)
	}
	if _, err := Resize(src, model.ByWidth(-3)); !errors.Is(err, model.ErrInvalidResize) {
		t.Errorf("Resize(width=-3) error = %v, want ErrInvalidResize", err)
	}
}
