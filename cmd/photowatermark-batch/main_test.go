package main

import (
	"context"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/google/go-cmp/cmp"

	"github.com/aliskhannn/photowatermark/internal/model"
	templaterepo "github.com/aliskhannn/photowatermark/internal/repository/template"
)

func TestParseOptions(t *testing.T) {
	opts, err := parseOptions([]string{
		"-o", "/out", "--format", "png", "--resize-width", "640",
		"--text", "SAMPLE", "--anchor", "top-left", "--bold", "--color", "#ff0000",
		"--font-dir", "/a", "--font-dir", "/b", "--no-system-fonts",
		"one.jpg", "photos",
	})
	if err != nil {
		t.Fatal(err)
	}

	wantExport := model.ExportSpec{
		Format:    model.PNG,
		Quality:   95,
		Resize:    model.ByWidth(640),
		Suffix:    model.DefaultSuffix,
		OutputDir: "/out",
	}
	if diff := cmp.Diff(wantExport, opts.export); diff != "" {
		t.Errorf("export mismatch (-want +got):\n%s", diff)
	}

	wantWM := model.WatermarkSpec{
		Text:    "SAMPLE",
		Anchor:  model.TopLeft,
		Opacity: 50,
		Font:    model.Font{Family: "Arial", SizePx: 36, Bold: true},
		Color:   model.Color{R: 255},
	}
	if diff := cmp.Diff(wantWM, opts.watermark); diff != "" {
		t.Errorf("watermark mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([]string{"one.jpg", "photos"}, opts.inputs); diff != "" {
		t.Errorf("inputs mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"/a", "/b"}, opts.fontDirs); diff != "" {
		t.Errorf("font dirs mismatch (-want +got):\n%s", diff)
	}
	if opts.systemFonts {
		t.Error("system fonts enabled despite --no-system-fonts")
	}
}

func TestParseOptionsErrors(t *testing.T) {
	tests := [][]string{
		{"-o", "/out"},
		{"a.jpg"},
		{"-o", "/out", "--format", "gif", "a.jpg"},
		{"-o", "/out", "--resize-percent", "-5", "a.jpg"},
		{"-o", "/out", "--anchor", "middle", "a.jpg"},
		{"-o", "/out", "--color", "red", "a.jpg"},
		{"-o", "/out", "--unknown", "a.jpg"},
	}
	for _, args := range tests {
		if _, err := parseOptions(args); err == nil {
			t.Errorf("parseOptions(%q) succeeded", args)
		}
	}
}

func TestResizePolicy(t *testing.T) {
	tests := []struct {
		percent       float64
		width, height int
		want          model.ResizePolicy
	}{
		{0, 0, 0, model.NoResize()},
		{50, 100, 100, model.ByPercent(50)},
		{0, 500, 300, model.ByWidthAndHeight(500, 300)},
		{0, 500, 0, model.ByWidth(500)},
		{0, 0, 300, model.ByHeight(300)},
	}
	for _, tt := range tests {
		if got := resizePolicy(tt.percent, tt.width, tt.height); got != tt.want {
			t.Errorf("resizePolicy(%v, %d, %d) = %+v, want %+v", tt.percent, tt.width, tt.height, got, tt.want)
		}
	}
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in")
	if err := os.MkdirAll(filepath.Join(in, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"a.jpg", filepath.Join("sub", "b.png")} {
		if err := imaging.Save(imaging.New(60, 40, color.NRGBA{R: 100, A: 255}), filepath.Join(in, name)); err != nil {
			t.Fatal(err)
		}
	}

	templates := filepath.Join(dir, "templates.json")
	base := model.DefaultWatermarkSpec()
	base.Text = "FROM TEMPLATE"
	base.Anchor = model.Center
	if _, err := templaterepo.NewFileStore(templates).SaveTemplate(context.Background(), model.Template{Name: "t", Watermark: base}); err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(dir, "out")
	opts, err := parseOptions([]string{
		"-o", out, "--template", "t", "--templates", templates, "--opacity", "90", "--no-system-fonts",
		in, filepath.Join(dir, "missing.jpg"),
	})
	if err != nil {
		t.Fatal(err)
	}

	wm := opts.overlay(base)
	if wm.Text != "FROM TEMPLATE" || wm.Anchor != model.Center || wm.Opacity != 90 {
		t.Errorf("overlay = %+v", wm)
	}

	res, err := run(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if res.Succeeded != 2 || res.Failed != 1 {
		t.Errorf("result = %+v", res)
	}
	if last := res.Items[len(res.Items)-1]; last.OK || last.Path != filepath.Join(dir, "missing.jpg") {
		t.Errorf("last item = %+v, want failed missing.jpg", last)
	}
	for _, name := range []string{"a_watermarked.jpg", "b_watermarked.jpg"} {
		if _, err := os.Stat(filepath.Join(out, name)); err != nil {
			t.Errorf("missing output %s: %v", name, err)
		}
	}

	opts.template = "missing"
	if _, err := run(context.Background(), opts); err == nil {
		t.Error("run with unknown template succeeded")
	}
}

func TestExpandInputs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.png", filepath.Join("sub", "a.jpg"), "notes.txt"} {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	got, err := expandInputs([]string{"/elsewhere/one.jpg", dir})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"/elsewhere/one.jpg", filepath.Join(dir, "b.png"), filepath.Join(dir, "sub", "a.jpg")}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("inputs mismatch (-want +got):\n%s", diff)
	}
}
