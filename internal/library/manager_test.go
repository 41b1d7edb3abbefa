package library

import (
	"context"
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/google/go-cmp/cmp"

	"github.com/aliskhannn/photowatermark/internal/codec"
)

func writeImage(t *testing.T, path string, w, h int) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := imaging.Save(imaging.New(w, h, color.NRGBA{R: 90, G: 90, B: 90, A: 255}), path); err != nil {
		t.Fatal(err)
	}
}

func TestImport(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wide.png")
	writeImage(t, path, 800, 200)

	m := NewManager()
	if err := m.Import(path); err != nil {
		t.Fatalf("Import: %v", err)
	}
	// Duplicate imports succeed without adding an entry.
	if err := m.Import(path); err != nil {
		t.Fatalf("second Import: %v", err)
	}
	if m.Count() != 1 {
		t.Fatalf("Count = %d, want 1", m.Count())
	}

	e, ok := m.Get(path)
	if !ok {
		t.Fatal("Get: entry missing")
	}
	if e.Info.Width != 800 || e.Info.Height != 200 || e.Info.Format != "PNG" {
		t.Errorf("info = %+v", e.Info)
	}
	if size := e.Thumbnail.Bounds().Size(); size.X != 200 || size.Y != 50 {
		t.Errorf("thumbnail = %v, want 200x50", size)
	}
	if e.Image.Width() != 800 {
		t.Errorf("image width = %d", e.Image.Width())
	}
}

func TestImportErrors(t *testing.T) {
	dir := t.TempDir()
	m := NewManager()

	if err := m.Import(filepath.Join(dir, "missing.jpg")); !errors.Is(err, codec.ErrNotFound) {
		t.Errorf("missing file err = %v, want ErrNotFound", err)
	}

	text := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(text, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := m.Import(text); !errors.Is(err, codec.ErrUnsupportedFormat) {
		t.Errorf("text file err = %v, want ErrUnsupportedFormat", err)
	}

	if m.Count() != 0 {
		t.Errorf("Count = %d after failed imports", m.Count())
	}
}

func TestImportFolder(t *testing.T) {
	dir := t.TempDir()
	writeImage(t, filepath.Join(dir, "a.jpg"), 40, 30)
	writeImage(t, filepath.Join(dir, "nested", "b.png"), 40, 30)
	writeImage(t, filepath.Join(dir, "nested", "deeper", "c.bmp"), 40, 30)
	if err := os.WriteFile(filepath.Join(dir, "readme.md"), []byte("#"), 0o644); err != nil {
		t.Fatal(err)
	}
	// Supported extension but not an image.
	if err := os.WriteFile(filepath.Join(dir, "nested", "broken.tif"), []byte("nope"), 0o644); err != nil {
		t.Fatal(err)
	}

	type update struct {
		Percent int
		Message string
	}
	var updates []update

	m := NewManager()
	ok, failed, err := m.ImportFolder(context.Background(), dir, func(p int, msg string) {
		updates = append(updates, update{p, msg})
	})
	if err != nil {
		t.Fatal(err)
	}
	if ok != 3 || failed != 1 {
		t.Errorf("ImportFolder = %d ok / %d failed, want 3/1", ok, failed)
	}

	want := []update{
		{25, "importing image 1/4"},
		{50, "importing image 2/4"},
		{75, "importing image 3/4"},
		{100, "import finished: 3 succeeded, 1 failed"},
	}
	if diff := cmp.Diff(want, updates); diff != "" {
		t.Errorf("progress mismatch (-want +got):\n%s", diff)
	}

	var names []string
	for _, e := range m.Entries() {
		names = append(names, e.Info.Name)
	}
	if diff := cmp.Diff([]string{"a.jpg", "b.png", "c.bmp"}, names); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestImportFolderMissing(t *testing.T) {
	_, _, err := NewManager().ImportFolder(context.Background(), filepath.Join(t.TempDir(), "nope"), nil)
	if !errors.Is(err, codec.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestImportManyCancelled(t *testing.T) {
	dir := t.TempDir()
	paths := []string{filepath.Join(dir, "a.png"), filepath.Join(dir, "b.png")}
	for _, p := range paths {
		writeImage(t, p, 10, 10)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := NewManager()
	ok, failed := m.ImportMany(ctx, paths, nil)
	if ok != 0 || failed != 2 || m.Count() != 0 {
		t.Errorf("ImportMany = %d/%d, count %d; want 0/2, 0", ok, failed, m.Count())
	}
}

func TestRemoveAndClear(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for _, name := range []string{"a.png", "b.png", "c.png"} {
		p := filepath.Join(dir, name)
		writeImage(t, p, 10, 10)
		paths = append(paths, p)
	}

	m := NewManager()
	m.ImportMany(context.Background(), paths, nil)

	if !m.Remove(paths[0]) {
		t.Fatal("Remove(a) = false")
	}
	if m.Remove(paths[0]) {
		t.Error("second Remove(a) = true")
	}
	if _, ok := m.Get(paths[0]); ok {
		t.Error("removed entry still returned")
	}
	if e, ok := m.Get(paths[2]); !ok || e.Info.Name != "c.png" {
		t.Errorf("Get(c) = %+v, %v after removal", e.Info, ok)
	}
	if got := len(m.Images()); got != 2 {
		t.Errorf("Images() has %d entries, want 2", got)
	}

	m.Clear()
	if m.Count() != 0 {
		t.Errorf("Count = %d after Clear", m.Count())
	}
	if _, ok := m.Get(paths[1]); ok {
		t.Error("entry survived Clear")
	}
}
