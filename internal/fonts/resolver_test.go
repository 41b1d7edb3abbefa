package fonts

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

func writeFont(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestStyleKey(t *testing.T) {
	tests := []struct {
		bold, italic bool
		want         Style
	}{
		{false, false, Normal},
		{true, false, Bold},
		{false, true, Italic},
		{true, true, BoldItalic},
	}
	for _, tt := range tests {
		if got := StyleKey(tt.bold, tt.italic); got != tt.want {
			t.Errorf("StyleKey(%v, %v) = %s, want %s", tt.bold, tt.italic, got, tt.want)
		}
	}
}

func TestResolveFallsBackToBuiltin(t *testing.T) {
	r := NewResolver([]string{t.TempDir()})

	for _, family := range []string{"Arial", "No Such Family", ""} {
		face := r.Resolve(family, true, true, 24)
		if !face.Fallback {
			t.Errorf("Resolve(%q).Fallback = false, want true", family)
		}
		if face.Face != basicfont.Face7x13 {
			t.Errorf("Resolve(%q) did not return the built-in face", family)
		}
		if face.SimulateItalic {
			t.Errorf("Resolve(%q) asked for simulated italic", family)
		}
	}
}

func TestResolveStyleThenNormal(t *testing.T) {
	dir := t.TempDir()
	regular := writeFont(t, dir, "arial.ttf", goregular.TTF)
	bold := writeFont(t, dir, "arialbd.ttf", gobold.TTF)

	r := NewResolver([]string{dir})

	tests := []struct {
		name         string
		bold, italic bool
		wantPath     string
		wantStyle    Style
	}{
		{"normal", false, false, regular, Normal},
		{"bold", true, false, bold, Bold},
		{"italic falls back to normal file", false, true, regular, Italic},
		{"bold italic falls back to normal file", true, true, regular, BoldItalic},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			face := r.Resolve("Arial", tt.bold, tt.italic, 30)
			if face.Fallback {
				t.Fatal("unexpected fallback")
			}
			if face.Path != tt.wantPath {
				t.Errorf("Path = %q, want %q", face.Path, tt.wantPath)
			}
			if face.Style != tt.wantStyle {
				t.Errorf("Style = %s, want %s", face.Style, tt.wantStyle)
			}
			if face.SimulateItalic {
				t.Error("Arial must not simulate italic")
			}
		})
	}
}

func TestResolveDirectoryOrder(t *testing.T) {
	broken, first, second := t.TempDir(), t.TempDir(), t.TempDir()
	writeFont(t, broken, "times.ttf", []byte("not a font"))
	want := writeFont(t, first, "times.ttf", goregular.TTF)
	writeFont(t, second, "times.ttf", goregular.TTF)

	face := NewResolver([]string{broken, first, second}).Resolve("times new roman", false, false, 12)
	if face.Path != want {
		t.Errorf("Path = %q, want %q", face.Path, want)
	}
	if face.Family != "Times New Roman" {
		t.Errorf("Family = %q, want canonical name", face.Family)
	}
}

func TestResolveSimulatedItalic(t *testing.T) {
	dir := t.TempDir()
	path := writeFont(t, dir, "simhei.ttf", goregular.TTF)
	r := NewResolver([]string{dir})

	face := r.Resolve("SimHei", false, true, 40)
	if !face.SimulateItalic || face.Fallback {
		t.Fatalf("Resolve(SimHei, italic) = simulate %v fallback %v", face.SimulateItalic, face.Fallback)
	}
	if face.Style != Normal || face.Path != path {
		t.Errorf("Resolve(SimHei, italic) style %s path %q, want normal %q", face.Style, face.Path, path)
	}

	boldItalic := r.Resolve("SimHei", true, true, 40)
	if !boldItalic.SimulateItalic || boldItalic.Style != Bold {
		t.Errorf("Resolve(SimHei, bold italic) = style %s simulate %v", boldItalic.Style, boldItalic.SimulateItalic)
	}

	if r.Resolve("SimHei", false, false, 40).SimulateItalic {
		t.Error("upright SimHei must not simulate italic")
	}
}

func TestResolveCachesLookups(t *testing.T) {
	dir := t.TempDir()
	path := writeFont(t, dir, "arial.ttf", goregular.TTF)
	r := NewResolver([]string{dir})

	if got := r.Resolve("Arial", false, false, 20).Path; got != path {
		t.Fatalf("Path = %q, want %q", got, path)
	}
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	face := r.Resolve("Arial", false, false, 64)
	if face.Fallback || face.Path != path {
		t.Errorf("cached lookup lost: fallback %v path %q", face.Fallback, face.Path)
	}
}

func TestResolveSizes(t *testing.T) {
	dir := t.TempDir()
	writeFont(t, dir, "arial.ttf", goregular.TTF)
	r := NewResolver([]string{dir})

	small := r.Resolve("Arial", false, false, 10).Metrics().Height
	large := r.Resolve("Arial", false, false, 80).Metrics().Height
	if large <= small {
		t.Errorf("80px height %v not larger than 10px height %v", large, small)
	}
	if def := r.Resolve("Arial", false, false, 0).Metrics().Height; def <= small {
		t.Errorf("non-positive size did not use the default size: height %v", def)
	}
}
