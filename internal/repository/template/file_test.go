package template

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/aliskhannn/photowatermark/internal/model"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	s := NewFileStore(filepath.Join(t.TempDir(), "conf", "templates.json"))
	s.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return s
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	wm := model.DefaultWatermarkSpec()
	wm.Text = "© studio"
	wm.Anchor = model.TopLeft
	wm.Font.Bold = true

	saved, err := s.SaveTemplate(ctx, model.Template{Name: "studio", Watermark: wm})
	if err != nil {
		t.Fatalf("SaveTemplate: %v", err)
	}
	if !saved.UpdatedAt.Equal(s.now()) {
		t.Errorf("UpdatedAt = %v", saved.UpdatedAt)
	}

	// A fresh store reads what the first one wrote.
	reopened := NewFileStore(s.path)
	got, err := reopened.GetTemplate(ctx, "studio")
	if err != nil {
		t.Fatalf("GetTemplate: %v", err)
	}
	if diff := cmp.Diff(saved, got); diff != "" {
		t.Errorf("template mismatch (-want +got):\n%s", diff)
	}
}

func TestFileStoreListAndDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if list, err := s.ListTemplates(ctx); err != nil || len(list) != 0 {
		t.Fatalf("ListTemplates on empty store = %v, %v", list, err)
	}

	for _, name := range []string{"zeta", "alpha", "mid"} {
		if _, err := s.SaveTemplate(ctx, model.Template{Name: name, Watermark: model.DefaultWatermarkSpec()}); err != nil {
			t.Fatal(err)
		}
	}
	// Saving again replaces.
	wm := model.DefaultWatermarkSpec()
	wm.Opacity = 80
	if _, err := s.SaveTemplate(ctx, model.Template{Name: "mid", Watermark: wm}); err != nil {
		t.Fatal(err)
	}

	list, err := s.ListTemplates(ctx)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, tpl := range list {
		names = append(names, tpl.Name)
	}
	if diff := cmp.Diff([]string{"alpha", "mid", "zeta"}, names); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
	if list[1].Watermark.Opacity != 80 {
		t.Errorf("mid opacity = %d, want 80", list[1].Watermark.Opacity)
	}

	if err := s.DeleteTemplate(ctx, "alpha"); err != nil {
		t.Fatalf("DeleteTemplate: %v", err)
	}
	if err := s.DeleteTemplate(ctx, "alpha"); !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("second delete err = %v, want ErrTemplateNotFound", err)
	}
	if _, err := s.GetTemplate(ctx, "alpha"); !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("get deleted err = %v, want ErrTemplateNotFound", err)
	}
}

func TestFileStoreCorruptFile(t *testing.T) {
	s := newTestStore(t)
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(s.path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := s.ListTemplates(context.Background()); err == nil {
		t.Error("ListTemplates on corrupt file succeeded")
	}
}
