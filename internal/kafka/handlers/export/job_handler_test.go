package export

import (
	"context"
	"encoding/json"
	"errors"
	"image/color"
	"path/filepath"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/aliskhannn/photowatermark/internal/codec"
	"github.com/aliskhannn/photowatermark/internal/model"
)

type fakeExporter struct {
	src  codec.Image
	spec model.ExportSpec
	wm   *model.WatermarkSpec
	err  error
}

func (f *fakeExporter) Export(_ context.Context, img codec.Image, spec model.ExportSpec, wm *model.WatermarkSpec) (string, error) {
	f.src, f.spec, f.wm = img, spec, wm
	if f.err != nil {
		return "", f.err
	}
	return filepath.Join(spec.OutputDir, "out.jpg"), nil
}

func jobMessage(t *testing.T, job model.ExportJob) kafka.Message {
	t.Helper()
	data, err := json.Marshal(job)
	if err != nil {
		t.Fatal(err)
	}
	return kafka.Message{Key: []byte(job.ID.String()), Value: data}
}

func TestHandle(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "photo.png")
	if err := imaging.Save(imaging.New(30, 20, color.NRGBA{B: 200, A: 255}), src); err != nil {
		t.Fatal(err)
	}

	wm := model.DefaultWatermarkSpec()
	wm.Text = "SAMPLE"
	job := model.ExportJob{
		ID:        uuid.New(),
		Source:    src,
		Watermark: &wm,
		Export:    model.DefaultExportSpec(filepath.Join(dir, "out")),
		CreatedAt: time.Now(),
	}

	exp := &fakeExporter{}
	if err := NewJobHandler(exp).Handle(context.Background(), jobMessage(t, job)); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	if exp.src.Path() != src || exp.src.Width() != 30 {
		t.Errorf("exported image = %s %dx%d", exp.src.Path(), exp.src.Width(), exp.src.Height())
	}
	if exp.wm == nil || exp.wm.Text != "SAMPLE" {
		t.Errorf("watermark = %+v", exp.wm)
	}
	if exp.spec.OutputDir != job.Export.OutputDir || exp.spec.Format != model.JPEG {
		t.Errorf("export spec = %+v", exp.spec)
	}
}

func TestHandleErrors(t *testing.T) {
	dir := t.TempDir()

	t.Run("bad payload", func(t *testing.T) {
		err := NewJobHandler(&fakeExporter{}).Handle(context.Background(), kafka.Message{Value: []byte("{")})
		if err == nil {
			t.Error("Handle accepted invalid JSON")
		}
	})

	t.Run("missing source", func(t *testing.T) {
		job := model.ExportJob{ID: uuid.New(), Source: filepath.Join(dir, "gone.jpg"), Export: model.DefaultExportSpec(dir)}
		err := NewJobHandler(&fakeExporter{}).Handle(context.Background(), jobMessage(t, job))
		if !errors.Is(err, codec.ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("export failure", func(t *testing.T) {
		h := NewJobHandler(&fakeExporter{err: codec.ErrEncodeFailure})
		h.load = func(path string) (codec.Image, error) {
			return codec.FromImage(imaging.New(4, 4, color.NRGBA{A: 255}), codec.ModeRGB, path), nil
		}
		job := model.ExportJob{ID: uuid.New(), Source: "/in/a.jpg", Export: model.DefaultExportSpec(dir)}
		if err := h.Handle(context.Background(), jobMessage(t, job)); !errors.Is(err, codec.ErrEncodeFailure) {
			t.Errorf("err = %v, want ErrEncodeFailure", err)
		}
	})
}
