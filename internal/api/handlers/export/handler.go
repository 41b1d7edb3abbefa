package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/photowatermark/internal/api/respond"
	"github.com/aliskhannn/photowatermark/internal/codec"
	"github.com/aliskhannn/photowatermark/internal/model"
	"github.com/aliskhannn/photowatermark/internal/processor"
)

// ErrQueueDisabled is returned by Enqueue when no Kafka producer is configured.
var ErrQueueDisabled = errors.New("export queue is disabled")

// pipeline defines the export operations used by the handler.
type pipeline interface {
	Export(ctx context.Context, img codec.Image, spec model.ExportSpec, wm *model.WatermarkSpec) (string, error)
	Render(img codec.Image, spec model.ExportSpec, wm *model.WatermarkSpec) (processor.Rendered, error)
	ExportBatch(ctx context.Context, images []codec.Image, spec model.ExportSpec, wm *model.WatermarkSpec, progress processor.ProgressFunc) processor.BatchResult
	ExportFiles(ctx context.Context, paths []string, spec model.ExportSpec, wm *model.WatermarkSpec, progress processor.ProgressFunc) processor.BatchResult
}

// imageSet holds already imported images.
type imageSet interface {
	Images() []codec.Image
}

// templateGetter looks up saved watermark templates.
type templateGetter interface {
	GetTemplate(ctx context.Context, name string) (model.Template, error)
}

// producer enqueues export jobs.
type producer interface {
	Produce(ctx context.Context, job model.ExportJob) error
}

// Handler provides HTTP handlers for export endpoints.
type Handler struct {
	pipeline  pipeline
	templates templateGetter
	producer  producer
	library   imageSet
	defaults  model.ExportSpec
	load      func(path string) (codec.Image, error)
}

// NewHandler creates a new Handler. p may be nil, in which case job
// submission answers 503.
func NewHandler(pl pipeline, t templateGetter, p producer, lib imageSet, defaults model.ExportSpec) *Handler {
	return &Handler{
		pipeline:  pl,
		templates: t,
		producer:  p,
		library:   lib,
		defaults:  defaults,
		load:      codec.Load,
	}
}

// Request describes one export. Export fields left out of the body keep the
// configured defaults; watermark fields left out keep the watermark defaults.
// Template names a saved watermark used when Watermark is absent.
type Request struct {
	Source    string           `json:"source"`
	Export    model.ExportSpec `json:"export"`
	Watermark json.RawMessage  `json:"watermark,omitempty"`
	Template  string           `json:"template,omitempty"`
}

// BatchRequest describes a batch export sharing one export and watermark setting.
// Library exports ignore Sources.
type BatchRequest struct {
	Sources   []string         `json:"sources"`
	Export    model.ExportSpec `json:"export"`
	Watermark json.RawMessage  `json:"watermark,omitempty"`
	Template  string           `json:"template,omitempty"`
}

// Export loads the source image and exports it synchronously.
func (h *Handler) Export(c *ginext.Context) {
	req := Request{Export: h.defaults}
	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		respond.Fail(c, http.StatusBadRequest, fmt.Errorf("invalid request body: %v", err))
		return
	}
	if req.Source == "" {
		respond.Fail(c, http.StatusBadRequest, fmt.Errorf("source is required"))
		return
	}

	wm, err := h.watermark(c.Request.Context(), req.Watermark, req.Template)
	if err != nil {
		fail(c, err, "failed to resolve watermark")
		return
	}

	img, err := h.load(req.Source)
	if err != nil {
		fail(c, err, "failed to load source image")
		return
	}

	out, err := h.pipeline.Export(c.Request.Context(), img, req.Export, wm)
	if err != nil {
		fail(c, err, "failed to export image")
		return
	}

	respond.OK(c, map[string]string{"path": out})
}

// ExportBatch exports every source in order, loading one source at a time.
// Sources that fail to load are reported as failed items; the batch never aborts.
func (h *Handler) ExportBatch(c *ginext.Context) {
	req := BatchRequest{Export: h.defaults}
	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		respond.Fail(c, http.StatusBadRequest, fmt.Errorf("invalid request body: %v", err))
		return
	}

	wm, err := h.watermark(c.Request.Context(), req.Watermark, req.Template)
	if err != nil {
		fail(c, err, "failed to resolve watermark")
		return
	}

	res := h.pipeline.ExportFiles(c.Request.Context(), req.Sources, req.Export, wm, logProgress)

	respond.OK(c, res)
}

// ExportLibrary exports every imported image in import order.
func (h *Handler) ExportLibrary(c *ginext.Context) {
	req := BatchRequest{Export: h.defaults}
	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		respond.Fail(c, http.StatusBadRequest, fmt.Errorf("invalid request body: %v", err))
		return
	}

	wm, err := h.watermark(c.Request.Context(), req.Watermark, req.Template)
	if err != nil {
		fail(c, err, "failed to resolve watermark")
		return
	}

	res := h.pipeline.ExportBatch(c.Request.Context(), h.library.Images(), req.Export, wm, logProgress)

	respond.OK(c, res)
}

func logProgress(percent int, message string) {
	zlog.Logger.Debug().Int("percent", percent).Msg(message)
}

// Preview renders the export without writing it and returns a PNG.
func (h *Handler) Preview(c *ginext.Context) {
	req := Request{Export: h.defaults}
	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		respond.Fail(c, http.StatusBadRequest, fmt.Errorf("invalid request body: %v", err))
		return
	}

	wm, err := h.watermark(c.Request.Context(), req.Watermark, req.Template)
	if err != nil {
		fail(c, err, "failed to resolve watermark")
		return
	}

	img, err := h.load(req.Source)
	if err != nil {
		fail(c, err, "failed to load source image")
		return
	}

	rendered, err := h.pipeline.Render(img, req.Export, wm)
	if err != nil {
		fail(c, err, "failed to render preview")
		return
	}

	data, err := codec.Encode(rendered.Image, model.PNG, 100)
	if err != nil {
		fail(c, err, "failed to encode preview")
		return
	}

	respond.Image(c, "image/png", data)
}

// Enqueue publishes an export job to Kafka and returns its ID.
func (h *Handler) Enqueue(c *ginext.Context) {
	if h.producer == nil {
		respond.Fail(c, http.StatusServiceUnavailable, ErrQueueDisabled)
		return
	}

	req := Request{Export: h.defaults}
	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		respond.Fail(c, http.StatusBadRequest, fmt.Errorf("invalid request body: %v", err))
		return
	}
	if !codec.IsSupported(req.Source) {
		respond.Fail(c, http.StatusBadRequest, fmt.Errorf("%w: %q", codec.ErrUnsupportedFormat, req.Source))
		return
	}

	wm, err := h.watermark(c.Request.Context(), req.Watermark, req.Template)
	if err != nil {
		fail(c, err, "failed to resolve watermark")
		return
	}

	job := model.ExportJob{
		ID:        uuid.New(),
		Source:    req.Source,
		Watermark: wm,
		Export:    req.Export,
		CreatedAt: time.Now().UTC(),
	}

	if err := h.producer.Produce(c.Request.Context(), job); err != nil {
		fail(c, err, "failed to enqueue export job")
		return
	}

	zlog.Logger.Info().Str("job", job.ID.String()).Str("source", job.Source).Msg("export job enqueued")

	respond.Accepted(c, map[string]string{"id": job.ID.String()})
}

// Meta returns header metadata of the image at the "path" query parameter.
func (h *Handler) Meta(c *ginext.Context) {
	path := c.Query("path")
	if path == "" {
		respond.Fail(c, http.StatusBadRequest, fmt.Errorf("path is required"))
		return
	}

	info, err := codec.Metadata(path)
	if err != nil {
		fail(c, err, "failed to read image metadata")
		return
	}

	respond.OK(c, info)
}

// watermark resolves the watermark of a request: explicit fields over the
// defaults, else the named template, else none.
func (h *Handler) watermark(ctx context.Context, raw json.RawMessage, template string) (*model.WatermarkSpec, error) {
	if len(raw) > 0 && string(raw) != "null" {
		wm := model.DefaultWatermarkSpec()
		if err := json.Unmarshal(raw, &wm); err != nil {
			return nil, fmt.Errorf("%w: %v", errInvalidRequest, err)
		}
		return &wm, nil
	}

	if template == "" {
		return nil, nil
	}

	t, err := h.templates.GetTemplate(ctx, template)
	if err != nil {
		return nil, err
	}

	return &t.Watermark, nil
}
