package export

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/photowatermark/internal/codec"
	"github.com/aliskhannn/photowatermark/internal/model"
)

// exporter defines the interface for running a single export.
type exporter interface {
	Export(ctx context.Context, img codec.Image, spec model.ExportSpec, wm *model.WatermarkSpec) (string, error)
}

// JobHandler handles Kafka messages carrying export jobs.
type JobHandler struct {
	exporter exporter
	load     func(path string) (codec.Image, error)
}

// NewJobHandler creates a new handler exporting through e.
func NewJobHandler(e exporter) *JobHandler {
	return &JobHandler{exporter: e, load: codec.Load}
}

// Handle decodes an export job, loads its source image and exports it.
func (h *JobHandler) Handle(ctx context.Context, msg kafka.Message) error {
	var job model.ExportJob
	if err := json.Unmarshal(msg.Value, &job); err != nil {
		return fmt.Errorf("unmarshal export job: %w", err)
	}

	img, err := h.load(job.Source)
	if err != nil {
		return fmt.Errorf("load source of job %s: %w", job.ID, err)
	}

	out, err := h.exporter.Export(ctx, img, job.Export, job.Watermark)
	if err != nil {
		return fmt.Errorf("export job %s: %w", job.ID, err)
	}

	zlog.Logger.Info().
		Str("job", job.ID.String()).
		Str("output", out).
		Msg("export job processed")

	return nil
}
