package processor

import (
	"context"
	"fmt"

	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/photowatermark/internal/codec"
	"github.com/aliskhannn/photowatermark/internal/model"
)

// ProgressFunc receives batch progress. It is called synchronously from the
// batch loop, once per item; the last call carries 100 and a summary.
type ProgressFunc func(percent int, message string)

// ItemResult is the outcome of one batch item.
type ItemResult struct {
	Path    string `json:"path"`
	OK      bool   `json:"ok"`
	Output  string `json:"output,omitempty"`
	Message string `json:"message"`
}

// BatchResult aggregates a batch export.
type BatchResult struct {
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
	Items     []ItemResult `json:"items"`
}

// Percent returns the progress value reported after finishing item i
// (zero based) of total.
func Percent(i, total int) int {
	if total <= 0 {
		return 100
	}
	return (i + 1) * 100 / total
}

// ExportBatch exports each image in order. Per-item failures are recorded and
// never stop the loop. If ctx is cancelled between items the remaining items
// are recorded as failed with the context error.
func (p *Processor) ExportBatch(ctx context.Context, images []codec.Image, spec model.ExportSpec, wm *model.WatermarkSpec, progress ProgressFunc) BatchResult {
	items := make([]batchItem, len(images))
	for i, img := range images {
		img := img // per-iteration copy for Go < 1.22 loop semantics
		items[i] = batchItem{path: img.Path(), load: func() (codec.Image, error) { return img, nil }}
	}
	return p.exportItems(ctx, items, spec, wm, progress)
}

// ExportFiles exports the images at paths in order, decoding each one only when
// its turn comes so at most one source is held in memory. A source that fails
// to load is recorded as a failed item.
func (p *Processor) ExportFiles(ctx context.Context, paths []string, spec model.ExportSpec, wm *model.WatermarkSpec, progress ProgressFunc) BatchResult {
	items := make([]batchItem, len(paths))
	for i, path := range paths {
		path := path // per-iteration copy for Go < 1.22 loop semantics
		items[i] = batchItem{path: path, load: func() (codec.Image, error) { return p.load(path) }}
	}
	return p.exportItems(ctx, items, spec, wm, progress)
}

type batchItem struct {
	path string
	load func() (codec.Image, error)
}

func (p *Processor) exportItems(ctx context.Context, items []batchItem, spec model.ExportSpec, wm *model.WatermarkSpec, progress ProgressFunc) BatchResult {
	total := len(items)
	res := BatchResult{Items: make([]ItemResult, 0, total)}

	for i, it := range items {
		item := ItemResult{Path: it.path}

		if out, err := p.exportItem(ctx, it, spec, wm); err != nil {
			item.Message = err.Error()
			if ctx.Err() == nil {
				zlog.Logger.Warn().Err(err).Str("source", it.path).Msg("export failed")
			}
		} else {
			item.OK = true
			item.Output = out
			item.Message = "exported to " + out
		}

		if item.OK {
			res.Succeeded++
		} else {
			res.Failed++
		}
		res.Items = append(res.Items, item)

		if i < total-1 {
			notify(progress, Percent(i, total), fmt.Sprintf("exporting image %d/%d", i+1, total))
		}
	}

	notify(progress, 100, res.Summary())

	return res
}

func (p *Processor) exportItem(ctx context.Context, it batchItem, spec model.ExportSpec, wm *model.WatermarkSpec) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	img, err := it.load()
	if err != nil {
		return "", err
	}
	return p.Export(ctx, img, spec, wm)
}

// Summary renders the final progress message of a batch.
func (r BatchResult) Summary() string {
	return fmt.Sprintf("export finished: %d succeeded, %d failed", r.Succeeded, r.Failed)
}

func notify(progress ProgressFunc, percent int, message string) {
	if progress != nil {
		progress(percent, message)
	}
}
