package library

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/photowatermark/internal/api/respond"
	"github.com/aliskhannn/photowatermark/internal/codec"
	imagelibrary "github.com/aliskhannn/photowatermark/internal/library"
	"github.com/aliskhannn/photowatermark/internal/model"
	"github.com/aliskhannn/photowatermark/internal/processor"
)

// manager defines the library operations used by the handler.
type manager interface {
	ImportMany(ctx context.Context, paths []string, progress processor.ProgressFunc) (int, int)
	ImportFolder(ctx context.Context, dir string, progress processor.ProgressFunc) (int, int, error)
	Entries() []imagelibrary.Entry
	Get(path string) (imagelibrary.Entry, bool)
	Remove(path string) bool
	Clear()
	Count() int
}

// Handler provides HTTP handlers for the image library.
type Handler struct {
	library manager
}

// NewHandler creates a new Handler backed by m.
func NewHandler(m manager) *Handler {
	return &Handler{library: m}
}

// ImportRequest lists files to import and an optional folder scanned recursively.
type ImportRequest struct {
	Paths  []string `json:"paths"`
	Folder string   `json:"folder,omitempty"`
}

// ImportResult reports the outcome of an import request.
type ImportResult struct {
	Imported int `json:"imported"`
	Failed   int `json:"failed"`
	Count    int `json:"count"`
}

// Import adds the requested files and folder to the library.
func (h *Handler) Import(c *ginext.Context) {
	var req ImportRequest
	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		respond.Fail(c, http.StatusBadRequest, fmt.Errorf("invalid request body: %v", err))
		return
	}
	if len(req.Paths) == 0 && req.Folder == "" {
		respond.Fail(c, http.StatusBadRequest, fmt.Errorf("paths or folder is required"))
		return
	}

	ctx := c.Request.Context()
	var res ImportResult
	if req.Folder != "" {
		ok, failed, err := h.library.ImportFolder(ctx, req.Folder, logProgress)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, codec.ErrNotFound) {
				status = http.StatusNotFound
			}
			zlog.Logger.Warn().Err(err).Str("folder", req.Folder).Msg("failed to import folder")
			respond.Fail(c, status, err)
			return
		}
		res.Imported, res.Failed = ok, failed
	}
	if len(req.Paths) > 0 {
		ok, failed := h.library.ImportMany(ctx, req.Paths, logProgress)
		res.Imported += ok
		res.Failed += failed
	}
	res.Count = h.library.Count()

	respond.OK(c, res)
}

// List returns the metadata of every imported image in import order.
func (h *Handler) List(c *ginext.Context) {
	entries := h.library.Entries()
	infos := make([]codec.Info, 0, len(entries))
	for _, e := range entries {
		infos = append(infos, e.Info)
	}

	respond.OK(c, infos)
}

// Thumbnail returns the PNG thumbnail of the image at the "path" query parameter.
func (h *Handler) Thumbnail(c *ginext.Context) {
	e, ok := h.entry(c)
	if !ok {
		return
	}

	data, err := codec.Encode(codec.FromImage(e.Thumbnail, e.Image.Mode(), e.Info.Path), model.PNG, 100)
	if err != nil {
		zlog.Logger.Err(err).Str("path", e.Info.Path).Msg("failed to encode thumbnail")
		respond.Fail(c, http.StatusInternalServerError, fmt.Errorf("failed to encode thumbnail"))
		return
	}

	respond.Image(c, "image/png", data)
}

// Remove drops the image at the "path" query parameter from the library.
func (h *Handler) Remove(c *ginext.Context) {
	path := c.Query("path")
	if path == "" {
		respond.Fail(c, http.StatusBadRequest, fmt.Errorf("path is required"))
		return
	}
	if !h.library.Remove(path) {
		respond.Fail(c, http.StatusNotFound, fmt.Errorf("%w: %s", codec.ErrNotFound, path))
		return
	}

	respond.OK(c, map[string]string{"removed": path})
}

// Clear empties the library.
func (h *Handler) Clear(c *ginext.Context) {
	h.library.Clear()
	respond.OK(c, map[string]int{"count": 0})
}

func (h *Handler) entry(c *ginext.Context) (imagelibrary.Entry, bool) {
	path := c.Query("path")
	if path == "" {
		respond.Fail(c, http.StatusBadRequest, fmt.Errorf("path is required"))
		return imagelibrary.Entry{}, false
	}
	e, ok := h.library.Get(path)
	if !ok {
		respond.Fail(c, http.StatusNotFound, fmt.Errorf("%w: %s", codec.ErrNotFound, path))
		return imagelibrary.Entry{}, false
	}
	return e, true
}

func logProgress(percent int, message string) {
	zlog.Logger.Debug().Int("percent", percent).Msg(message)
}
