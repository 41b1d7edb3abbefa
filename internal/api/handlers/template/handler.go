package template

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/photowatermark/internal/api/respond"
	"github.com/aliskhannn/photowatermark/internal/model"
	templaterepo "github.com/aliskhannn/photowatermark/internal/repository/template"
)

// store defines the template persistence operations.
// Both the Postgres repository and the JSON file store satisfy it.
type store interface {
	SaveTemplate(ctx context.Context, t model.Template) (model.Template, error)
	GetTemplate(ctx context.Context, name string) (model.Template, error)
	ListTemplates(ctx context.Context) ([]model.Template, error)
	DeleteTemplate(ctx context.Context, name string) error
}

// Handler provides HTTP handlers for watermark templates.
type Handler struct {
	store store
}

// NewHandler creates a new Handler with the given store.
func NewHandler(s store) *Handler {
	return &Handler{store: s}
}

// List returns all templates.
func (h *Handler) List(c *ginext.Context) {
	templates, err := h.store.ListTemplates(c.Request.Context())
	if err != nil {
		zlog.Logger.Err(err).Msg("failed to list templates")
		respond.Fail(c, http.StatusInternalServerError, fmt.Errorf("failed to list templates"))
		return
	}
	if templates == nil {
		templates = []model.Template{}
	}

	respond.OK(c, templates)
}

// Get returns the template named by the path.
func (h *Handler) Get(c *ginext.Context) {
	t, err := h.store.GetTemplate(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.fail(c, err, "failed to get template")
		return
	}

	respond.OK(c, t)
}

// Put creates or replaces a template. The body is a watermark; fields left
// out keep the watermark defaults.
func (h *Handler) Put(c *ginext.Context) {
	name := strings.TrimSpace(c.Param("name"))
	if name == "" {
		respond.Fail(c, http.StatusBadRequest, fmt.Errorf("template name is required"))
		return
	}

	wm := model.DefaultWatermarkSpec()
	if err := json.NewDecoder(c.Request.Body).Decode(&wm); err != nil {
		respond.Fail(c, http.StatusBadRequest, fmt.Errorf("invalid watermark: %v", err))
		return
	}

	t, err := h.store.SaveTemplate(c.Request.Context(), model.Template{Name: name, Watermark: wm.Normalized()})
	if err != nil {
		h.fail(c, err, "failed to save template")
		return
	}

	zlog.Logger.Info().Str("template", name).Msg("template saved")

	respond.OK(c, t)
}

// Delete removes the template named by the path.
func (h *Handler) Delete(c *ginext.Context) {
	name := c.Param("name")
	if err := h.store.DeleteTemplate(c.Request.Context(), name); err != nil {
		h.fail(c, err, "failed to delete template")
		return
	}

	zlog.Logger.Info().Str("template", name).Msg("template deleted")

	respond.OK(c, map[string]string{"deleted": name})
}

func (h *Handler) fail(c *ginext.Context, err error, msg string) {
	if errors.Is(err, templaterepo.ErrTemplateNotFound) {
		zlog.Logger.Warn().Str("template", c.Param("name")).Msg("template not found")
		respond.Fail(c, http.StatusNotFound, err)
		return
	}

	zlog.Logger.Err(err).Msg(msg)
	respond.Fail(c, http.StatusInternalServerError, fmt.Errorf("%s", msg))
}
