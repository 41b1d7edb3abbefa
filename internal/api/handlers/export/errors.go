package export

import (
	"errors"
	"net/http"

	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/photowatermark/internal/api/respond"
	"github.com/aliskhannn/photowatermark/internal/codec"
	"github.com/aliskhannn/photowatermark/internal/geometry"
	"github.com/aliskhannn/photowatermark/internal/model"
	"github.com/aliskhannn/photowatermark/internal/processor"
	"github.com/aliskhannn/photowatermark/internal/repository/template"
)

var errInvalidRequest = errors.New("invalid request")

// StatusOf maps pipeline errors to HTTP status codes.
func StatusOf(err error) int {
	switch {
	case errors.Is(err, codec.ErrNotFound),
		errors.Is(err, template.ErrTemplateNotFound):
		return http.StatusNotFound
	case errors.Is(err, processor.ErrIdenticalPath):
		return http.StatusConflict
	case errors.Is(err, codec.ErrUnsupportedFormat),
		errors.Is(err, codec.ErrDecodeFailure),
		errors.Is(err, geometry.ErrInvalidSize),
		errors.Is(err, model.ErrInvalidResize),
		errors.Is(err, errInvalidRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// fail logs err and responds with the mapped status.
func fail(c *ginext.Context, err error, msg string) {
	status := StatusOf(err)
	if status == http.StatusInternalServerError {
		zlog.Logger.Err(err).Msg(msg)
	} else {
		zlog.Logger.Warn().Err(err).Msg(msg)
	}
	respond.Fail(c, status, err)
}
