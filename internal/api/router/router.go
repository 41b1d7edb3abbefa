package router

import (
	"github.com/wb-go/wbf/ginext"

	"github.com/aliskhannn/photowatermark/internal/api/handlers/export"
	"github.com/aliskhannn/photowatermark/internal/api/handlers/library"
	"github.com/aliskhannn/photowatermark/internal/api/handlers/template"
)

// Setup registers the API routes on a new engine.
func Setup(eh *export.Handler, lh *library.Handler, th *template.Handler) *ginext.Engine {
	r := ginext.New()

	r.Use(ginext.Logger())
	r.Use(ginext.Recovery())

	api := r.Group("/api")

	api.POST("/export", eh.Export)           // export a single image
	api.POST("/export/batch", eh.ExportBatch) // export several images in order
	api.POST("/export/preview", eh.Preview)   // render without writing, returns PNG
	api.POST("/export/jobs", eh.Enqueue)      // enqueue an export job to Kafka
	api.GET("/images/meta", eh.Meta)          // image header metadata

	api.POST("/library/import", lh.Import)        // import files or a folder
	api.GET("/library", lh.List)                  // imported image metadata
	api.GET("/library/thumbnail", lh.Thumbnail)   // thumbnail PNG of an imported image
	api.DELETE("/library", lh.Remove)             // drop one image
	api.POST("/library/clear", lh.Clear)          // drop every image
	api.POST("/library/export", eh.ExportLibrary) // export every imported image

	api.GET("/templates", th.List)
	api.GET("/templates/:name", th.Get)
	api.PUT("/templates/:name", th.Put)
	api.DELETE("/templates/:name", th.Delete)

	return r
}
