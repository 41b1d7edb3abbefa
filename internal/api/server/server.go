package server

import (
	"net/http"
	"time"

	"github.com/wb-go/wbf/ginext"
)

// New creates the HTTP server. Write timeout is generous because
// synchronous batch exports run inside the request.
func New(addr string, router *ginext.Engine) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
