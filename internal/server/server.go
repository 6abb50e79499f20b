// Package server exposes the dispatch store over HTTP. It is thin
// plumbing: routing, JSON binding, photo upload handling and error
// mapping — every invariant lives in the store.
package server

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ybenali/roadcall/internal/notify"
	"github.com/ybenali/roadcall/internal/store"
)

// StartOpts holds configuration for the API server.
type StartOpts struct {
	Store      store.Store
	Port       int
	UploadsDir string
	// Notifier posts assignment notifications. Nil disables them.
	Notifier notify.Notifier
	Out      io.Writer
}

// Start launches the API server. It blocks until ctx is cancelled, then
// shuts down gracefully.
func Start(ctx context.Context, opts StartOpts) error {
	if opts.Store == nil {
		return fmt.Errorf("server: store is required")
	}
	if opts.Port <= 0 {
		opts.Port = 8080
	}
	if opts.UploadsDir == "" {
		opts.UploadsDir = "uploads"
	}

	gin.SetMode(gin.ReleaseMode)
	router := NewRouter(opts.Store, opts.UploadsDir, opts.Notifier)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", opts.Port),
		Handler: router,
	}

	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	if opts.Out != nil {
		fmt.Fprintf(opts.Out, "roadcall API listening on http://localhost:%d\n", opts.Port)
	}

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

// NewRouter builds the gin router with all API routes registered.
// Exported separately so tests can drive it with httptest.
func NewRouter(s store.Store, uploadsDir string, notifier notify.Notifier) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	registerRoutes(router, &handlers{store: s, uploadsDir: uploadsDir, notifier: notifier})
	return router
}
