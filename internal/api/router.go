// Package api serves the latest dashboard frame as read-only JSON.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Dicklesworthstone/popdash/internal/model"
)

// FrameSource yields the latest published frame. Implemented by *dashboard.Driver.
type FrameSource interface {
	Latest() model.Frame
}

// NewRouter registers the read-model routes.
func NewRouter(src FrameSource, logger *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.GET("/metrics", func(c *gin.Context) {
		c.JSON(http.StatusOK, src.Latest().Metrics)
	})
	api.GET("/status", func(c *gin.Context) {
		f := src.Latest()
		if !f.StatusKnown {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "optimization status not yet polled"})
			return
		}
		c.JSON(http.StatusOK, f.Status)
	})
	api.GET("/history", func(c *gin.Context) {
		c.JSON(http.StatusOK, src.Latest().History)
	})
	api.GET("/processes", func(c *gin.Context) {
		top := src.Latest().Top
		if top == nil {
			top = []model.Process{}
		}
		c.JSON(http.StatusOK, top)
	})
	return r
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}

// Serve runs the HTTP server until ctx is done, then shuts it down.
func Serve(ctx context.Context, addr string, h http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("api listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
