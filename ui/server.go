// Package ui serves the upload page and the JSON API over gin.
package ui

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"log"
	"net/http"
	"time"

	"airsense/adapters/excel"
	"airsense/internal/airquality"
	"airsense/internal/config"
	"airsense/internal/pipeline"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/semaphore"
)

//go:embed templates/*.html
var templateFS embed.FS

// Server bundles router and dependencies for the upload API
type Server struct {
	cfg       *config.Config
	engine    *gin.Engine
	templates *template.Template

	reader   *excel.DataReader
	pipeline *pipeline.Pipeline
	analyzer *airquality.Analyzer

	// bounds concurrent file processing; each upload holds one slot
	uploads *semaphore.Weighted
}

// NewServer constructs a server with routes and middleware
func NewServer(cfg *config.Config) (*Server, error) {
	analyzer, err := airquality.NewAnalyzer(cfg.AirQuality)
	if err != nil {
		return nil, err
	}
	templates, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	if cfg.Server.GinMode != "" {
		gin.SetMode(cfg.Server.GinMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(gin.Logger())
	engine.MaxMultipartMemory = cfg.Server.MaxUploadBytes()

	s := &Server{
		cfg:       cfg,
		engine:    engine,
		templates: templates,
		reader:    excel.NewDataReader(excel.DefaultReaderConfig()),
		pipeline:  pipeline.NewPipeline(cfg.Detection, cfg.Normalization),
		analyzer:  analyzer,
		uploads:   semaphore.NewWeighted(int64(cfg.Server.MaxConcurrentUploads)),
	}
	s.registerRoutes()
	return s, nil
}

// Engine exposes the underlying gin engine (for tests)
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Run starts the HTTP server and blocks until ctx is cancelled
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + s.cfg.Server.Port,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[Server] listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Printf("[Server] shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.engine.GET("/", s.handleIndex)

	api := s.engine.Group("/api/v1")
	api.Use(s.limitUploads())
	api.POST("/series", s.handleSeries)
	api.POST("/analysis", s.handleAnalysis)
	api.POST("/report", s.handleReport)
}

// limitUploads caps the body size and waits for a processing slot
func (s *Server) limitUploads() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.Server.MaxUploadBytes())

		if err := s.uploads.Acquire(c.Request.Context(), 1); err != nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": gin.H{
				"code": "BUSY", "message": "server is busy, retry later",
			}})
			return
		}
		defer s.uploads.Release(1)
		c.Next()
	}
}
