// Package fakeservice is an in-memory stand-in for the NLP playground
// backend. It speaks the same HTTP API with deterministic heuristics in
// place of the real models, for local runs and end-to-end tests.
package fakeservice

import (
	"context"
	"io"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxUploadBytes = 32 << 20

// Config holds server configuration
type Config struct {
	ChunkSize    int                // characters per document chunk, zero = 800
	ChunkOverlap int                // characters shared by neighbouring chunks
	Logger       *zap.SugaredLogger // nil = nop logger
}

// Server keeps uploaded datasets and indexed documents in memory
type Server struct {
	cfg    Config
	logger *zap.SugaredLogger

	mu       sync.RWMutex
	datasets map[string]*dataset
	docs     map[string][]chunk
}

// New creates an empty server.
func New(cfg Config) *Server {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 800
	}
	if cfg.ChunkOverlap < 0 || cfg.ChunkOverlap >= cfg.ChunkSize {
		cfg.ChunkOverlap = 0
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Server{
		cfg:      cfg,
		logger:   logger,
		datasets: make(map[string]*dataset),
		docs:     make(map[string][]chunk),
	}
}

// Handler returns the routed gin engine.
func (s *Server) Handler() http.Handler {
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLog())
	router.MaxMultipartMemory = maxUploadBytes

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "nlp-playground fake service"})
	})
	router.POST("/upload", s.uploadDataset)
	router.POST("/preprocess", s.preprocess)
	router.POST("/train", s.train)
	router.POST("/copilot/consult", s.consult)
	router.POST("/rag/upload", s.uploadDocument)
	router.POST("/rag/query", s.queryDocument)
	return router
}

// Run serves on addr until ctx is canceled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Infow("fake service listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrapf(err, "listen on %s", addr)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "shutdown")
		}
		return nil
	}
}

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debugw("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"elapsed", time.Since(start),
		)
	}
}

// fail writes the {"detail": ...} error body the client understands.
func fail(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": detail})
}

// readUpload returns the name and contents of multipart field "file".
func readUpload(c *gin.Context) (string, []byte, bool) {
	header, err := c.FormFile("file")
	if err != nil {
		fail(c, http.StatusBadRequest, "missing file field")
		return "", nil, false
	}
	f, err := header.Open()
	if err != nil {
		fail(c, http.StatusBadRequest, "cannot open uploaded file")
		return "", nil, false
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes))
	if err != nil {
		fail(c, http.StatusBadRequest, "cannot read uploaded file")
		return "", nil, false
	}
	return filepath.Base(header.Filename), data, true
}
