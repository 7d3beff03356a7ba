package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"legal-lens/internal/config"
	"legal-lens/internal/models"
)

// Service is what the HTTP layer needs from the pipeline.
type Service interface {
	Process(ctx context.Context, doc *models.RawDocument) (*models.ProcessResult, error)
	Chat(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error)
	MaxFileBytes() int64
}

type Server struct {
	Engine *gin.Engine
	cfg    config.ServerConfig
}

func NewServer(cfg config.ServerConfig, svc Service) *Server {
	return &Server{Engine: NewRouter(cfg, svc), cfg: cfg}
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.cfg.Addr).Msg("HTTP server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Info().Msg("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
