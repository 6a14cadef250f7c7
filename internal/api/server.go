package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/andresuchdata/restock-engine/internal/cache"
	"github.com/andresuchdata/restock-engine/internal/config"
	"github.com/andresuchdata/restock-engine/internal/metrics"
	"github.com/andresuchdata/restock-engine/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 5 * time.Second

// Server is the HTTP front of the restock service.
type Server struct {
	srv *http.Server
}

// NewServer wires cache, metrics and service from cfg. An unreachable redis
// disables caching instead of failing startup.
func NewServer(cfg *config.Config) *Server {
	if cfg.Server.Mode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	analysisCache, err := cache.NewAnalysisCache(cfg.Cache)
	if err != nil {
		log.Warn().Err(err).Msg("analysis cache: redis unavailable, caching disabled")
		analysisCache = cache.NewNoopAnalysisCache()
	}

	m := metrics.New("restock")
	services := &Services{
		RestockService: service.NewRestockService(cfg.Engine, analysisCache, m),
		Metrics:        m,
	}

	return &Server{
		srv: &http.Server{
			Addr:         ":" + cfg.Server.Port,
			Handler:      NewRouter(services, cfg.Server.AllowedOrigins),
			ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
			WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		},
	}
}

func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.srv.Addr).Msg("Starting server")
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Info().Msg("Server exiting")
	return nil
}
