package web

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/GoldPredictor/internal/api/web/middlewares"
	"github.com/Alias1177/GoldPredictor/internal/observability"
)

// ServerConfig holds listener settings. Variables: GOLD_HTTP_HOST, GOLD_HTTP_PORT.
type ServerConfig struct {
	Host            string        `default:"0.0.0.0"`
	Port            string        `default:"8501"`
	ShutdownTimeout time.Duration `split_words:"true" default:"10s"`
}

// Addr returns host:port for the listener.
func (c ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// Controller registers its routes on the router.
type Controller interface {
	RegisterRoutes(r *gin.Engine)
}

// Server is the HTTP front-end: config plus a list of controllers.
type Server struct {
	cfg         ServerConfig
	metrics     *observability.Metrics
	controllers []Controller
	srv         *http.Server
}

func NewServer(cfg ServerConfig, metrics *observability.Metrics) *Server {
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	return &Server{cfg: cfg, metrics: metrics}
}

// AddController adds one or more controllers.
func (s *Server) AddController(c ...Controller) {
	s.controllers = append(s.controllers, c...)
}

// Handler builds the router with middlewares and every controller's routes.
func (s *Server) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.RequestLogger)
	r.Use(middlewares.PrometheusMetrics(s.metrics))
	for _, c := range s.controllers {
		c.RegisterRoutes(r)
	}
	return r
}

// Start serves until ctx is cancelled (SIGINT/SIGTERM), then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.srv = &http.Server{
		Addr:         s.cfg.Addr(),
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.srv.Addr).Msg("HTTP server listening")
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
