package router

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/denisAlshanov/reelgrab/internal/api/handlers"
	"github.com/denisAlshanov/reelgrab/internal/api/middleware"
	"github.com/denisAlshanov/reelgrab/internal/config"
)

type Router struct {
	engine *gin.Engine
	server *http.Server
	config *config.ServerConfig
}

func NewRouter(cfg *config.ServerConfig, healthHandler *handlers.HealthHandler) *Router {
	if cfg.Host == "0.0.0.0" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.CorrelationIDMiddleware())

	health := engine.Group("/")
	{
		health.GET("/", healthHandler.Root)
		health.HEAD("/", healthHandler.Root)
		health.GET("/live", healthHandler.Liveness)
		health.GET("/health", healthHandler.Health)
	}

	return &Router{
		engine: engine,
		config: cfg,
		server: &http.Server{
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Listen binds the configured address. It is separate from Serve so a busy
// port fails startup instead of a background goroutine.
func (r *Router) Listen() (net.Listener, error) {
	ln, err := net.Listen("tcp", r.config.Addr())
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", r.config.Addr(), err)
	}
	return ln, nil
}

// Serve blocks until Shutdown is called.
func (r *Router) Serve(ln net.Listener) error {
	if err := r.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (r *Router) Shutdown(ctx context.Context) error {
	return r.server.Shutdown(ctx)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
