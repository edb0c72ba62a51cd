package webui

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"dmdesk/internal/app/messaging"
	"dmdesk/internal/config"
	"dmdesk/internal/logging"
	"dmdesk/internal/observability"
	"dmdesk/internal/webui/assets"
	"dmdesk/internal/webui/handlers"
	"dmdesk/internal/webui/middleware"
)

// Dependencies are the collaborators the server routes to.
type Dependencies struct {
	Sender        handlers.Sender
	Status        messaging.ConnectionStatus
	Observability *observability.Observability
	Logger        logging.Logger
	Version       string
}

// Server is the web form server.
type Server struct {
	engine         *gin.Engine
	httpServer     *http.Server
	logger         logging.Logger
	allowedOrigins []string
}

// NewServer builds the gin engine and its http.Server.
func NewServer(cfg config.ServerConfig, deps Dependencies) (*Server, error) {
	if deps.Sender == nil {
		return nil, errors.New("webui: sender is required")
	}
	logger := logging.OrNop(deps.Logger)

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.ObservabilityMiddleware(deps.Observability, logger))

	if cfg.EnableCORS {
		corsConfig := cors.DefaultConfig()
		if len(cfg.AllowedOrigins) > 0 {
			corsConfig.AllowOrigins = cfg.AllowedOrigins
		} else {
			corsConfig.AllowAllOrigins = true
		}
		corsConfig.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
		corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
		engine.Use(cors.New(corsConfig))
	}

	tmpl, err := assets.Templates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	engine.SetHTMLTemplate(tmpl)

	static, err := assets.Static()
	if err != nil {
		return nil, fmt.Errorf("load static assets: %w", err)
	}

	s := &Server{
		engine:         engine,
		logger:         logger,
		allowedOrigins: cfg.AllowedOrigins,
		httpServer: &http.Server{
			Addr:         cfg.Address(),
			Handler:      engine,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
	}
	s.setupRoutes(deps, static)
	return s, nil
}

func (s *Server) setupRoutes(deps Dependencies, static fs.FS) {
	pageHandler := handlers.NewPageHandler(deps.Sender, deps.Status, s.logger)
	messageHandler := handlers.NewMessageHandler(deps.Sender, s.logger)
	statusHandler := handlers.NewStatusHandler(deps.Status, deps.Version)

	s.engine.GET("/", pageHandler.Index)
	s.engine.POST("/send", middleware.SameOriginMiddleware(s.allowedOrigins, s.logger), pageHandler.Send)
	s.engine.StaticFS("/static", http.FS(static))

	api := s.engine.Group("/api")
	api.Use(middleware.JSONMiddleware())
	{
		api.GET("/health", statusHandler.Health)
		api.GET("/status", statusHandler.Status)
		api.POST("/messages", messageHandler.SendMessage)
	}
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Serve serves on ln until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("Serving web UI on %s", ln.Addr())
	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight sends.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Stopping web UI server")
	return s.httpServer.Shutdown(ctx)
}
