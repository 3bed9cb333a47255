package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	// Observability endpoints
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Relay transport
	s.echo.GET("/ws", s.handleWebSocket)

	// Login persistence
	s.echo.POST("/login", s.handleLogin)
	s.echo.GET("/login/:username", s.handleGetLogin)

	// Upload storage and static retrieval
	s.echo.POST("/upload", s.handleUpload)
	s.echo.Static("/uploads", s.config.UploadDir)
}
