package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pscheid92/chatrelay/internal/config"
	"github.com/pscheid92/chatrelay/internal/domain"
	"github.com/pscheid92/chatrelay/internal/relay"
	goredis "github.com/redis/go-redis/v9"
)

type Server struct {
	echo    *echo.Echo
	config  *config.Config
	hub     *relay.Hub
	logins  domain.LoginStore
	files   domain.FileStore
	redis   redisHealthChecker
	clock   clockwork.Clock
	limiter *ConnectionLimiter
}

func NewServer(cfg *config.Config, hub *relay.Hub, logins domain.LoginStore, files domain.FileStore, rdb *goredis.Client, clock clockwork.Clock) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware. CORS is wide open on purpose: the relay is not a
	// security boundary and the original served any origin.
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost},
	}))

	srv := &Server{
		echo:    e,
		config:  cfg,
		hub:     hub,
		logins:  logins,
		files:   files,
		redis:   rdb,
		clock:   clock,
		limiter: NewConnectionLimiter(cfg.MaxConnections),
	}

	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
