package server

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	apperrors "github.com/pscheid92/chatrelay/internal/errors"
	"github.com/pscheid92/chatrelay/internal/metrics"
)

type loginRequest struct {
	Username string `json:"username"`
	Country  string `json:"country"`
}

// handleLogin persists a login record with a 7-day expiry, replacing any
// prior record for the username.
func (s *Server) handleLogin(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, apperrors.ValidationError("invalid request body"))
	}
	if req.Username == "" {
		return respondError(c, apperrors.ValidationError("username is required"))
	}

	record, err := s.logins.Save(c.Request().Context(), req.Username, req.Country)
	if err != nil {
		slog.Error("Failed to save login record", "username", req.Username, "error", err)
		return respondError(c, apperrors.InternalError("failed to save login", err))
	}

	metrics.LoginSavesTotal.Inc()
	return c.JSON(http.StatusOK, record)
}

func (s *Server) handleGetLogin(c echo.Context) error {
	username := c.Param("username")

	record, err := s.logins.Get(c.Request().Context(), username)
	if err != nil {
		slog.Error("Failed to load login record", "username", username, "error", err)
		return respondError(c, apperrors.InternalError("failed to load login", err))
	}
	if record == nil {
		return respondError(c, apperrors.NotFoundError("login not found"))
	}

	return c.JSON(http.StatusOK, record)
}

func respondError(c echo.Context, err error) error {
	structured := apperrors.AsStructuredError(err)
	return c.JSON(structured.HTTPStatus(), structured.ToResponse())
}
