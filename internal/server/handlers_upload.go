package server

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	apperrors "github.com/pscheid92/chatrelay/internal/errors"
	"github.com/pscheid92/chatrelay/internal/metrics"
)

type uploadResponse struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

// handleUpload stores the multipart "file" field and returns the URL it is
// retrievable under, for later reference as a chat message attachment.
func (s *Server) handleUpload(c echo.Context) error {
	header, err := c.FormFile("file")
	if err != nil {
		return respondError(c, apperrors.ValidationError("no file uploaded"))
	}

	src, err := header.Open()
	if err != nil {
		slog.Error("Failed to open uploaded file", "filename", header.Filename, "error", err)
		return respondError(c, apperrors.InternalError("failed to read upload", err))
	}
	defer src.Close()

	stored, err := s.files.Save(header.Filename, src)
	if err != nil {
		slog.Error("Failed to store uploaded file", "filename", header.Filename, "error", err)
		return respondError(c, apperrors.InternalError("failed to store upload", err))
	}

	metrics.UploadsTotal.Inc()
	slog.Info("File uploaded", "stored_name", stored, "size", header.Size)

	return c.JSON(http.StatusOK, uploadResponse{
		URL:      fmt.Sprintf("%s/uploads/%s", s.getBaseURL(c), stored),
		Filename: header.Filename,
	})
}

func (s *Server) getBaseURL(c echo.Context) string {
	scheme := "http"
	if c.Request().TLS != nil {
		scheme = "https"
	}
	if fwdProto := c.Request().Header.Get("X-Forwarded-Proto"); fwdProto != "" {
		scheme = fwdProto
	}
	return fmt.Sprintf("%s://%s", scheme, c.Request().Host)
}
