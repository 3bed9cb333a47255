// Package server implements the HTTP surface using the Echo framework.
//
// Routes: /ws (WebSocket relay), /login (persisted login records),
// /upload + /uploads (file storage), /health/* and /metrics (observability).
// Handlers split by concern: handlers.go (WebSocket), handlers_login.go,
// handlers_upload.go, handlers_health.go.
package server
