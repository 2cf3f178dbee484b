package server

import (
	"github.com/gofiber/fiber/v2"

	"github.com/njnj03/homewatch/pkg/timefmt"
)

// MetaResponse represents the server metadata response.
type MetaResponse struct {
	Version           string `json:"version"`
	HTTPServerTimeout string `json:"http_server_timeout"`
	FeedEnabled       bool   `json:"feed_enabled"`
	DisplayTimezone   string `json:"display_timezone"`
}

// handleGetMeta returns server metadata including version and configuration.
// URL: GET /api/v1/meta
func (s *Server) handleGetMeta(c *fiber.Ctx) error {
	meta := MetaResponse{
		Version:           s.version,
		HTTPServerTimeout: s.config.Server.HTTPServerTimeout.String(),
		FeedEnabled:       s.config.Feed.Enabled,
		DisplayTimezone:   timefmt.DisplayZone,
	}
	return SendSuccess(c, fiber.StatusOK, meta)
}
