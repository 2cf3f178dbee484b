package server

import (
	"github.com/gofiber/fiber/v2"

	"github.com/njnj03/homewatch/internal/core"
	"github.com/njnj03/homewatch/pkg/models"
)

func (s *Server) handleListHouses(c *fiber.Ctx) error {
	houses, err := s.sqlite.ListHouses(c.Context())
	if err != nil {
		s.log.Error("failed to list houses", "error", err)
		return SendErrorWithType(c, fiber.StatusInternalServerError, "Failed to list houses", models.GeneralErrorType)
	}
	if houses == nil {
		houses = []*models.House{}
	}
	return SendSuccess(c, fiber.StatusOK, fiber.Map{"houses": houses})
}

func (s *Server) handleListDevices(c *fiber.Ctx) error {
	houseID := models.HouseID(c.Query("house_id"))
	devices, err := s.sqlite.ListDevices(c.Context(), houseID)
	if err != nil {
		s.log.Error("failed to list devices", "house_id", houseID, "error", err)
		return SendErrorWithType(c, fiber.StatusInternalServerError, "Failed to list devices", models.GeneralErrorType)
	}
	if devices == nil {
		devices = []*models.Device{}
	}
	return SendSuccess(c, fiber.StatusOK, fiber.Map{"devices": devices})
}

func (s *Server) handleGetDashboardMetrics(c *fiber.Ctx) error {
	m, err := core.DashboardMetrics(c.Context(), s.sqlite, s.log)
	if err != nil {
		s.log.Error("failed to compute dashboard metrics", "error", err)
		return SendErrorWithType(c, fiber.StatusInternalServerError, "Failed to compute metrics", models.GeneralErrorType)
	}
	return SendSuccess(c, fiber.StatusOK, m)
}
