package server

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/njnj03/homewatch/internal/core"
	"github.com/njnj03/homewatch/pkg/models"
)

func (s *Server) handleListAlerts(c *fiber.Ctx) error {
	params := models.ListAlertsParams{
		Severity: models.AlertSeverity(c.Query("severity")),
		Status:   models.AlertStatus(c.Query("status")),
		HouseID:  models.HouseID(c.Query("house_id")),
	}
	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			return SendErrorWithType(c, fiber.StatusBadRequest, "Invalid limit parameter", models.ValidationErrorType)
		}
		params.Limit = limit
	}
	if offsetStr := c.Query("offset"); offsetStr != "" {
		offset, err := strconv.Atoi(offsetStr)
		if err != nil || offset < 0 {
			return SendErrorWithType(c, fiber.StatusBadRequest, "Invalid offset parameter", models.ValidationErrorType)
		}
		params.Offset = offset
	}

	list, err := core.ListAlerts(c.Context(), s.sqlite, s.log, params)
	if err != nil {
		s.log.Error("failed to list alerts", "error", err)
		return SendErrorWithType(c, fiber.StatusInternalServerError, "Failed to list alerts", models.GeneralErrorType)
	}
	return SendSuccess(c, fiber.StatusOK, list)
}

func (s *Server) handleGetAlert(c *fiber.Ctx) error {
	alertID := models.AlertID(c.Params("alertID"))
	if alertID == "" {
		return SendErrorWithType(c, fiber.StatusBadRequest, "Alert ID is required", models.ValidationErrorType)
	}

	alert, err := core.GetAlert(c.Context(), s.sqlite, s.log, alertID)
	if err != nil {
		if errors.Is(err, core.ErrAlertNotFound) {
			return SendErrorWithType(c, fiber.StatusNotFound, "Alert not found", models.NotFoundErrorType)
		}
		s.log.Error("failed to get alert", "alert_id", alertID, "error", err)
		return SendErrorWithType(c, fiber.StatusInternalServerError, "Failed to retrieve alert", models.GeneralErrorType)
	}
	return SendSuccess(c, fiber.StatusOK, alert)
}

func (s *Server) handleAcknowledgeAlert(c *fiber.Ctx) error {
	return s.handleTransition(c, models.TransitionAcknowledge)
}

func (s *Server) handleResolveAlert(c *fiber.Ctx) error {
	return s.handleTransition(c, models.TransitionResolve)
}

func (s *Server) handleDismissAlert(c *fiber.Ctx) error {
	return s.handleTransition(c, models.TransitionDismiss)
}

func (s *Server) handleTransition(c *fiber.Ctx, op models.TransitionOp) error {
	alertID := models.AlertID(c.Params("alertID"))
	if alertID == "" {
		return SendErrorWithType(c, fiber.StatusBadRequest, "Alert ID is required", models.ValidationErrorType)
	}

	var req models.TransitionRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return SendErrorWithType(c, fiber.StatusBadRequest, "Invalid request body", models.ValidationErrorType)
		}
	}

	alert, err := core.TransitionAlert(c.Context(), s.sqlite, s.log, alertID, op, req.Notes)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrAlertNotFound):
			return SendErrorWithType(c, fiber.StatusNotFound, "Alert not found", models.NotFoundErrorType)
		case errors.Is(err, core.ErrInvalidTransition):
			return SendErrorWithType(c, fiber.StatusConflict, err.Error(), models.ConflictErrorType)
		default:
			s.log.Error("failed to transition alert", "alert_id", alertID, "op", op, "error", err)
			return SendErrorWithType(c, fiber.StatusInternalServerError, "Failed to update alert", models.GeneralErrorType)
		}
	}

	s.bus.Publish(models.NewUpdatedEvent(core.TransitionPatch(alert)))
	return SendSuccess(c, fiber.StatusOK, alert)
}
