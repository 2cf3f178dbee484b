package server

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/njnj03/homewatch/internal/core"
	"github.com/njnj03/homewatch/pkg/models"
)

func (s *Server) handleListModels(c *fiber.Ctx) error {
	list, err := core.ListModels(c.Context(), s.sqlite, s.log, s.config.Models.Dir)
	if err != nil {
		s.log.Error("failed to list models", "error", err)
		return SendErrorWithType(c, fiber.StatusInternalServerError, "Failed to list models", models.GeneralErrorType)
	}
	return SendSuccess(c, fiber.StatusOK, list)
}

func (s *Server) handleGetActiveModel(c *fiber.Ctx) error {
	list, err := core.ListModels(c.Context(), s.sqlite, s.log, s.config.Models.Dir)
	if err != nil {
		s.log.Error("failed to load active model", "error", err)
		return SendErrorWithType(c, fiber.StatusInternalServerError, "Failed to load active model", models.GeneralErrorType)
	}
	if list.ActiveModel == nil {
		return SendErrorWithType(c, fiber.StatusNotFound, "No active model found", models.NotFoundErrorType)
	}
	return SendSuccess(c, fiber.StatusOK, list.ActiveModel)
}

func (s *Server) handleGetModel(c *fiber.Ctx) error {
	modelID, err := parseModelID(c)
	if err != nil {
		return SendErrorWithType(c, fiber.StatusBadRequest, "Invalid model ID", models.ValidationErrorType)
	}

	model, err := core.GetModel(c.Context(), s.sqlite, s.log, s.config.Models.Dir, modelID)
	if err != nil {
		if errors.Is(err, core.ErrModelNotFound) {
			return SendErrorWithType(c, fiber.StatusNotFound, "Model not found", models.NotFoundErrorType)
		}
		s.log.Error("failed to get model", "model_id", modelID, "error", err)
		return SendErrorWithType(c, fiber.StatusInternalServerError, "Failed to retrieve model", models.GeneralErrorType)
	}
	return SendSuccess(c, fiber.StatusOK, model)
}

func (s *Server) handleCreateModel(c *fiber.Ctx) error {
	var req models.CreateModelRequest
	if err := c.BodyParser(&req); err != nil {
		return SendErrorWithType(c, fiber.StatusBadRequest, "Invalid request body", models.ValidationErrorType)
	}

	model, err := core.CreateModel(c.Context(), s.sqlite, s.log, s.config.Models.Dir, &req)
	if err != nil {
		if errors.Is(err, core.ErrInvalidModel) {
			return SendErrorWithType(c, fiber.StatusBadRequest, err.Error(), models.ValidationErrorType)
		}
		s.log.Error("failed to create model", "error", err)
		return SendErrorWithType(c, fiber.StatusInternalServerError, "Failed to create model", models.GeneralErrorType)
	}
	return SendSuccess(c, fiber.StatusCreated, model)
}

func (s *Server) handleUpdateModel(c *fiber.Ctx) error {
	modelID, err := parseModelID(c)
	if err != nil {
		return SendErrorWithType(c, fiber.StatusBadRequest, "Invalid model ID", models.ValidationErrorType)
	}

	var req models.UpdateModelRequest
	if err := c.BodyParser(&req); err != nil {
		return SendErrorWithType(c, fiber.StatusBadRequest, "Invalid request body", models.ValidationErrorType)
	}

	model, err := core.UpdateModel(c.Context(), s.sqlite, s.log, s.config.Models.Dir, modelID, &req)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrInvalidModel):
			return SendErrorWithType(c, fiber.StatusBadRequest, err.Error(), models.ValidationErrorType)
		case errors.Is(err, core.ErrModelNotFound):
			return SendErrorWithType(c, fiber.StatusNotFound, "Model not found", models.NotFoundErrorType)
		default:
			s.log.Error("failed to update model", "model_id", modelID, "error", err)
			return SendErrorWithType(c, fiber.StatusInternalServerError, "Failed to update model", models.GeneralErrorType)
		}
	}
	return SendSuccess(c, fiber.StatusOK, model)
}

func (s *Server) handleDeleteModel(c *fiber.Ctx) error {
	modelID, err := parseModelID(c)
	if err != nil {
		return SendErrorWithType(c, fiber.StatusBadRequest, "Invalid model ID", models.ValidationErrorType)
	}

	if err := core.DeleteModel(c.Context(), s.sqlite, s.log, modelID); err != nil {
		switch {
		case errors.Is(err, core.ErrModelNotFound):
			return SendErrorWithType(c, fiber.StatusNotFound, "Model not found", models.NotFoundErrorType)
		case errors.Is(err, core.ErrLastModel), errors.Is(err, core.ErrActiveModel):
			return SendErrorWithType(c, fiber.StatusConflict, err.Error(), models.ConflictErrorType)
		default:
			s.log.Error("failed to delete model", "model_id", modelID, "error", err)
			return SendErrorWithType(c, fiber.StatusInternalServerError, "Failed to delete model", models.GeneralErrorType)
		}
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) handleActivateModel(c *fiber.Ctx) error {
	modelID, err := parseModelID(c)
	if err != nil {
		return SendErrorWithType(c, fiber.StatusBadRequest, "Invalid model ID", models.ValidationErrorType)
	}

	if err := core.ActivateModel(c.Context(), s.sqlite, s.log, s.config.Models.Dir, modelID); err != nil {
		switch {
		case errors.Is(err, core.ErrModelNotFound):
			return SendErrorWithType(c, fiber.StatusNotFound, "Model not found", models.NotFoundErrorType)
		case errors.Is(err, core.ErrActivationFailed):
			return SendErrorWithType(c, fiber.StatusConflict, err.Error(), models.ConflictErrorType)
		default:
			s.log.Error("failed to activate model", "model_id", modelID, "error", err)
			return SendErrorWithType(c, fiber.StatusInternalServerError, "Failed to activate model", models.GeneralErrorType)
		}
	}
	return SendSuccess(c, fiber.StatusOK, fiber.Map{"message": "Model activated"})
}

func parseModelID(c *fiber.Ctx) (models.ModelID, error) {
	parsed, err := strconv.ParseInt(c.Params("modelID"), 10, 64)
	if err != nil {
		return 0, err
	}
	return models.ModelID(parsed), nil
}
