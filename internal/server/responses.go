package server

import (
	"github.com/gofiber/fiber/v2"

	"github.com/njnj03/homewatch/pkg/models"
)

// SendSuccess writes the uniform success envelope.
func SendSuccess(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(models.APIResponse{
		Status: "success",
		Data:   data,
	})
}

// SendError writes an error envelope with the general error type.
func SendError(c *fiber.Ctx, status int, message string) error {
	return SendErrorWithType(c, status, message, models.GeneralErrorType)
}

// SendErrorWithType writes an error envelope carrying a machine-readable
// error type alongside the human-readable detail.
func SendErrorWithType(c *fiber.Ctx, status int, message string, errType models.ErrorType) error {
	return c.Status(status).JSON(models.APIResponse{
		Status: "error",
		Data: models.ErrorData{
			Message:   message,
			ErrorType: errType,
		},
	})
}
