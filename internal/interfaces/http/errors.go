package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/invoice-builder/internal/application/dto"
	"github.com/jhoicas/invoice-builder/internal/domain"
)

// writeError traduce errores de dominio a respuestas con código estable.
func writeError(c *fiber.Ctx, err error) error {
	var verr *dto.ValidationError
	var perr *domain.PersistError
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos", Fields: verr.Fields})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	case errors.As(err, &perr):
		code := "DRAFT_SAVE_FAILED"
		switch perr.Op {
		case "load":
			code = "DRAFT_LOAD_FAILED"
		case "delete":
			code = "DRAFT_DELETE_FAILED"
		}
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: code, Message: "no se pudo persistir el borrador; los cambios siguen en memoria"})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	case errors.Is(err, domain.ErrCodeUnavailable):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "CODE_UNAVAILABLE", Message: err.Error()})
	case errors.Is(err, domain.ErrCodePending):
		return c.Status(fiber.StatusAccepted).JSON(dto.ErrorResponse{Code: "CODE_PENDING", Message: "el código de verificación se está generando"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}
