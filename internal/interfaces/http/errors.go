package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/pkg/validator"
)

// respondError traduce errores de dominio a HTTP.
//
//	ValidationError       → 400 VALIDATION (con field)
//	ErrInvalidRate        → 400 INVALID_RATE (field "rate")
//	ErrInvalidInput       → 400 VALIDATION
//	StockError            → 409 INSUFFICIENT_STOCK
//	ErrNotFound           → 404 NOT_FOUND
//	ErrDuplicate          → 409 DUPLICATE
//	resto                 → 500 INTERNAL (sin detalle)
func respondError(c *fiber.Ctx, err error) error {
	var ve *domain.ValidationError
	var se *domain.StockError
	switch {
	case errors.As(err, &ve):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: ve.Message, Field: ve.Field})
	case errors.Is(err, domain.ErrInvalidRate):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_RATE", Message: err.Error(), Field: "rate"})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.As(err, &se):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: se.Error(), Field: "items"})
	case errors.Is(err, domain.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: err.Error()})
	}
	logFromCtx(c).Error().Err(err).Msg("error interno")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}

// badBody 400 INVALID_BODY.
func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

// validateBody aplica los tags `validate` de in. Devuelve false si ya respondió 400.
func validateBody(c *fiber.Ctx, in interface{}) (bool, error) {
	errs := validator.ValidateStruct(in)
	if len(errs) == 0 {
		return true, nil
	}
	first := errs[0]
	msg := "valor inválido (" + first.Tag + ")"
	if first.Tag == "required" {
		msg = "requerido"
	}
	return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: msg, Field: first.Field})
}
