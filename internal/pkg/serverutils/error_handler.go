package serverutils

import (
	"errors"

	"source-intel-be/pkg/synthesis"

	"github.com/gofiber/fiber/v2"
)

// StatusFor maps domain errors onto HTTP status codes.
func StatusFor(err error) int {
	var fe *fiber.Error
	var ve *ValidationError
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.As(err, &ve):
		return fiber.StatusBadRequest
	case errors.Is(err, synthesis.ErrNoViableSources):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, synthesis.ErrSourceNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, synthesis.ErrSessionBusy):
		return fiber.StatusConflict
	case errors.Is(err, synthesis.ErrInvalidInput), errors.Is(err, synthesis.ErrInvalidSource):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandlerMiddleware renders errors returned by handlers in the standard envelope.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		code := StatusFor(err)
		message := err.Error()
		if code == fiber.StatusInternalServerError {
			message = "internal server error"
		}

		var ve *ValidationError
		if errors.As(err, &ve) {
			return ctx.Status(code).JSON(ErrorResponseWithData(code, "validation failed", ve.Fields))
		}
		var nv *synthesis.NoViableSourcesError
		if errors.As(err, &nv) {
			return ctx.Status(code).JSON(ErrorResponseWithData(code, message, nv.Excluded))
		}
		return ctx.Status(code).JSON(ErrorResponse(code, message))
	}
}
