package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventario-core/internal/application/dto"
	"github.com/jhoicas/inventario-core/internal/domain"
)

// respondError traduce los sentinelas de dominio al status HTTP y al cuerpo
// {code, message} estándar de la API.
func respondError(c *fiber.Ctx, err error) error {
	code := domain.ErrorCode(err)
	return c.Status(statusFor(code)).JSON(dto.ErrorResponse{Code: code, Message: messageFor(code, err)})
}

// messageFor decide el mensaje visible al cliente. Los errores de BD e
// internos llevan texto del driver o de la transacción en el wrap; ese detalle
// nunca sale al cliente, solo el código estable y un mensaje genérico.
func messageFor(code string, err error) string {
	switch code {
	case domain.CodeDatabase:
		return "almacenamiento temporalmente no disponible, reintente"
	case domain.CodeInternal:
		return "error interno"
	default:
		return err.Error()
	}
}

func statusFor(code string) int {
	switch code {
	case domain.CodeValidation:
		return fiber.StatusBadRequest
	case domain.CodeNotFound:
		return fiber.StatusNotFound
	case domain.CodeDuplicate, domain.CodeConflict, domain.CodeInsufficientStock:
		return fiber.StatusConflict
	case domain.CodeDatabase:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}
