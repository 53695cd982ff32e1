package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventario-core/internal/application/dto"
	"github.com/jhoicas/inventario-core/internal/domain/entity"
	"github.com/jhoicas/inventario-core/pkg/jwt"
)

// Locals keys para el actor autenticado en Fiber.
const (
	LocalActorID   = "actor_id"
	LocalSessionID = "session_id"
)

// ActorMiddleware valida el Bearer Token JWT y deja actor y sesión en c.Locals.
// La autorización fina (roles, permisos) vive fuera de este motor; aquí solo
// se exige identidad para poder auditar cada mutación.
func ActorMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "Authorization header requerido"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "token vacío"})
		}
		actorID, sessionID, err := jwt.Parse(jwtSecret, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		c.Locals(LocalActorID, actorID)
		c.Locals(LocalSessionID, sessionID)
		return c.Next()
	}
}

// GetActor arma el actor de auditoría con la identidad del token y el contexto
// del request (IP y User-Agent).
func GetActor(c *fiber.Ctx) entity.Actor {
	return entity.Actor{
		ID:        localString(c, LocalActorID),
		SessionID: localString(c, LocalSessionID),
		IP:        c.IP(),
		UserAgent: c.Get("User-Agent"),
	}
}

func localString(c *fiber.Ctx, key string) string {
	v := c.Locals(key)
	if v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}
