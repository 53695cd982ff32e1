package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventario-core/internal/application/dto"
	"github.com/jhoicas/inventario-core/internal/application/inventory"
)

// AlertHandler maneja la consulta y transición manual de alertas de stock.
type AlertHandler struct {
	alerts  *inventory.AlertUseCase
	queries *inventory.InventoryQueries
}

// NewAlertHandler construye el handler.
func NewAlertHandler(alerts *inventory.AlertUseCase, queries *inventory.InventoryQueries) *AlertHandler {
	return &AlertHandler{alerts: alerts, queries: queries}
}

// List godoc
// @Summary      Listar alertas de stock
// @Tags         alerts
// @Security     Bearer
// @Produce      json
// @Param        status      query  string  false  "active | resolved | ignored"
// @Param        product_id  query  string  false  "Filtrar por producto"
// @Param        limit       query  int     false  "Límite"   default(20)
// @Param        offset      query  int     false  "Offset"   default(0)
// @Success      200  {array}  dto.AlertResponse
// @Router       /api/v1/alerts [get]
func (h *AlertHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	items, err := h.queries.ListAlerts(c.Context(), c.Query("product_id"), c.Query("status"), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToAlertList(items))
}

// Resolve godoc
// @Summary      Resolver manualmente una alerta activa
// @Tags         alerts
// @Security     Bearer
// @Param        id  path  string  true  "ID de la alerta"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/v1/alerts/{id}/resolve [post]
func (h *AlertHandler) Resolve(c *fiber.Ctx) error {
	if err := h.alerts.Resolve(c.Context(), GetActor(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Ignore godoc
// @Summary      Ignorar una alerta activa (estado terminal)
// @Tags         alerts
// @Security     Bearer
// @Param        id  path  string  true  "ID de la alerta"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/v1/alerts/{id}/ignore [post]
func (h *AlertHandler) Ignore(c *fiber.Ctx) error {
	if err := h.alerts.Ignore(c.Context(), GetActor(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
