package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventario-core/internal/application/dto"
	"github.com/jhoicas/inventario-core/internal/application/inventory"
)

// InventoryHandler maneja las mutaciones de stock y la consulta del libro.
type InventoryHandler struct {
	mutator *inventory.InventoryMutator
	queries *inventory.InventoryQueries
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(mutator *inventory.InventoryMutator, queries *inventory.InventoryQueries) *InventoryHandler {
	return &InventoryHandler{mutator: mutator, queries: queries}
}

// StockIn godoc
// @Summary      Registrar entrada de stock
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockInRequest  true  "Entrada"
// @Success      200   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/v1/inventory/in [post]
func (h *InventoryHandler) StockIn(c *fiber.Ctx) error {
	var in dto.StockInRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	input := inventory.StockInInput{
		ProductID:  in.ProductID,
		Quantity:   in.Quantity,
		UnitCost:   in.UnitCost,
		Reference:  in.Reference,
		ToLocation: in.ToLocation,
	}
	if in.Batch != nil {
		input.Batch = &inventory.BatchInput{
			BatchNumber:       in.Batch.BatchNumber,
			ManufacturingDate: in.Batch.ManufacturingDate,
			ExpirationDate:    in.Batch.ExpirationDate,
		}
	}
	out, err := h.mutator.RecordStockIn(c.Context(), GetActor(c), input)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToProductResponse(out))
}

// StockOut godoc
// @Summary      Registrar salida de stock
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockOutRequest  true  "Salida"
// @Success      200   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/v1/inventory/out [post]
func (h *InventoryHandler) StockOut(c *fiber.Ctx) error {
	var in dto.StockOutRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.mutator.RecordStockOut(c.Context(), GetActor(c), inventory.StockOutInput{
		ProductID:    in.ProductID,
		Quantity:     in.Quantity,
		Reason:       in.Reason,
		Reference:    in.Reference,
		FromLocation: in.FromLocation,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToProductResponse(out))
}

// Adjust godoc
// @Summary      Registrar ajuste de stock (delta firmado)
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustmentRequest  true  "Ajuste"
// @Success      200   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/v1/inventory/adjustments [post]
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustmentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.mutator.RecordAdjustment(c.Context(), GetActor(c), inventory.AdjustmentInput{
		ProductID: in.ProductID,
		Delta:     in.Delta,
		Reason:    in.Reason,
		Reference: in.Reference,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToProductResponse(out))
}

// Transfer godoc
// @Summary      Trasladar stock entre productos/ubicaciones
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransferRequest  true  "Traslado"
// @Success      200   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/v1/inventory/transfers [post]
func (h *InventoryHandler) Transfer(c *fiber.Ctx) error {
	var in dto.TransferRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.mutator.TransferStock(c.Context(), GetActor(c), inventory.TransferInput{
		FromProductID: in.FromProductID,
		ToProductID:   in.ToProductID,
		Quantity:      in.Quantity,
		Reference:     in.Reference,
		FromLocation:  in.FromLocation,
		ToLocation:    in.ToLocation,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.TransferResponse{
		From: dto.ToProductResponse(out.From),
		To:   dto.ToProductResponse(out.To),
	})
}

// ListMovements godoc
// @Summary      Listar movimientos de un producto (rango de fechas opcional)
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID del producto"
// @Param        from    query  string  false  "Fecha desde (RFC3339)"
// @Param        to      query  string  false  "Fecha hasta (RFC3339)"
// @Param        limit   query  int     false  "Límite"   default(20)
// @Param        offset  query  int     false  "Offset"   default(0)
// @Success      200  {array}  dto.MovementResponse
// @Router       /api/v1/products/{id}/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()

	from, err := parseTimeQuery(c, "from")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from inválido (RFC3339)"})
	}
	to, err := parseTimeQuery(c, "to")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to inválido (RFC3339)"})
	}

	items, err := h.queries.ListMovements(c.Context(), c.Params("id"), from, to, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToMovementList(items))
}

// ListLowStock godoc
// @Summary      Listar productos en o bajo su stock mínimo
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"   default(20)
// @Param        offset  query  int  false  "Offset"   default(0)
// @Success      200  {array}  dto.ProductResponse
// @Router       /api/v1/inventory/low-stock [get]
func (h *InventoryHandler) ListLowStock(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	items, err := h.queries.ListLowStockProducts(c.Context(), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToProductList(items))
}

func parseTimeQuery(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
