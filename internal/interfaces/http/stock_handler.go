package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/application/inventory"
)

// StockHandler ajustes de stock y alertas.
type StockHandler struct {
	uc     *inventory.StockUseCase
	alerts *inventory.StockAlertsUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(uc *inventory.StockUseCase, alerts *inventory.StockAlertsUseCase) *StockHandler {
	return &StockHandler{uc: uc, alerts: alerts}
}

// Adjust godoc
// @Summary      Sumar o restar stock
// @Description  El stock nunca queda negativo: un descuento mayor al disponible responde 409.
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustStockRequest  true  "product_id, store_id, delta"
// @Success      200   {object}  dto.StockResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/adjust [post]
func (h *StockHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustStockRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if ok, err := validateBody(c, in); !ok {
		return err
	}
	out, err := h.uc.Adjust(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Set godoc
// @Summary      Fijar cantidad absoluta
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SetStockRequest  true  "product_id, store_id, quantity, min_threshold"
// @Success      200   {object}  dto.StockResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/stock [put]
func (h *StockHandler) Set(c *fiber.Ctx) error {
	var in dto.SetStockRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if ok, err := validateBody(c, in); !ok {
		return err
	}
	out, err := h.uc.Set(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar registro de stock
// @Tags         stock
// @Security     Bearer
// @Param        product_id  path  string  true  "Producto"
// @Param        store_id    path  string  true  "Tienda"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/{product_id}/{store_id} [delete]
func (h *StockHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("product_id"), c.Params("store_id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Alerts godoc
// @Summary      Alertas de stock
// @Description  Inactivos, agotados y bajo el umbral (min_threshold o el umbral global).
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        threshold  query  int  false  "Umbral global (por defecto el configurado)"
// @Success      200  {object}  dto.StockAlertsResponse
// @Router       /api/stock/alerts [get]
func (h *StockHandler) Alerts(c *fiber.Ctx) error {
	out, err := h.alerts.Alerts(c.UserContext(), c.QueryInt("threshold", 0))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
