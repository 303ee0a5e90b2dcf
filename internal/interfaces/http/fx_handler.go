package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/application/fx"
)

// FXHandler tasa de cambio USD → Bs.
type FXHandler struct {
	provider *fx.Provider
}

// NewFXHandler construye el handler.
func NewFXHandler(provider *fx.Provider) *FXHandler {
	return &FXHandler{provider: provider}
}

// Current godoc
// @Summary      Tasa vigente
// @Tags         fx
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.CurrentRateResponse
// @Router       /api/fx [get]
func (h *FXHandler) Current(c *fiber.Ctx) error {
	return c.JSON(h.provider.Current(c.UserContext()))
}

// Record godoc
// @Summary      Registrar nueva tasa
// @Tags         fx
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordRateRequest  true  "rate > 0"
// @Success      201   {object}  dto.ExchangeRateResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/fx [post]
func (h *FXHandler) Record(c *fiber.Ctx) error {
	var in dto.RecordRateRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	rate, err := h.provider.RecordRate(c.UserContext(), in.Rate, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ExchangeRateResponse{
		ID:            rate.ID,
		Rate:          rate.Rate,
		EffectiveDate: rate.EffectiveDate.Format("2006-01-02"),
		CreatedBy:     rate.CreatedBy,
		CreatedAt:     rate.CreatedAt,
	})
}

// History godoc
// @Summary      Historial de tasas
// @Tags         fx
// @Security     Bearer
// @Produce      json
// @Param        limit  query  int  false  "Máximo 100 (por defecto 30)"
// @Success      200  {array}  dto.ExchangeRateResponse
// @Router       /api/fx/history [get]
func (h *FXHandler) History(c *fiber.Ctx) error {
	list, err := h.provider.History(c.UserContext(), c.QueryInt("limit", 30))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}
