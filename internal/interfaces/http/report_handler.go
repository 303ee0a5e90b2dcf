package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tienda-api/internal/application/reports"
)

// ReportHandler panel y ranking de ventas.
type ReportHandler struct {
	uc *reports.UseCase
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *reports.UseCase) *ReportHandler {
	return &ReportHandler{uc: uc}
}

// Stats godoc
// @Summary      Resumen: productos, stock, ventas 30 días y tasa
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.StatsResponse
// @Router       /api/reports/stats [get]
func (h *ReportHandler) Stats(c *fiber.Ctx) error {
	out, err := h.uc.Stats(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// TopSellers godoc
// @Summary      Productos más vendidos
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        period  query  string  false  "week | month | year (por defecto month)"
// @Param        start   query  string  false  "YYYY-MM-DD (junto con end)"
// @Param        end     query  string  false  "YYYY-MM-DD"
// @Param        limit   query  int     false  "1..100 (por defecto 10)"
// @Success      200  {object}  dto.TopSellersResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/top-sellers [get]
func (h *ReportHandler) TopSellers(c *fiber.Ctx) error {
	out, err := h.uc.TopSellers(c.UserContext(), reports.TopSellersQuery{
		Period: c.Query("period"),
		Start:  c.Query("start"),
		End:    c.Query("end"),
		Limit:  c.QueryInt("limit", 0),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
