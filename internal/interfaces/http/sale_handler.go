package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/application/sales"
)

// SaleHandler ventas: registro, consulta y comprobante PDF.
type SaleHandler struct {
	create *sales.CreateSaleUseCase
	query  *sales.QueryUseCase
	pdf    *sales.PDFUseCase
}

// NewSaleHandler construye el handler.
func NewSaleHandler(create *sales.CreateSaleUseCase, query *sales.QueryUseCase, pdf *sales.PDFUseCase) *SaleHandler {
	return &SaleHandler{create: create, query: query, pdf: pdf}
}

// Create godoc
// @Summary      Registrar venta
// @Description  Descuenta stock, calcula IVA y totales con la tasa vigente y guarda la venta en una sola transacción.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSaleRequest  true  "store_id, payment_method, customer, items"
// @Success      201   {object}  dto.SaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/sales [post]
func (h *SaleHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if ok, err := validateBody(c, in); !ok {
		return err
	}
	out, err := h.create.CreateSale(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener venta con sus líneas
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {object}  dto.SaleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [get]
func (h *SaleHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.query.GetSale(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar ventas (más recientes primero)
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        store_id  query  string  false  "Filtrar por tienda"
// @Param        limit     query  int     false  "Límite"
// @Param        offset    query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.SaleListResponse
// @Router       /api/sales [get]
func (h *SaleHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badBody(c)
	}
	out, err := h.query.ListSales(c.UserContext(), c.Query("store_id"), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// InvoicePDF godoc
// @Summary      Comprobante de venta en PDF
// @Description  currency=USD|VES. Por defecto la moneda de pago de la venta. Solo cambia la presentación.
// @Tags         sales
// @Security     Bearer
// @Produce      application/pdf
// @Param        id        path   string  true   "ID de la venta"
// @Param        currency  query  string  false  "USD o VES"
// @Success      200
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/invoice [get]
func (h *SaleHandler) InvoicePDF(c *fiber.Ctx) error {
	body, filename, err := h.pdf.DownloadInvoicePDF(c.UserContext(), c.Params("id"), c.Query("currency"))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(body)
}
