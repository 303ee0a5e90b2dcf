package sales

import (
	"context"
	"fmt"

	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
)

// PDFUseCase genera el comprobante PDF de una venta ya confirmada.
type PDFUseCase struct {
	saleRepo  repository.SaleRepository
	storeRepo repository.StoreRepository
	renderer  InvoiceRenderer
}

// NewPDFUseCase construye el caso de uso.
func NewPDFUseCase(saleRepo repository.SaleRepository, storeRepo repository.StoreRepository, renderer InvoiceRenderer) *PDFUseCase {
	return &PDFUseCase{saleRepo: saleRepo, storeRepo: storeRepo, renderer: renderer}
}

// InvoiceCurrency moneda de impresión: la pedida, si no la de pago de la venta, si no USD.
// Una moneda pedida inválida es error de validación.
func InvoiceCurrency(requested string, sale *entity.Sale) (string, error) {
	if requested != "" {
		c, err := NormalizeCurrency(requested)
		if err != nil {
			return "", domain.NewValidationError("currency", "debe ser USD, VES, BS o BSS")
		}
		return c, nil
	}
	if sale.PayCurrency != "" {
		return sale.PayCurrency, nil
	}
	return entity.CurrencyUSD, nil
}

// DownloadInvoicePDF devuelve (pdf, nombre de archivo). No modifica la venta.
func (uc *PDFUseCase) DownloadInvoicePDF(ctx context.Context, saleID, currency string) ([]byte, string, error) {
	sale, err := loadSale(ctx, uc.saleRepo, saleID)
	if err != nil {
		return nil, "", err
	}
	cur, err := InvoiceCurrency(currency, sale)
	if err != nil {
		return nil, "", err
	}
	store, err := uc.storeRepo.GetByID(ctx, sale.StoreID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener tienda: %w", err)
	}
	if store == nil {
		store = &entity.Store{ID: sale.StoreID}
	}
	pdf, err := uc.renderer.RenderSale(sale, store, cur)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generar: %w", err)
	}
	short := sale.ID
	if len(short) > 8 {
		short = short[:8]
	}
	return pdf, fmt.Sprintf("venta-%s-%s.pdf", short, cur), nil
}
