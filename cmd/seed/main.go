// seed carga tiendas y productos con stock inicial desde un CSV.
//
// Uso: go run ./cmd/seed [ruta/productos.csv]
// Columnas: store_code,sku,name,price_usd,quantity[,min_threshold]
// Los archivos exportados en ISO-8859-1 (Excel) se detectan y se convierten a UTF-8.
// Las tiendas que no existen se crean con el código como nombre.
package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/tienda-api/internal/application/catalog"
	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/application/inventory"
	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/infrastructure/postgres"
	"github.com/jhoicas/tienda-api/pkg/config"
	"github.com/jhoicas/tienda-api/pkg/logger"
)

type row struct {
	storeCode string
	sku       string
	name      string
	price     decimal.Decimal
	quantity  int
	minQty    int
}

func main() {
	path := "productos.csv"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	rows, err := parseCSV(raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()
	if err := postgres.ApplySchema(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("aplicar esquema")
	}

	storeRepo := postgres.NewStoreRepository(pool)
	storeUC := catalog.NewStoreUseCase(storeRepo)
	productUC := catalog.NewProductUseCase(
		postgres.NewTxRunner(pool), inventory.NewLedger(),
		postgres.NewProductRepository(pool), storeRepo, postgres.NewStockRepository(pool),
		nil, log.Component("seed"),
	)

	storeIDs := map[string]string{}
	created, skipped := 0, 0
	for i, r := range rows {
		storeID, ok := storeIDs[r.storeCode]
		if !ok {
			storeID, err = ensureStore(ctx, storeUC, r.storeCode)
			if err != nil {
				log.Fatal().Err(err).Str("store", r.storeCode).Msg("crear tienda")
			}
			storeIDs[r.storeCode] = storeID
		}
		_, err := productUC.Create(ctx, dto.CreateProductRequest{
			SKU:      r.sku,
			Name:     r.name,
			PriceUSD: r.price,
			InitialStocks: []dto.InitialStockRequest{{
				StoreID: storeID, Quantity: r.quantity, MinThreshold: r.minQty,
			}},
		})
		switch {
		case errors.Is(err, domain.ErrDuplicate):
			skipped++
			log.Warn().Int("fila", i+2).Str("sku", r.sku).Msg("SKU ya existe, se omite")
		case err != nil:
			log.Fatal().Err(err).Int("fila", i+2).Str("sku", r.sku).Msg("crear producto")
		default:
			created++
		}
	}
	log.Info().Int("creados", created).Int("omitidos", skipped).Int("tiendas", len(storeIDs)).Msg("seed completado")
}

func ensureStore(ctx context.Context, uc *catalog.StoreUseCase, code string) (string, error) {
	s, err := uc.GetByCode(ctx, code)
	if err == nil {
		return s.ID, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return "", err
	}
	s, err = uc.Create(ctx, dto.CreateStoreRequest{Code: code, Name: code})
	if err != nil {
		return "", err
	}
	return s.ID, nil
}

// decodeInput convierte a UTF-8 si el contenido no lo es (se asume ISO-8859-1).
func decodeInput(raw []byte) io.Reader {
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	if utf8.Valid(raw) {
		return bytes.NewReader(raw)
	}
	return transform.NewReader(bytes.NewReader(raw), charmap.ISO8859_1.NewDecoder())
}

func parseCSV(raw []byte) ([]row, error) {
	r := csv.NewReader(decodeInput(raw))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("archivo vacío")
	}
	// la primera fila es el encabezado
	out := make([]row, 0, len(records)-1)
	for i, rec := range records[1:] {
		line := i + 2
		if len(rec) < 5 {
			return nil, fmt.Errorf("fila %d: se esperaban al menos 5 columnas", line)
		}
		price, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(rec[3]), ",", "."))
		if err != nil {
			return nil, fmt.Errorf("fila %d: price_usd inválido: %w", line, err)
		}
		qty, err := strconv.Atoi(strings.TrimSpace(rec[4]))
		if err != nil {
			return nil, fmt.Errorf("fila %d: quantity inválido: %w", line, err)
		}
		minQty := 0
		if len(rec) > 5 && strings.TrimSpace(rec[5]) != "" {
			if minQty, err = strconv.Atoi(strings.TrimSpace(rec[5])); err != nil {
				return nil, fmt.Errorf("fila %d: min_threshold inválido: %w", line, err)
			}
		}
		out = append(out, row{
			storeCode: strings.ToUpper(strings.TrimSpace(rec[0])),
			sku:       strings.TrimSpace(rec[1]),
			name:      strings.TrimSpace(rec[2]),
			price:     price,
			quantity:  qty,
			minQty:    minQty,
		})
	}
	return out, nil
}
