// Package events define los eventos que se publican tras confirmar cambios de stock o ventas.
package events

import "time"

// Tipos de evento.
const (
	TypeStockChanged = "stock.changed"
	TypeSaleCreated  = "sale.created"
	TypeRateChanged  = "fx.changed"
)

// Event mensaje publicado después del commit. Nunca antes.
type Event struct {
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    interface{} `json:"payload"`
}

// StockChanged payload de TypeStockChanged.
type StockChanged struct {
	ProductID     string `json:"product_id"`
	StoreID       string `json:"store_id"`
	Quantity      int    `json:"quantity"`
	ProductActive bool   `json:"product_active"`
	Reason        string `json:"reason"` // sale | adjust | set | delete | initial
}

// SaleCreated payload de TypeSaleCreated.
type SaleCreated struct {
	SaleID        string `json:"sale_id"`
	StoreID       string `json:"store_id"`
	PaymentMethod string `json:"payment_method"`
	TotalLocal    string `json:"total_bs"`
	TotalUSD      string `json:"total_usd"`
	Lines         int    `json:"lines"`
}

// RateChanged payload de TypeRateChanged.
type RateChanged struct {
	Rate          string `json:"rate"`
	EffectiveDate string `json:"effective_date"`
}

// Publisher recibe eventos. Las implementaciones no deben bloquear al llamador.
type Publisher interface {
	Publish(ev Event)
}

// NoopPublisher descarta los eventos.
type NoopPublisher struct{}

// Publish no hace nada.
func (NoopPublisher) Publish(Event) {}

// New construye un evento con la hora actual.
func New(typ string, payload interface{}) Event {
	return Event{Type: typ, OccurredAt: time.Now().UTC(), Payload: payload}
}
