package entity

import "time"

// Stock cantidad de un producto en una tienda. Una fila por (producto, tienda).
// Quantity nunca es negativa; MinThreshold es informativo (alertas).
type Stock struct {
	ProductID    string
	StoreID      string
	Quantity     int
	MinThreshold int
	UpdatedAt    time.Time
}
