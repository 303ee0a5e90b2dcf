package entity

import "time"

// Store tienda (sede) donde se almacena y se vende inventario.
type Store struct {
	ID        string
	Code      string // único, ej. "CCS-01"
	Name      string
	Address   string
	IsActive  bool
	CreatedAt time.Time
}
