package dto

import "time"

// CreateStoreRequest body para POST /api/stores.
type CreateStoreRequest struct {
	Code    string `json:"code" validate:"required,max=20"`
	Name    string `json:"name" validate:"required,max=120"`
	Address string `json:"address" validate:"max=255"`
}

// StoreResponse tienda en respuestas.
type StoreResponse struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}
