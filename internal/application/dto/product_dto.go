package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto (el cliente asigna el ID).
// Si LocationID viene y TotalQuantity > 0, el alta genera el movimiento semilla.
type CreateProductRequest struct {
	ID            string          `json:"product_id" validate:"required,min=1,max=100"`
	Name          string          `json:"name" validate:"required,min=1,max=200"`
	Description   string          `json:"description"`
	TotalQuantity decimal.Decimal `json:"total_quantity"`
	LocationID    *string         `json:"location_id,omitempty"`
}

// UpdateProductRequest entrada para actualizar un producto. Nunca re-genera la semilla.
type UpdateProductRequest struct {
	Name          *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Description   *string          `json:"description"`
	TotalQuantity *decimal.Decimal `json:"total_quantity,omitempty"`
	LocationID    *string          `json:"location_id,omitempty"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID            string          `json:"product_id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	TotalQuantity decimal.Decimal `json:"total_quantity"`
	LocationID    *string         `json:"location_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// ProductBalanceDTO balance actual de un producto en una ubicación.
type ProductBalanceDTO struct {
	LocationID string          `json:"location_id"`
	Quantity   decimal.Decimal `json:"qty"`
	UpdatedAt  time.Time       `json:"updated_at"`
}
