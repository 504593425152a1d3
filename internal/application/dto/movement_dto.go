package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateMovementRequest body para POST /api/movements. from_location y to_location
// en null significan entrada/salida externa; al menos uno debe venir. El kind lo
// deriva el servidor.
type CreateMovementRequest struct {
	ProductID    string          `json:"product_id" validate:"required"`
	FromLocation *string         `json:"from_location,omitempty"`
	ToLocation   *string         `json:"to_location,omitempty"`
	Quantity     decimal.Decimal `json:"qty"`
}

// MovementResponse salida de un movimiento. Seq hace observable el orden de creación;
// los movimientos kind SEED no son editables por convención del sistema (nada lo es:
// no existe endpoint de edición).
type MovementResponse struct {
	ID           string          `json:"movement_id"`
	Seq          int64           `json:"seq"`
	ProductID    string          `json:"product_id"`
	FromLocation *string         `json:"from_location"`
	ToLocation   *string         `json:"to_location"`
	Quantity     decimal.Decimal `json:"qty"`
	Kind         string          `json:"kind"`
	CreatedAt    time.Time       `json:"timestamp"`
}

// MovementListResponse lista paginada de movimientos en orden de creación.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
