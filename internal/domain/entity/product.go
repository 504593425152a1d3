package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto rastreado por el ledger. El ID lo asigna el cliente.
// TotalQuantity es el stock nominal declarado al crear el producto: alimenta el movimiento
// semilla (kind SEED) y no actúa como tope sobre transferencias posteriores. El stock real
// por ubicación vive en Balance.
type Product struct {
	ID            string
	Name          string
	Description   string
	TotalQuantity decimal.Decimal
	LocationID    *string // ubicación inicial (opcional); destino del movimiento semilla
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
