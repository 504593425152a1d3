package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Balance representa el stock neto actual de un producto en una ubicación
// (tabla materializada, mantenida con deltas en la misma transacción que el movimiento).
type Balance struct {
	ProductID  string
	LocationID string
	Quantity   decimal.Decimal
	UpdatedAt  time.Time
}
