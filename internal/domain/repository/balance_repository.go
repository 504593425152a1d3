package repository

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// BalanceRepository define el puerto para la tabla materializada de balances.
// Usado dentro de transacciones para garantizar que movimiento y balance se
// escriben como una unidad atómica.
type BalanceRepository interface {
	Get(productID, locationID string) (*entity.Balance, error)
	// GetForUpdate bloquea la fila para update (SELECT FOR UPDATE): serializa
	// débitos concurrentes sobre el mismo par (producto, ubicación).
	GetForUpdate(productID, locationID string) (*entity.Balance, error)
	// ApplyDelta suma delta (con signo) al balance del par, creando la fila si no existe.
	ApplyDelta(productID, locationID string, delta decimal.Decimal) error
	ListByProduct(productID string) ([]*entity.Balance, error)
	// DeleteByProduct borra los balances de un producto (cascada al borrarlo).
	DeleteByProduct(productID string) error
}
