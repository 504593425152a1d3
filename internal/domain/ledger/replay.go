// Package ledger contiene la lógica pura de derivación de balances.
// Replay es el oráculo de corrección: la tabla materializada de balances
// debe coincidir siempre con el resultado de plegar todos los movimientos.
package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// BalanceKey identifica un par (producto, ubicación).
type BalanceKey struct {
	ProductID  string
	LocationID string
}

// Replay pliega los movimientos y devuelve el balance neto por (producto, ubicación):
// +qty en la ubicación destino, -qty en la ubicación origen. Los pares que quedan en
// cero se omiten del resultado.
func Replay(movements []*entity.Movement) map[BalanceKey]decimal.Decimal {
	balances := make(map[BalanceKey]decimal.Decimal)
	for _, m := range movements {
		if m.ToLocation != nil {
			k := BalanceKey{ProductID: m.ProductID, LocationID: *m.ToLocation}
			balances[k] = balances[k].Add(m.Quantity)
		}
		if m.FromLocation != nil {
			k := BalanceKey{ProductID: m.ProductID, LocationID: *m.FromLocation}
			balances[k] = balances[k].Sub(m.Quantity)
		}
	}
	for k, q := range balances {
		if q.IsZero() {
			delete(balances, k)
		}
	}
	return balances
}

// ProductTotal suma los balances de un producto en todas las ubicaciones.
// Para cualquier secuencia válida equivale a entradas externas menos salidas externas:
// las transferencias internas son neutras a nivel de producto.
func ProductTotal(balances map[BalanceKey]decimal.Decimal, productID string) decimal.Decimal {
	total := decimal.Zero
	for k, q := range balances {
		if k.ProductID == productID {
			total = total.Add(q)
		}
	}
	return total
}
