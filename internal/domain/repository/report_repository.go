package repository

import "github.com/shopspring/decimal"

// ReportRow una fila del reporte de stock: balance no nulo de un producto en una
// ubicación, con los nombres actuales de los registros (no los del momento del movimiento).
type ReportRow struct {
	ProductID    string
	ProductName  string
	LocationID   string
	LocationName string
	Quantity     decimal.Decimal
}

// ReportRepository define el puerto de lectura del reporte de balances.
type ReportRepository interface {
	// NonZeroBalances devuelve todas las filas con balance distinto de cero,
	// ordenadas por producto y ubicación.
	NonZeroBalances() ([]ReportRow, error)
}
