package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

// ReportRepo proyección de lectura del reporte de stock sobre PostgreSQL.
type ReportRepo struct {
	q Querier
}

// NewReportRepository construye el adaptador de lectura.
func NewReportRepository(q Querier) *ReportRepo {
	return &ReportRepo{q: q}
}

// NonZeroBalances devuelve los balances distintos de cero unidos a los nombres
// actuales de producto y ubicación, ordenados por producto y ubicación.
func (r *ReportRepo) NonZeroBalances() ([]repository.ReportRow, error) {
	query := `
		SELECT b.product_id, p.name, b.location_id, l.name, b.quantity
		FROM balances b
		JOIN products p ON p.id = b.product_id
		JOIN locations l ON l.id = b.location_id
		WHERE b.quantity <> 0
		ORDER BY b.product_id, b.location_id`
	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("report balances: %w", err)
	}
	defer rows.Close()
	var list []repository.ReportRow
	for rows.Next() {
		var row repository.ReportRow
		if err := rows.Scan(&row.ProductID, &row.ProductName, &row.LocationID, &row.LocationName, &row.Quantity); err != nil {
			return nil, fmt.Errorf("scan report row: %w", err)
		}
		list = append(list, row)
	}
	return list, rows.Err()
}
