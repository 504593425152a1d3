package dto

import "github.com/shopspring/decimal"

// ReportRowDTO fila del reporte: balance no nulo con nombres actuales del registro.
type ReportRowDTO struct {
	ProductID    string          `json:"product_id"`
	ProductName  string          `json:"product_name"`
	LocationID   string          `json:"location_id"`
	LocationName string          `json:"location_name"`
	Quantity     decimal.Decimal `json:"qty"`
}
