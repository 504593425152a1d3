package report

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// PDFGenerator renderiza las filas del reporte como documento PDF.
type PDFGenerator interface {
	GenerateReportPDF(ctx context.Context, rows []repository.ReportRow, generatedAt string) ([]byte, error)
}
