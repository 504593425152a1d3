package report

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// UseCase proyección de solo lectura sobre el agregador de balances: todas las filas
// con balance distinto de cero, unidas a los nombres actuales de producto y ubicación.
// Sin lógica de negocio adicional.
type UseCase struct {
	reportRepo repository.ReportRepository
	pdfGen     PDFGenerator
}

// NewUseCase construye el caso de uso. pdfGen puede ser nil si no se expone el export PDF.
func NewUseCase(reportRepo repository.ReportRepository, pdfGen PDFGenerator) *UseCase {
	return &UseCase{reportRepo: reportRepo, pdfGen: pdfGen}
}

// Rows devuelve las filas del reporte. Nunca incluye filas con qty = 0: un traslado
// que vacía exactamente una ubicación hace desaparecer esa fila del reporte.
func (uc *UseCase) Rows() ([]dto.ReportRowDTO, error) {
	rows, err := uc.reportRepo.NonZeroBalances()
	if err != nil {
		return nil, err
	}
	out := make([]dto.ReportRowDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.ReportRowDTO{
			ProductID:    r.ProductID,
			ProductName:  r.ProductName,
			LocationID:   r.LocationID,
			LocationName: r.LocationName,
			Quantity:     r.Quantity,
		})
	}
	return out, nil
}

// PDF genera el reporte como documento PDF.
func (uc *UseCase) PDF(ctx context.Context) ([]byte, error) {
	rows, err := uc.reportRepo.NonZeroBalances()
	if err != nil {
		return nil, err
	}
	generatedAt := time.Now().Format("02/01/2006 15:04")
	return uc.pdfGen.GenerateReportPDF(ctx, rows, generatedAt)
}
