package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/application/report"
)

// ReportHandler maneja las peticiones HTTP del reporte de stock (protegido).
type ReportHandler struct {
	uc *report.UseCase
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *report.UseCase) *ReportHandler {
	return &ReportHandler{uc: uc}
}

// Get godoc
// @Summary      Reporte de stock
// @Description  Balances distintos de cero por producto y ubicación, con nombres
//               actuales del registro. Nunca incluye filas con qty = 0.
// @Tags         report
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.ReportRowDTO
// @Router       /api/report [get]
func (h *ReportHandler) Get(c *fiber.Ctx) error {
	rows, err := h.uc.Rows()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(rows)
}

// GetPDF godoc
// @Summary      Reporte de stock en PDF
// @Tags         report
// @Security     Bearer
// @Produce      application/pdf
// @Success      200  {file}  binary
// @Router       /api/report/pdf [get]
func (h *ReportHandler) GetPDF(c *fiber.Ctx) error {
	pdfBytes, err := h.uc.PDF(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	filename := "reporte-stock-" + time.Now().Format("20060102") + ".pdf"
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(pdfBytes)
}
