package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/tauntify/ASPMS-PRO-sub002/internal/application/export"
)

// ExportHandler descargas de reportes de proyecto.
type ExportHandler struct {
	uc *export.UseCase
}

// NewExportHandler construye el handler.
func NewExportHandler(uc *export.UseCase) *ExportHandler {
	return &ExportHandler{uc: uc}
}

// Report godoc
// @Summary      Reporte del proyecto en PDF o Excel (solo suscripciones activas)
// @Tags         export
// @Produce      application/pdf
// @Param        id      path   string  true   "ID del proyecto"
// @Param        format  query  string  false  "pdf | xlsx"
// @Success      200
// @Failure      402  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/projects/{id}/report [get]
func (h *ExportHandler) Report(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		return writeError(c, err)
	}
	rep, err := h.uc.ProjectReport(c.Context(), companyID, c.Params("id"), format)
	if err != nil {
		return writeError(c, err)
	}
	return sendReport(c, rep)
}

// Preview godoc
// @Summary      Vista previa PDF del proyecto (con marca de agua en trial)
// @Tags         export
// @Produce      application/pdf
// @Param        id  path  string  true  "ID del proyecto"
// @Success      200
// @Failure      402  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/projects/{id}/preview [get]
func (h *ExportHandler) Preview(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	rep, err := h.uc.ProjectPreview(c.Context(), companyID, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return sendReport(c, rep)
}

func sendReport(c *fiber.Ctx, rep *export.Report) error {
	c.Set(fiber.HeaderContentType, rep.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, rep.Filename))
	return c.Send(rep.Content)
}
