// Package export reportes descargables de proyectos, condicionados por el plan.
package export

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tauntify/ASPMS-PRO-sub002/internal/domain"
	"github.com/tauntify/ASPMS-PRO-sub002/internal/domain/entity"
	"github.com/tauntify/ASPMS-PRO-sub002/internal/domain/repository"
	"github.com/tauntify/ASPMS-PRO-sub002/internal/domain/subscription"
)

// Format formato de salida del reporte.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatXLSX Format = "xlsx"
)

// Content types servidos al descargar.
const (
	ContentTypePDF  = "application/pdf"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// WatermarkText leyenda que se estampa en las salidas de cuentas en trial.
const WatermarkText = "VERSIÓN DE PRUEBA - Ofivio"

// teamLimit tope de empleados listados en el reporte.
const teamLimit = 100

// ReportData datos que necesita un renderer.
type ReportData struct {
	Company     *entity.Company
	Project     *entity.Project
	Team        []*entity.Employee
	GeneratedAt time.Time
	Watermark   string // vacío = sin marca de agua
}

// PDFRenderer genera el PDF del reporte de proyecto (infra/report con Maroto).
type PDFRenderer interface {
	RenderProjectPDF(ctx context.Context, data ReportData) ([]byte, error)
}

// XLSXRenderer genera la planilla del reporte de proyecto (infra/report con excelize).
type XLSXRenderer interface {
	RenderProjectXLSX(ctx context.Context, data ReportData) ([]byte, error)
}

// Report archivo listo para enviar.
type Report struct {
	Content     []byte
	Filename    string
	ContentType string
}

// UseCase casos de uso de exportación.
type UseCase struct {
	subs      repository.SubscriptionRepository
	companies repository.CompanyRepository
	projects  repository.ProjectRepository
	employees repository.EmployeeRepository
	lifecycle *subscription.Lifecycle
	pdf       PDFRenderer
	xlsx      XLSXRenderer
	now       func() time.Time
	log       zerolog.Logger
}

// NewUseCase construye el caso de uso de exportación.
func NewUseCase(
	subs repository.SubscriptionRepository,
	companies repository.CompanyRepository,
	projects repository.ProjectRepository,
	employees repository.EmployeeRepository,
	lifecycle *subscription.Lifecycle,
	pdf PDFRenderer,
	xlsx XLSXRenderer,
	now func() time.Time,
	log zerolog.Logger,
) *UseCase {
	return &UseCase{
		subs: subs, companies: companies, projects: projects, employees: employees,
		lifecycle: lifecycle, pdf: pdf, xlsx: xlsx, now: now, log: log,
	}
}

// ParseFormat acepta "pdf" (por defecto) y "xlsx"/"excel".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "pdf":
		return FormatPDF, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: formato %q no soportado", domain.ErrInvalidInput, s)
	}
}

// ProjectReport exporta el reporte completo. Solo cuentas activas: si no, domain.ErrExportNotAllowed.
func (uc *UseCase) ProjectReport(ctx context.Context, ownerID, projectID string, format Format) (*Report, error) {
	sub, err := uc.loadSubscription(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	var allowed bool
	switch format {
	case FormatPDF:
		allowed = uc.lifecycle.CanExportPDF(sub)
	case FormatXLSX:
		allowed = uc.lifecycle.CanExportExcel(sub)
	default:
		return nil, fmt.Errorf("%w: formato %q no soportado", domain.ErrInvalidInput, format)
	}
	if !allowed {
		return nil, fmt.Errorf("%w: exportar %s requiere una suscripción activa (estado %s)",
			domain.ErrExportNotAllowed, format, sub.Status)
	}

	data, err := uc.collect(ctx, ownerID, projectID)
	if err != nil {
		return nil, err
	}

	var out *Report
	switch format {
	case FormatPDF:
		content, err := uc.pdf.RenderProjectPDF(ctx, *data)
		if err != nil {
			return nil, err
		}
		out = &Report{Content: content, Filename: filename(data.Project, "pdf"), ContentType: ContentTypePDF}
	case FormatXLSX:
		content, err := uc.xlsx.RenderProjectXLSX(ctx, *data)
		if err != nil {
			return nil, err
		}
		out = &Report{Content: content, Filename: filename(data.Project, "xlsx"), ContentType: ContentTypeXLSX}
	}
	uc.log.Info().Str("owner_id", ownerID).Str("project_id", projectID).Str("format", string(format)).Msg("reporte exportado")
	return out, nil
}

// ProjectPreview PDF de vista previa. Disponible para cualquier cuenta no bloqueada;
// en trial lleva marca de agua.
func (uc *UseCase) ProjectPreview(ctx context.Context, ownerID, projectID string) (*Report, error) {
	sub, err := uc.loadSubscription(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if sub.Status == entity.SubscriptionBlocked {
		return nil, fmt.Errorf("%w: cuenta bloqueada", domain.ErrExportNotAllowed)
	}

	data, err := uc.collect(ctx, ownerID, projectID)
	if err != nil {
		return nil, err
	}
	if uc.lifecycle.NeedsWatermark(sub) {
		data.Watermark = WatermarkText
	}
	content, err := uc.pdf.RenderProjectPDF(ctx, *data)
	if err != nil {
		return nil, err
	}
	return &Report{
		Content:     content,
		Filename:    "preview-" + filename(data.Project, "pdf"),
		ContentType: ContentTypePDF,
	}, nil
}

func (uc *UseCase) loadSubscription(ctx context.Context, ownerID string) (*entity.Subscription, error) {
	sub, err := uc.subs.GetByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if err := subscription.Validate(sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (uc *UseCase) collect(ctx context.Context, ownerID, projectID string) (*ReportData, error) {
	project, err := uc.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.CompanyID != ownerID {
		return nil, domain.ErrNotFound
	}
	company, err := uc.companies.GetByID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("empresa %s del proyecto no existe: %w", ownerID, err)
		}
		return nil, err
	}
	team, err := uc.employees.ListByCompany(ctx, ownerID, teamLimit, 0)
	if err != nil {
		return nil, err
	}
	return &ReportData{
		Company:     company,
		Project:     project,
		Team:        team,
		GeneratedAt: uc.now(),
	}, nil
}

func filename(p *entity.Project, ext string) string {
	code := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, p.Code)
	return fmt.Sprintf("proyecto-%s.%s", code, ext)
}
