// Package report genera los archivos de reporte de proyectos.
//
// Layout del PDF (A4):
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  [MARCA DE AGUA si la cuenta está en trial]                 │
//	│  HEADER: Firma + NIT         │  Código proyecto + Fecha     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  PROYECTO: nombre, cliente, estado, inicio, presupuesto     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  EQUIPO: Nombre | Cargo | Email | Salario mensual           │
//	│  TOTAL costo mensual del equipo                             │
//	│  [MARCA DE AGUA]                                            │
//	└─────────────────────────────────────────────────────────────┘
package report

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/tauntify/ASPMS-PRO-sub002/internal/application/export"
	"github.com/tauntify/ASPMS-PRO-sub002/internal/domain/entity"
	"github.com/tauntify/ASPMS-PRO-sub002/pkg/money"
)

var (
	colorPrimary   = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray      = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWatermark = &props.Color{Red: 200, Green: 60, Blue: 60}
)

var _ export.PDFRenderer = (*PDFRenderer)(nil)

// PDFRenderer implementa export.PDFRenderer con Maroto v2.
type PDFRenderer struct {
	money *money.Formatter
}

// NewPDFRenderer construye el renderer; los montos se formatean con formatter.
func NewPDFRenderer(formatter *money.Formatter) *PDFRenderer {
	return &PDFRenderer{money: formatter}
}

// RenderProjectPDF genera el PDF y devuelve sus bytes.
func (g *PDFRenderer) RenderProjectPDF(_ context.Context, data export.ReportData) ([]byte, error) {
	if data.Project == nil || data.Company == nil {
		return nil, fmt.Errorf("pdf: faltan proyecto o empresa")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Reporte de proyecto "+data.Project.Code, true).
		WithAuthor(data.Company.Name, true).
		Build()

	m := maroto.New(cfg)

	if data.Watermark != "" {
		m.AddRows(watermarkRow(data.Watermark))
	}
	m.AddRows(headerRow(data))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(g.projectRows(data.Project)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(teamHeaderRow())
	m.AddRows(g.teamRows(data.Team)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(g.teamTotalRow(data.Team))

	if data.Watermark != "" {
		m.AddRows(line.NewRow(3))
		m.AddRows(watermarkRow(data.Watermark))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

func watermarkRow(label string) core.Row {
	return row.New(12).Add(col.New(12).Add(
		text.New(label, props.Text{
			Style: fontstyle.BoldItalic, Size: 14, Align: align.Center,
			Color: colorWatermark, Top: 2,
		}),
	))
}

func headerRow(data export.ReportData) core.Row {
	taxID := ""
	if data.Company.TaxID != "" {
		taxID = "NIT: " + data.Company.TaxID
	}
	return row.New(18).Add(
		col.New(7).Add(
			text.New(data.Company.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(taxID, props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(5).Add(
			text.New("REPORTE DE PROYECTO", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(data.Project.Code, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Generado: "+data.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func (g *PDFRenderer) projectRows(p *entity.Project) []core.Row {
	start := "—"
	if p.StartDate != nil {
		start = p.StartDate.Format("02/01/2006")
	}
	field := func(label, value string) core.Row {
		return row.New(6).Add(
			col.New(3).Add(text.New(label, props.Text{Style: fontstyle.Bold, Size: 8, Top: 1})),
			col.New(9).Add(text.New(value, props.Text{Size: 8, Top: 1})),
		)
	}
	return []core.Row{
		row.New(8).Add(col.New(12).Add(text.New(p.Name, props.Text{
			Style: fontstyle.Bold, Size: 11, Top: 1,
		}))),
		field("Cliente:", nonEmpty(p.ClientName, "—")),
		field("Estado:", statusLabel(p.Status)),
		field("Inicio:", start),
		field("Presupuesto:", g.money.Format(p.Budget)),
	}
}

func teamHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Nombre", 4, align.Left),
		h("Cargo", 3, align.Left),
		h("Email", 3, align.Left),
		h("Salario mensual", 2, align.Right),
	)
}

func (g *PDFRenderer) teamRows(team []*entity.Employee) []core.Row {
	if len(team) == 0 {
		return []core.Row{row.New(7).Add(col.New(12).Add(
			text.New("Sin empleados registrados.", props.Text{Size: 8, Color: colorGray, Top: 1, Left: 1}),
		))}
	}
	rows := make([]core.Row, 0, len(team))
	for _, e := range team {
		rows = append(rows, row.New(7).Add(
			col.New(4).Add(text.New(e.Name, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(3).Add(text.New(nonEmpty(e.Position, "—"), props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(3).Add(text.New(nonEmpty(e.Email, "—"), props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(g.money.Format(e.MonthlySalary), props.Text{
				Size: 8, Align: align.Right, Top: 1, Right: 1,
			})),
		))
	}
	return rows
}

func (g *PDFRenderer) teamTotalRow(team []*entity.Employee) core.Row {
	return row.New(10).Add(
		col.New(6),
		col.New(4).Add(text.New("Costo mensual del equipo:", props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 2, Top: 2,
		})),
		col.New(2).Add(text.New(g.money.Format(teamCost(team)), props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 1, Top: 2,
		})),
	)
}

func teamCost(team []*entity.Employee) decimal.Decimal {
	total := decimal.Zero
	for _, e := range team {
		total = total.Add(e.MonthlySalary)
	}
	return total
}

func statusLabel(s string) string {
	switch s {
	case entity.ProjectPlanning:
		return "En planeación"
	case entity.ProjectInProgress:
		return "En ejecución"
	case entity.ProjectCompleted:
		return "Terminado"
	default:
		return s
	}
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
