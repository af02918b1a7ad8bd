package report

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/tauntify/ASPMS-PRO-sub002/internal/application/export"
)

const (
	sheetProject = "Proyecto"
	sheetTeam    = "Equipo"
)

var _ export.XLSXRenderer = (*XLSXRenderer)(nil)

// XLSXRenderer implementa export.XLSXRenderer con excelize.
// Los montos van como números para que la planilla pueda operar con ellos.
type XLSXRenderer struct{}

// NewXLSXRenderer construye el renderer.
func NewXLSXRenderer() *XLSXRenderer { return &XLSXRenderer{} }

// RenderProjectXLSX arma un libro con dos hojas: ficha del proyecto y equipo.
func (g *XLSXRenderer) RenderProjectXLSX(_ context.Context, data export.ReportData) ([]byte, error) {
	if data.Project == nil || data.Company == nil {
		return nil, fmt.Errorf("xlsx: faltan proyecto o empresa")
	}
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetProject); err != nil {
		return nil, fmt.Errorf("xlsx: renombrar hoja: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("xlsx: estilo: %w", err)
	}

	p := data.Project
	start := ""
	if p.StartDate != nil {
		start = p.StartDate.Format("2006-01-02")
	}
	fields := [][2]any{
		{"Firma", data.Company.Name},
		{"Código", p.Code},
		{"Proyecto", p.Name},
		{"Cliente", p.ClientName},
		{"Estado", statusLabel(p.Status)},
		{"Inicio", start},
		{"Presupuesto", p.Budget.InexactFloat64()},
		{"Generado", data.GeneratedAt.Format("2006-01-02 15:04")},
	}
	for i, kv := range fields {
		r := i + 1
		if err := f.SetCellValue(sheetProject, cell(1, r), kv[0]); err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheetProject, cell(2, r), kv[1]); err != nil {
			return nil, err
		}
	}
	if err := f.SetCellStyle(sheetProject, "A1", cell(1, len(fields)), bold); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(sheetProject, "A", "A", 16); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(sheetProject, "B", "B", 40); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet(sheetTeam); err != nil {
		return nil, fmt.Errorf("xlsx: hoja equipo: %w", err)
	}
	headers := []string{"Nombre", "Cargo", "Email", "Salario mensual"}
	for i, h := range headers {
		if err := f.SetCellValue(sheetTeam, cell(i+1, 1), h); err != nil {
			return nil, err
		}
	}
	if err := f.SetCellStyle(sheetTeam, "A1", cell(len(headers), 1), bold); err != nil {
		return nil, err
	}
	for i, e := range data.Team {
		r := i + 2
		values := []any{e.Name, e.Position, e.Email, e.MonthlySalary.InexactFloat64()}
		for c, v := range values {
			if err := f.SetCellValue(sheetTeam, cell(c+1, r), v); err != nil {
				return nil, err
			}
		}
	}
	totalRow := len(data.Team) + 2
	if err := f.SetCellValue(sheetTeam, cell(3, totalRow), "Total"); err != nil {
		return nil, err
	}
	if err := f.SetCellValue(sheetTeam, cell(4, totalRow), teamCost(data.Team).InexactFloat64()); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheetTeam, cell(3, totalRow), cell(4, totalRow), bold); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(sheetTeam, "A", "D", 24); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx: escribir libro: %w", err)
	}
	return buf.Bytes(), nil
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
