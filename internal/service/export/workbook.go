package export

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/PascmdeoMvd/Plataforma/internal/ledger"
	"github.com/PascmdeoMvd/Plataforma/internal/model"
	"github.com/PascmdeoMvd/Plataforma/internal/service/aggregate"
	"github.com/PascmdeoMvd/Plataforma/internal/service/alert"
	"github.com/PascmdeoMvd/Plataforma/internal/service/session"
)

// 工作簿的工作表名
const (
	SheetPeople      = "Personas"
	SheetAssignments = "Asignaciones"
	SheetAlerts      = "Alertas"
	SheetMetrics     = "Métricas"
)

// WorkbookInput 工作簿的全部数据来源
type WorkbookInput struct {
	Rows        []session.Row
	Assignments []ledger.Entry
	Alerts      alert.Result
	Charts      aggregate.Charts
}

// Workbook 导出完整的面板工作簿
// Personas 表的板块列按板块颜色填充
func Workbook(in WorkbookInput) (*excelize.File, error) {
	return buildWorkbook(excelize.NewFile(), in)
}

// buildWorkbook 在 f 上写入全部工作表；出错时关闭 f
func buildWorkbook(f *excelize.File, in WorkbookInput) (_ *excelize.File, err error) {
	defer func() {
		if err != nil {
			_ = f.Close()
		}
	}()

	if err := f.SetSheetName("Sheet1", SheetPeople); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	for _, name := range []string{SheetAssignments, SheetAlerts, SheetMetrics} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	// 人员表
	people := [][]interface{}{toCells(FilteredHeader())}
	for _, r := range in.Rows {
		people = append(people, toCells(filteredRow(r)))
	}
	if err := writeSheet(f, SheetPeople, people, headerStyle); err != nil {
		return nil, err
	}
	if err := fillSectorColors(f, in.Rows); err != nil {
		return nil, err
	}

	// 分配表
	assignments := [][]interface{}{{model.ColFullName, model.ColSector, model.ColSectorLabel}}
	for _, e := range in.Assignments {
		assignments = append(assignments, []interface{}{e.PersonID, e.Value, model.SectorCode(e.Value).Label()})
	}
	if err := writeSheet(f, SheetAssignments, assignments, headerStyle); err != nil {
		return nil, err
	}

	// 提醒表
	alerts := [][]interface{}{{model.ColFullName, model.ColSector, model.ColAlertKind, model.ColAlertDays}}
	for _, r := range in.Alerts.Rows() {
		alerts = append(alerts, []interface{}{r.PersonID, r.Sector, r.Kind, r.Days})
	}
	if err := writeSheet(f, SheetAlerts, alerts, headerStyle); err != nil {
		return nil, err
	}

	// 指标表
	metrics := [][]interface{}{{"métrica", "clave", "valor"}}
	for _, c := range in.Charts.BySector {
		metrics = append(metrics, []interface{}{"sector", c.Label, c.Count})
	}
	for _, dep := range sortedKeys(in.Charts.ByDepartment) {
		metrics = append(metrics, []interface{}{"departamento", dep, in.Charts.ByDepartment[dep]})
	}
	metrics = append(metrics,
		[]interface{}{"alertas", "sin_fecha", len(in.Alerts.Missing)},
		[]interface{}{"alertas", "vencidas", len(in.Alerts.Overdue)},
		[]interface{}{"alertas", "al_dia", len(in.Alerts.UpToDate)},
	)
	if err := writeSheet(f, SheetMetrics, metrics, headerStyle); err != nil {
		return nil, err
	}

	// 设置列宽
	_ = f.SetColWidth(SheetPeople, "A", "A", 30)
	_ = f.SetColWidth(SheetPeople, "B", "K", 18)
	_ = f.SetColWidth(SheetAssignments, "A", "A", 30)
	_ = f.SetColWidth(SheetAssignments, "C", "C", 20)
	_ = f.SetColWidth(SheetAlerts, "A", "A", 30)
	_ = f.SetColWidth(SheetAlerts, "C", "C", 22)
	_ = f.SetColWidth(SheetMetrics, "B", "B", 24)

	return f, nil
}

func writeSheet(f *excelize.File, sheet string, rows [][]interface{}, headerStyle int) error {
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheet, err)
	}
	return nil
}

// fillSectorColors 板块列（基础列之后第一列）按板块颜色着色
func fillSectorColors(f *excelize.File, rows []session.Row) error {
	styles := make(map[model.SectorCode]int)
	col := len(model.RequiredColumns) + 1
	for i, r := range rows {
		sector, ok := model.LookupSector(r.Sector)
		if !ok {
			continue
		}
		style, ok := styles[sector.Code]
		if !ok {
			var err error
			style, err = f.NewStyle(&excelize.Style{
				Fill: excelize.Fill{Type: "pattern", Color: []string{sector.Color}, Pattern: 1},
			})
			if err != nil {
				return fmt.Errorf("failed to create sector style: %w", err)
			}
			styles[sector.Code] = style
		}
		cell, _ := excelize.CoordinatesToCellName(col, i+2)
		if err := f.SetCellStyle(SheetPeople, cell, cell, style); err != nil {
			return fmt.Errorf("failed to fill sector cell: %w", err)
		}
	}
	return nil
}

func toCells(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
