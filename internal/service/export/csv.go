// Package export 派生表格的下载格式（CSV / XLSX）
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/PascmdeoMvd/Plataforma/internal/ledger"
	"github.com/PascmdeoMvd/Plataforma/internal/model"
	"github.com/PascmdeoMvd/Plataforma/internal/service/alert"
	"github.com/PascmdeoMvd/Plataforma/internal/service/session"
)

// 下载文件名
const (
	FilteredFileName    = "personas_filtradas.csv"
	AssignmentsFileName = "asignaciones_por_sector.csv"
	AlertsFileName      = "alertas_comunicacion.csv"
	StateFileName       = "progreso_panel.json"
	WorkbookFileName    = "panel_coordinacion.xlsx"
)

// FilteredHeader 过滤视图导出列：基础列 + 台账列
func FilteredHeader() []string {
	header := make([]string, 0, len(model.RequiredColumns)+3)
	header = append(header, model.RequiredColumns...)
	return append(header, model.ColSector, model.ColSectorLabel, model.ColLastContact)
}

func filteredRow(r session.Row) []string {
	return append(r.Values(), string(r.Sector), r.SectorLabel, r.LastContact)
}

// FilteredCSV 写出过滤后的人员视图
func FilteredCSV(w io.Writer, rows []session.Row) error {
	records := make([][]string, 0, len(rows)+1)
	records = append(records, FilteredHeader())
	for _, r := range rows {
		records = append(records, filteredRow(r))
	}
	return writeAll(w, records)
}

// AssignmentsCSV 写出分配台账（nombre_completo, sector）
func AssignmentsCSV(w io.Writer, entries []ledger.Entry) error {
	records := make([][]string, 0, len(entries)+1)
	records = append(records, []string{model.ColFullName, model.ColSector})
	for _, e := range entries {
		records = append(records, []string{e.PersonID, e.Value})
	}
	return writeAll(w, records)
}

// AlertsCSV 写出沟通提醒
func AlertsCSV(w io.Writer, rows []alert.Row) error {
	records := make([][]string, 0, len(rows)+1)
	records = append(records, []string{model.ColFullName, model.ColSector, model.ColAlertKind, model.ColAlertDays})
	for _, r := range rows {
		records = append(records, []string{r.PersonID, r.Sector, r.Kind, r.Days})
	}
	return writeAll(w, records)
}

func writeAll(w io.Writer, records [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}
