package v1

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/PascmdeoMvd/Plataforma/internal/service/export"
)

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeJSON = "application/json; charset=utf-8"
)

func attachment(c *gin.Context, filename, contentType string) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
}

// ExportPeople 下载过滤后的人员表
// POST /api/export/people
func (h *Handler) ExportPeople(c *gin.Context) {
	if err := h.session.RequireDataset(); err != nil {
		h.fail(c, err)
		return
	}
	sel, ok := bindSelection(c)
	if !ok {
		return
	}
	rows := h.session.View(sel)

	attachment(c, export.FilteredFileName, contentTypeCSV)
	if err := export.FilteredCSV(c.Writer, rows); err != nil {
		_ = c.Error(err)
		h.log.WithError(err).Error("failed to stream filtered csv")
	}
}

// ExportAssignments 下载分配台账
// GET /api/export/assignments
func (h *Handler) ExportAssignments(c *gin.Context) {
	entries := h.session.Assignments()

	attachment(c, export.AssignmentsFileName, contentTypeCSV)
	if err := export.AssignmentsCSV(c.Writer, entries); err != nil {
		_ = c.Error(err)
		h.log.WithError(err).Error("failed to stream assignments csv")
	}
}

// ExportAlerts 下载沟通提醒
// GET /api/export/alerts?today=2024-03-01
func (h *Handler) ExportAlerts(c *gin.Context) {
	today, ok := parseToday(c)
	if !ok {
		return
	}
	rows := h.session.Alerts(today).Rows()

	attachment(c, export.AlertsFileName, contentTypeCSV)
	if err := export.AlertsCSV(c.Writer, rows); err != nil {
		_ = c.Error(err)
		h.log.WithError(err).Error("failed to stream alerts csv")
	}
}

// ExportWorkbook 下载完整工作簿（人员/分配/提醒/指标）
// GET /api/export/workbook?departments=...&interests_none=1
func (h *Handler) ExportWorkbook(c *gin.Context) {
	if err := h.session.RequireDataset(); err != nil {
		h.fail(c, err)
		return
	}
	today, ok := parseToday(c)
	if !ok {
		return
	}
	if today.IsZero() {
		today = time.Now()
	}

	sel := querySelection(c)
	f, err := export.Workbook(export.WorkbookInput{
		Rows:        h.session.View(sel),
		Assignments: h.session.Assignments(),
		Alerts:      h.session.Alerts(today),
		Charts:      h.session.Charts(sel),
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	defer f.Close()

	attachment(c, export.WorkbookFileName, contentTypeXLSX)
	if err := f.Write(c.Writer); err != nil {
		_ = c.Error(err)
		h.log.WithError(err).Error("failed to stream workbook")
	}
}
