package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/PascmdeoMvd/Plataforma/internal/service/alert"
)

// AlertsResponse 沟通提醒
type AlertsResponse struct {
	alert.Result
	Status string `json:"status"`
}

// GetCharts 图表计数
// GET /api/charts?departments=...&interests=...&departments_none=1
func (h *Handler) GetCharts(c *gin.Context) {
	c.JSON(http.StatusOK, h.session.Charts(querySelection(c)))
}

// parseToday 读取 today 参数（YYYY-MM-DD），缺省为当天
func parseToday(c *gin.Context) (time.Time, bool) {
	raw := c.Query("today")
	if raw == "" {
		return time.Time{}, true
	}
	today, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的日期: " + raw})
		return time.Time{}, false
	}
	return today, true
}

// GetAlerts 缺少日期与超期的已分配人员
// GET /api/alerts?today=2024-03-01
func (h *Handler) GetAlerts(c *gin.Context) {
	today, ok := parseToday(c)
	if !ok {
		return
	}
	res := h.session.Alerts(today)
	c.JSON(http.StatusOK, AlertsResponse{Result: res, Status: res.Status()})
}
