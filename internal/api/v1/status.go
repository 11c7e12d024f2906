package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/PascmdeoMvd/Plataforma/internal/model"
)

// StatusResponse 系统状态响应
type StatusResponse struct {
	Initialized   bool           `json:"initialized"`   // 是否已上传数据集
	Dataset       *model.Dataset `json:"dataset"`       // 当前数据集
	Assignments   int            `json:"assignments"`   // 已分配人数
	Contacts      int            `json:"contacts"`      // 已记录联系日期人数
	ThresholdDays int            `json:"thresholdDays"` // 超期阈值
	AlertStatus   string         `json:"alertStatus"`   // ok / attention
	Backend       string         `json:"backend,omitempty"`
}

// GetStatus 获取系统状态
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	ps := h.session.State()
	ds, ok := h.session.Dataset()
	res := h.session.Alerts(time.Time{})

	c.JSON(http.StatusOK, StatusResponse{
		Initialized:   ok,
		Dataset:       ds,
		Assignments:   ps.Assignments.Len(),
		Contacts:      ps.Contacts.Len(),
		ThresholdDays: h.session.ThresholdDays(),
		AlertStatus:   res.Status(),
		Backend:       h.backend,
	})
}
