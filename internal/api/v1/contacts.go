package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ContactRequest 联系日期登记
type ContactRequest struct {
	Date string `json:"date"`
}

// ListContactCandidates 可登记联系日期的人员（已分配者）
// GET /api/contacts/candidates
func (h *Handler) ListContactCandidates(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"names": h.session.AssignedPeople()})
}

// SetContact 记录最近联系日期，日期字符串原样保存
// PUT /api/contacts/:name
func (h *Handler) SetContact(c *gin.Context) {
	var req ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求参数: " + err.Error()})
		return
	}

	ch, err := h.session.RecordContact(c.Param("name"), req.Date)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ch)
}
