package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/PascmdeoMvd/Plataforma/internal/model"
	"github.com/PascmdeoMvd/Plataforma/internal/service/session"
)

// AssignmentRequest 分配请求
type AssignmentRequest struct {
	Sector string `json:"sector" binding:"required"`
}

// GridRequest 表格批量编辑
type GridRequest struct {
	Edits []session.GridEdit `json:"edits" binding:"required,dive"`
}

// ListSectors 板块目录
// GET /api/sectors
func (h *Handler) ListSectors(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"sectors":    model.Sectors(),
		"unassigned": model.UnassignedLabel,
	})
}

// ListAssignments 各板块成员（包含空板块）
// GET /api/assignments
func (h *Handler) ListAssignments(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"groups":  h.session.Groups(),
		"entries": h.session.Assignments(),
	})
}

// SetAssignment 设置某人的板块
// PUT /api/assignments/:name
func (h *Handler) SetAssignment(c *gin.Context) {
	var req AssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求参数: " + err.Error()})
		return
	}

	ch, err := h.session.ApplyAssignment(c.Param("name"), model.SectorCode(req.Sector))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ch)
}

// ApplyGrid 表格编辑批量提交；任一行非法则整体拒绝
// POST /api/grid
func (h *Handler) ApplyGrid(c *gin.Context) {
	var req GridRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求参数: " + err.Error()})
		return
	}

	ch, err := h.session.ApplyGridEdits(req.Edits)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ch)
}
