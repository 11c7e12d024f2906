package v1

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/PascmdeoMvd/Plataforma/internal/service/export"
)

// DownloadState 下载面板状态 JSON
// GET /api/state
func (h *Handler) DownloadState(c *gin.Context) {
	doc, err := h.session.ExportState()
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.StateFileName))
	c.Data(http.StatusOK, contentTypeJSON, doc)
}

// ImportState 导入面板状态：multipart 的 file 字段或原始 JSON 请求体
// 导入失败时原状态不变
// POST /api/state
func (h *Handler) ImportState(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)

	doc, err := readStateDocument(c)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("file exceeds %d bytes", h.maxUpload)})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ch, err := h.session.ImportState(doc)
	if err != nil {
		stateImports.WithLabelValues("failed").Inc()
		h.fail(c, err)
		return
	}
	stateImports.WithLabelValues("completed").Inc()
	c.JSON(http.StatusOK, ch)
}

func readStateDocument(c *gin.Context) ([]byte, error) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			return nil, fmt.Errorf("未找到上传文件: %w", err)
		}
		f, err := fileHeader.Open()
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return io.ReadAll(f)
	}
	return io.ReadAll(c.Request.Body)
}

// SaveState 立即持久化
// POST /api/state/save
func (h *Handler) SaveState(c *gin.Context) {
	if err := h.session.SaveNow(c.Request.Context()); err != nil {
		h.fail(c, err)
		return
	}
	ps := h.session.State()
	c.JSON(http.StatusOK, gin.H{
		"saved":       true,
		"assignments": ps.Assignments.Len(),
		"contacts":    ps.Contacts.Len(),
	})
}
