package v1

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/PascmdeoMvd/Plataforma/internal/model"
	"github.com/PascmdeoMvd/Plataforma/internal/parser"
)

// DatasetResponse 上传结果
type DatasetResponse struct {
	Dataset *model.Dataset `json:"dataset"`
	Rows    int            `json:"rows"`
}

// UploadDataset 上传报名表（csv/xlsx/xls），替换当前数据集
// POST /api/dataset
func (h *Handler) UploadDataset(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("file exceeds %d bytes", h.maxUpload)})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "未找到上传文件"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取上传文件失败"})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取上传文件失败"})
		return
	}

	ctx := c.Request.Context()
	sum := sha256.Sum256(data)
	logID := h.beginUpload(c, fileHeader.Filename, int64(len(data)), hex.EncodeToString(sum[:]))

	format := string(parser.DetectFormat(data, fileHeader.Filename))
	_, ds, err := h.session.LoadDataset(bytes.NewReader(data), fileHeader.Filename)
	if err != nil {
		datasetUploads.WithLabelValues(format, "failed").Inc()
		if logID > 0 {
			if logErr := h.uploads.FailImportLog(ctx, logID, err.Error()); logErr != nil {
				h.log.WithError(logErr).Warn("failed to update import log")
			}
		}
		h.fail(c, err)
		return
	}

	datasetUploads.WithLabelValues(ds.Format, "completed").Inc()
	if logID > 0 {
		if logErr := h.uploads.CompleteImportLog(ctx, logID, ds.ID, ds.Format, ds.Rows); logErr != nil {
			h.log.WithError(logErr).Warn("failed to update import log")
		}
	}

	c.JSON(http.StatusOK, DatasetResponse{Dataset: ds, Rows: ds.Rows})
}

// beginUpload 写入上传日志；没有日志存储或写入失败时返回 0
func (h *Handler) beginUpload(c *gin.Context, filename string, size int64, hash string) int64 {
	if h.uploads == nil {
		return 0
	}
	id, err := h.uploads.CreateImportLog(c.Request.Context(), filename, size, hash)
	if err != nil {
		h.log.WithError(err).WithFields(logrus.Fields{"file": filename}).Warn("failed to create import log")
		return 0
	}
	return id
}

// ListUploads 最近的上传记录
// GET /api/dataset/history?limit=20
func (h *Handler) ListUploads(c *gin.Context) {
	if h.uploads == nil {
		c.JSON(http.StatusOK, gin.H{"items": []interface{}{}})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	items, err := h.uploads.ListImportLogs(c.Request.Context(), limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// GetFacets 数据集中观测到的部门与兴趣
// GET /api/facets
func (h *Handler) GetFacets(c *gin.Context) {
	c.JSON(http.StatusOK, h.session.Facets())
}
