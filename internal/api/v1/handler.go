// Package v1 面板 HTTP API
package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/PascmdeoMvd/Plataforma/internal/parser"
	"github.com/PascmdeoMvd/Plataforma/internal/service/session"
	"github.com/PascmdeoMvd/Plataforma/internal/service/state"
	"github.com/PascmdeoMvd/Plataforma/internal/store"
)

// DefaultMaxUploadBytes 上传大小上限默认值
const DefaultMaxUploadBytes int64 = 10 << 20

// UploadLog 上传历史记录（由 SQLite store 实现）
type UploadLog interface {
	CreateImportLog(ctx context.Context, filename string, fileSize int64, fileHash string) (int64, error)
	CompleteImportLog(ctx context.Context, id int64, datasetID, format string, rows int) error
	FailImportLog(ctx context.Context, id int64, message string) error
	ListImportLogs(ctx context.Context, limit int) ([]store.ImportLog, error)
}

// Options 处理器配置
type Options struct {
	Uploads        UploadLog
	MaxUploadBytes int64
	Backend        string
	Logger         logrus.FieldLogger
}

// Handler API 处理器
type Handler struct {
	session   *session.Session
	uploads   UploadLog
	maxUpload int64
	backend   string
	log       logrus.FieldLogger
}

// NewHandler 创建 API 处理器
func NewHandler(sess *session.Session, opts Options) *Handler {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	return &Handler{
		session:   sess,
		uploads:   opts.Uploads,
		maxUpload: opts.MaxUploadBytes,
		backend:   opts.Backend,
		log:       opts.Logger.WithField("component", "api"),
	}
}

// RegisterRoutes 注册 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.Use(Metrics())

	// 系统状态
	router.GET("/status", h.GetStatus)

	// 数据集
	router.POST("/dataset", h.UploadDataset)
	router.GET("/dataset/history", h.ListUploads)
	router.GET("/facets", h.GetFacets)

	// 人员
	router.POST("/people/query", h.QueryPeople)
	router.GET("/people/search", h.SearchPeople)

	// 板块分配
	router.GET("/sectors", h.ListSectors)
	router.GET("/assignments", h.ListAssignments)
	router.PUT("/assignments/:name", h.SetAssignment)
	router.POST("/grid", h.ApplyGrid)

	// 联系记录
	router.GET("/contacts/candidates", h.ListContactCandidates)
	router.PUT("/contacts/:name", h.SetContact)

	// 图表与提醒
	router.GET("/charts", h.GetCharts)
	router.GET("/alerts", h.GetAlerts)

	// 导出
	router.POST("/export/people", h.ExportPeople)
	router.GET("/export/assignments", h.ExportAssignments)
	router.GET("/export/alerts", h.ExportAlerts)
	router.GET("/export/workbook", h.ExportWorkbook)

	// 面板状态
	router.GET("/state", h.DownloadState)
	router.POST("/state", h.ImportState)
	router.POST("/state/save", h.SaveState)
}

// statusFor 用户可修正的错误返回 400，其余 500
func statusFor(err error) int {
	var parseErr *parser.ParseError
	var importErr *state.ImportError
	switch {
	case errors.As(err, &parseErr),
		errors.As(err, &importErr),
		errors.Is(err, session.ErrUnknownSector),
		errors.Is(err, session.ErrEmptyPerson),
		errors.Is(err, session.ErrNoDataset):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) fail(c *gin.Context, err error) {
	status := statusFor(err)
	_ = c.Error(err)
	if status >= http.StatusInternalServerError {
		h.log.WithError(err).WithField("path", c.FullPath()).Error("request failed")
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
