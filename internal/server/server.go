package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	v1 "github.com/PascmdeoMvd/Plataforma/internal/api/v1"
	"github.com/PascmdeoMvd/Plataforma/internal/config"
	"github.com/PascmdeoMvd/Plataforma/internal/logging"
	"github.com/PascmdeoMvd/Plataforma/internal/service/session"
	"github.com/PascmdeoMvd/Plataforma/internal/service/state"
	"github.com/PascmdeoMvd/Plataforma/internal/store"
)

//go:embed all:dist
var staticFiles embed.FS

// Server HTTP服务器
type Server struct {
	router  *gin.Engine
	store   *store.Store
	session *session.Session
	api     *v1.Handler
	log     *logrus.Logger
	httpSrv *http.Server
}

// NewServer 创建服务器：打开存储、恢复面板状态、注册路由
func NewServer(cfg *config.AppConfig, logger *logrus.Logger) (*Server, error) {
	devMode := cfg.Server.DevMode
	if !devMode {
		gin.SetMode(gin.ReleaseMode)
	}

	dataDir, err := config.EnsureDataDir(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	// 初始化 SQLite Store（上传日志始终记录在这里）
	sqliteStore, err := store.New(config.DBPath(dataDir))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	var repo session.Repository = sqliteStore
	if cfg.Data.Backend == config.BackendJSON {
		fileRepo, err := state.NewFileRepository(config.StateFilePath(dataDir))
		if err != nil {
			_ = sqliteStore.Close()
			return nil, err
		}
		repo = fileRepo
	}

	sess := session.New(repo, session.Options{
		ThresholdDays: cfg.Alerts.ThresholdDays,
		AutoSave:      cfg.Data.AutoSave,
		Logger:        logger,
	})
	if err := sess.Restore(context.Background()); err != nil {
		// 损坏的状态不阻止启动，从空面板开始
		logger.WithError(err).Warn("starting with an empty panel")
	}

	s := &Server{
		router:  gin.New(),
		store:   sqliteStore,
		session: sess,
		log:     logger,
		api: v1.NewHandler(sess, v1.Options{
			Uploads:        sqliteStore,
			MaxUploadBytes: cfg.Upload.MaxBytes,
			Backend:        cfg.Data.Backend,
			Logger:         logger,
		}),
	}

	s.setupRoutes(devMode)
	s.httpSrv = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.WithFields(logrus.Fields{
		"data_dir": dataDir,
		"backend":  cfg.Data.Backend,
		"autosave": cfg.Data.AutoSave,
	}).Info("server initialized")
	return s, nil
}

// setupRoutes 设置路由
func (s *Server) setupRoutes(devMode bool) {
	s.router.Use(logging.Middleware(s.log), gin.Recovery())

	// CORS
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	// API 路由
	api := s.router.Group("/api")
	{
		s.api.RegisterRoutes(api)
	}

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 静态资源
	if devMode {
		// 开发模式：代理到前端开发服务器
		s.router.NoRoute(func(c *gin.Context) {
			c.Redirect(http.StatusTemporaryRedirect, "http://localhost:5173"+c.Request.URL.Path)
		})
		return
	}

	// 生产模式：使用 embed 的页面
	sub, _ := fs.Sub(staticFiles, "dist")
	index := func(c *gin.Context) {
		data, err := fs.ReadFile(sub, "index.html")
		if err != nil {
			c.Status(http.StatusNotFound)
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", data)
	}
	s.router.GET("/", index)
	s.router.NoRoute(index)
}

// Handler 返回 HTTP 处理器（用于测试）
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr 监听地址，由 cfg.Server.Port 决定
func (s *Server) Addr() string {
	return s.httpSrv.Addr
}

// Run 启动服务器，直到 Shutdown 被调用；Shutdown 先于 Run 时立即返回
func (s *Server) Run() error {
	if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown 停止接受请求并保存面板状态
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error
	if err := s.httpSrv.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	s.session.StopAutoSave()
	if err := s.SaveNow(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := s.store.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// SaveNow 立即持久化面板状态
func (s *Server) SaveNow(ctx context.Context) error {
	return s.session.SaveNow(ctx)
}

// Session 当前会话（用于测试）
func (s *Server) Session() *session.Session {
	return s.session
}
