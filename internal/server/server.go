package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"rosterlens/internal/actionplan"
	"rosterlens/internal/api"
	"rosterlens/internal/config"
	"rosterlens/internal/importer"
	"rosterlens/internal/logger"
	"rosterlens/internal/parser"
	"rosterlens/internal/store"
)

// Server HTTP服务器
type Server struct {
	router *gin.Engine
	store  *store.Store
	api    *api.Handler
	log    *logger.Logger
}

const shutdownTimeout = 10 * time.Second

// NewServer 按配置创建服务器：别名表、解析协调器、整改计划生成器、校验结果存储
func NewServer(cfg *config.AppConfig) (*Server, error) {
	if !cfg.Server.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}
	log := logger.Named("server")

	resolver, err := parser.LoadResolver(cfg.Import.AliasFile)
	if err != nil {
		return nil, err
	}

	dataDir, err := config.EnsureDataDir(cfg)
	if err != nil {
		return nil, err
	}
	sqliteStore, err := store.New(config.DatabasePath(dataDir))
	if err != nil {
		return nil, fmt.Errorf("初始化数据库失败: %w", err)
	}

	coordinator := importer.NewCoordinator(resolver,
		importer.WithDefaultMode(cfg.ParseMode()),
		importer.WithSampleSize(cfg.Import.SampleSize),
		importer.WithTempDir(config.UploadDir(dataDir)),
	)
	plans := actionplan.New(actionplan.WithAttachPolicy(cfg.AttachPolicy()))
	handler := api.NewHandler(coordinator, plans,
		api.WithStore(sqliteStore),
		api.WithMaxUploadMB(cfg.Import.MaxUploadMB),
	)

	s := New(handler, log)
	s.store = sqliteStore
	return s, nil
}

// New 由已构建的处理器创建服务器（测试与嵌入使用）
func New(handler *api.Handler, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Named("server")
	}
	s := &Server{
		router: gin.New(),
		api:    handler,
		log:    log,
	}
	s.setupRoutes()
	return s
}

// setupRoutes 设置路由
func (s *Server) setupRoutes() {
	s.router.Use(gin.Recovery(), api.RequestID(), api.AccessLog(s.log))

	// CORS
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, "+api.RequestIDHeader)
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	s.api.RegisterRoutes(s.router.Group("/api"))

	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Code: api.CodeNotFound, Message: "route not found: " + c.Request.URL.Path})
	})
}

// Handler 返回 http.Handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run 启动服务器，ctx 结束后优雅关闭并释放存储
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("服务启动")
		errCh <- srv.ListenAndServe()
	}()

	var err error
	select {
	case err = <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
	case <-ctx.Done():
		s.log.Info().Msg("正在关闭服务")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err = srv.Shutdown(shutdownCtx)
	}
	return errors.Join(err, s.Close())
}

// Close 关闭存储
func (s *Server) Close() error {
	if s.store == nil {
		return nil
	}
	return s.store.Close()
}

// GetStore 获取存储（用于测试）
func (s *Server) GetStore() *store.Store {
	return s.store
}
