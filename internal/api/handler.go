// Package api HTTP 接口：排班/员工解析、整改计划、校验结果存取
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"rosterlens/internal/actionplan"
	"rosterlens/internal/importer"
	"rosterlens/internal/store"
)

// 错误码
const (
	CodeInvalidRequest  = "INVALID_REQUEST"
	CodeMissingFile     = "MISSING_FILE"
	CodeFileTooLarge    = "FILE_TOO_LARGE"
	CodeInvalidMode     = "INVALID_MODE"
	CodeInvalidHeader   = "INVALID_HEADER_ROW"
	CodeNotFound        = "NOT_FOUND"
	CodeStoreError      = "STORE_ERROR"
	CodeStoreDisabled   = "STORE_DISABLED"
	CodeReportError     = "REPORT_ERROR"
	defaultMaxUploadMB  = 20
	defaultListPageSize = 50
)

// ErrorResponse 错误响应
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Handler API 处理器
type Handler struct {
	coordinator *importer.Coordinator
	plans       *actionplan.Generator
	store       *store.Store // 可为 nil：此时校验结果相关接口返回 503
	maxUpload   int64
	startedAt   time.Time
}

// Option 处理器选项
type Option func(*Handler)

// WithStore 启用校验结果存储
func WithStore(s *store.Store) Option {
	return func(h *Handler) { h.store = s }
}

// WithMaxUploadMB 上传文件大小上限
func WithMaxUploadMB(mb int) Option {
	return func(h *Handler) {
		if mb > 0 {
			h.maxUpload = int64(mb) << 20
		}
	}
}

// NewHandler 创建 API 处理器
func NewHandler(coordinator *importer.Coordinator, plans *actionplan.Generator, opts ...Option) *Handler {
	h := &Handler{
		coordinator: coordinator,
		plans:       plans,
		maxUpload:   defaultMaxUploadMB << 20,
		startedAt:   time.Now(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes 注册 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// 系统状态
	router.GET("/status", h.GetStatus)

	// 文件解析
	router.POST("/roster/parse", h.ParseRoster)
	router.POST("/employees/parse", h.ParseEmployees)
	router.GET("/parse-runs", h.ListParseRuns)

	// 整改计划
	router.POST("/action-plan", h.BuildActionPlan)

	// 校验结果
	router.POST("/validations", h.SaveValidation)
	router.GET("/validations", h.ListValidations)
	router.GET("/validations/:id", h.GetValidation)
	router.DELETE("/validations/:id", h.DeleteValidation)
	router.GET("/validations/:id/action-plan", h.GetValidationActionPlan)
}

func fail(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Code: code, Message: message})
}

func (h *Handler) requireStore(c *gin.Context) bool {
	if h.store == nil {
		fail(c, http.StatusServiceUnavailable, CodeStoreDisabled, "validation store is not configured")
		return false
	}
	return true
}
