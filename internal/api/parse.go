package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"rosterlens/internal/importer"
	"rosterlens/internal/logger"
	"rosterlens/internal/model"
	"rosterlens/internal/service/excel"
	"rosterlens/internal/store"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type uploadParser func(ctx context.Context, src io.Reader, filename string, opts importer.ImportOptions) *model.ParseResponse

// ParseRoster 解析上传的排班文件
// POST /api/roster/parse (multipart: file, mode, sheet, headerRow, format=json|xlsx)
func (h *Handler) ParseRoster(c *gin.Context) {
	h.parseUpload(c, "roster", h.coordinator.ParseRosterUpload)
}

// ParseEmployees 解析上传的员工文件
// POST /api/employees/parse
func (h *Handler) ParseEmployees(c *gin.Context) {
	h.parseUpload(c, "employees", h.coordinator.ParseEmployeesUpload)
}

// parseUpload 文件层面的失败以 blocking 问题的形式返回 200；只有请求本身不合法时返回 4xx
func (h *Handler) parseUpload(c *gin.Context, kind string, parse uploadParser) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			fail(c, http.StatusRequestEntityTooLarge, CodeFileTooLarge,
				fmt.Sprintf("upload exceeds %d MB", h.maxUpload>>20))
			return
		}
		fail(c, http.StatusBadRequest, CodeMissingFile, "multipart field 'file' is required")
		return
	}

	opts, code, msg := importOptions(c)
	if code != "" {
		fail(c, http.StatusBadRequest, code, msg)
		return
	}

	src, err := fh.Open()
	if err != nil {
		fail(c, http.StatusBadRequest, CodeInvalidRequest, "cannot read uploaded file")
		return
	}
	defer src.Close()

	ctx := c.Request.Context()
	resp := parse(ctx, src, fh.Filename, opts)
	h.recordRun(ctx, kind, fh.Filename, opts, resp)

	if strings.EqualFold(c.PostForm("format"), "xlsx") {
		h.writeReport(c, resp, fh.Filename)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// writeReport 以工作簿形式返回问题报告
func (h *Handler) writeReport(c *gin.Context, resp *model.ParseResponse, filename string) {
	f, err := excel.NewExporter().ExportIssues(resp, filename)
	if err != nil {
		fail(c, http.StatusInternalServerError, CodeReportError, err.Error())
		return
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		fail(c, http.StatusInternalServerError, CodeReportError, err.Error())
		return
	}
	name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)) + "-issues.xlsx"
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// importOptions 读取表单中的 mode / sheet / headerRow
func importOptions(c *gin.Context) (importer.ImportOptions, string, string) {
	opts := importer.ImportOptions{Sheet: strings.TrimSpace(c.PostForm("sheet"))}

	if v := strings.TrimSpace(c.PostForm("mode")); v != "" {
		mode, ok := model.ParseModeFrom(strings.ToLower(v))
		if !ok {
			return opts, CodeInvalidMode, fmt.Sprintf("mode must be 'strict' or 'lenient', got '%s'", v)
		}
		opts.Mode = mode
	}

	if v := strings.TrimSpace(c.PostForm("headerRow")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return opts, CodeInvalidHeader, fmt.Sprintf("headerRow must be a positive integer, got '%s'", v)
		}
		opts.HeaderRow = n
	}
	return opts, "", ""
}

func (h *Handler) recordRun(ctx context.Context, kind, filename string, opts importer.ImportOptions, resp *model.ParseResponse) {
	if h.store == nil {
		return
	}
	entries := 0
	if r := resp.Roster(); r != nil {
		entries = len(r.Entries)
	} else if e := resp.Employees(); e != nil {
		entries = len(e.Entries)
	}
	run := store.NewParseRun(logger.RequestID(ctx), kind, filename, opts.Sheet, opts.Mode, entries, resp.Summary)
	if _, err := h.store.CreateParseRun(run); err != nil {
		logger.C(ctx).Error().Err(err).Str("kind", kind).Msg("记录解析结果失败")
	}
}

// ListParseRuns 最近的解析记录
// GET /api/parse-runs?limit=N
func (h *Handler) ListParseRuns(c *gin.Context) {
	if !h.requireStore(c) {
		return
	}
	runs, err := h.store.ListParseRuns(queryLimit(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, CodeStoreError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": runs, "total": len(runs)})
}

func queryLimit(c *gin.Context) int {
	n, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultListPageSize)))
	if err != nil || n <= 0 {
		return defaultListPageSize
	}
	return n
}
