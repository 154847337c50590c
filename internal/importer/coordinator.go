package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"rosterlens/internal/issues"
	"rosterlens/internal/logger"
	"rosterlens/internal/model"
	"rosterlens/internal/parser"
	"rosterlens/internal/service/excel"
)

// Coordinator 导入协调器：读取工作表、逐行解析、汇总问题
// 无可变状态，可被多个 goroutine 同时使用
type Coordinator struct {
	resolver    *parser.Resolver
	sampleSize  int
	defaultMode model.ParseMode
	tempDir     string
	log         *logger.Logger
}

// Option 协调器选项
type Option func(*Coordinator)

// WithSampleSize 每个问题组保留的样例数
func WithSampleSize(n int) Option {
	return func(c *Coordinator) {
		if n > 0 {
			c.sampleSize = n
		}
	}
}

// WithDefaultMode 未指定模式时使用的解析模式
func WithDefaultMode(mode model.ParseMode) Option {
	return func(c *Coordinator) {
		if _, ok := model.ParseModeFrom(string(mode)); ok {
			c.defaultMode = mode
		}
	}
}

// WithTempDir 上传文件暂存目录
func WithTempDir(dir string) Option {
	return func(c *Coordinator) { c.tempDir = dir }
}

// WithLogger 指定日志
func WithLogger(l *logger.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.log = l
		}
	}
}

// NewCoordinator 创建导入协调器；resolver 为 nil 时使用内置别名表
func NewCoordinator(resolver *parser.Resolver, opts ...Option) *Coordinator {
	if resolver == nil {
		resolver = parser.DefaultResolver()
	}
	c := &Coordinator{
		resolver:    resolver,
		sampleSize:  issues.DefaultSampleSize,
		defaultMode: model.ParseModeLenient,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logger.Named("importer")
	}
	return c
}

// ImportOptions 导入选项
type ImportOptions struct {
	FilePath  string
	Sheet     string
	HeaderRow int // 1 基；0 表示自动探测
	Mode      model.ParseMode
}

type readFunc func(excel.ReadOptions) (*model.SheetData, error)

type rowParser[T any] func(model.SheetRow, *parser.Resolver, model.ParseMode) (*T, []model.ParseIssue, error)

// ParseRoster 解析排班文件
func (c *Coordinator) ParseRoster(ctx context.Context, opts ImportOptions) *model.ParseResponse {
	return c.parseRoster(ctx, opts, opts.FilePath, func(ro excel.ReadOptions) (*model.SheetData, error) {
		return excel.ReadSheet(opts.FilePath, ro)
	})
}

// ParseRosterUpload 解析上传的排班文件
func (c *Coordinator) ParseRosterUpload(ctx context.Context, src io.Reader, filename string, opts ImportOptions) *model.ParseResponse {
	return c.parseRoster(ctx, opts, filename, func(ro excel.ReadOptions) (*model.SheetData, error) {
		return excel.ReadUpload(src, filename, ro)
	})
}

// ParseEmployees 解析员工文件
func (c *Coordinator) ParseEmployees(ctx context.Context, opts ImportOptions) *model.ParseResponse {
	return c.parseEmployees(ctx, opts, opts.FilePath, func(ro excel.ReadOptions) (*model.SheetData, error) {
		return excel.ReadSheet(opts.FilePath, ro)
	})
}

// ParseEmployeesUpload 解析上传的员工文件
func (c *Coordinator) ParseEmployeesUpload(ctx context.Context, src io.Reader, filename string, opts ImportOptions) *model.ParseResponse {
	return c.parseEmployees(ctx, opts, filename, func(ro excel.ReadOptions) (*model.SheetData, error) {
		return excel.ReadUpload(src, filename, ro)
	})
}

func (c *Coordinator) parseRoster(ctx context.Context, opts ImportOptions, name string, read readFunc) *model.ParseResponse {
	start := time.Now()
	entries, rawRows, list, sheet := parseSheet(c, opts, read, parser.RosterRequiredFields, parser.ParseRosterRow)
	resp := issues.BuildResponse(&model.RosterParseResult{Entries: entries, RawRows: rawRows}, list, c.sampleSize)
	c.logResult(ctx, "roster", name, sheet, len(entries), resp, start)
	return resp
}

func (c *Coordinator) parseEmployees(ctx context.Context, opts ImportOptions, name string, read readFunc) *model.ParseResponse {
	start := time.Now()
	entries, rawRows, list, sheet := parseSheet(c, opts, read, parser.EmployeeRequiredFields, parser.ParseEmployeeRow)
	resp := issues.BuildResponse(&model.EmployeeParseResult{Entries: entries, RawRows: rawRows}, list, c.sampleSize)
	c.logResult(ctx, "employees", name, sheet, len(entries), resp, start)
	return resp
}

// parseSheet 读取并逐行解析；整文件失败时只返回一个 row=0 的错误
func parseSheet[T any](c *Coordinator, opts ImportOptions, read readFunc, required []parser.Field, parse rowParser[T]) ([]*T, []model.RawRow, []model.ParseIssue, string) {
	data, err := read(excel.ReadOptions{Sheet: opts.Sheet, HeaderRow: opts.HeaderRow, TempDir: c.tempDir})
	if err != nil {
		return nil, nil, []model.ParseIssue{readIssue(err)}, opts.Sheet
	}
	if len(data.Rows) == 0 {
		return nil, nil, []model.ParseIssue{
			model.FileIssue(model.CodeEmptyFile, "Excel file is empty or contains no data rows"),
		}, data.Name
	}
	if missing := c.resolver.MissingFields(data.Headers, required); len(missing) > 0 {
		names := make([]string, len(missing))
		for i, f := range missing {
			names[i] = string(f)
		}
		return nil, nil, []model.ParseIssue{
			model.FileIssue(model.CodeMissingRequiredColumns, "Missing required columns: "+strings.Join(names, ", ")),
		}, data.Name
	}

	mode := c.mode(opts.Mode)
	entries := make([]*T, 0, len(data.Rows))
	rawRows := make([]model.RawRow, 0, len(data.Rows))
	var list []model.ParseIssue
	for _, row := range data.Rows {
		rawRows = append(rawRows, c.rawRow(row))

		entry, warnings, err := safeParse(parse, row, c.resolver, mode)
		if err != nil {
			var issueErr *model.IssueError
			if errors.As(err, &issueErr) {
				list = append(list, issueErr.Issue)
			} else {
				list = append(list, model.ParseIssue{
					Severity: model.SeverityError,
					Code:     model.CodeRowParseError,
					Message:  err.Error(),
					Row:      row.Row,
				})
			}
			continue
		}
		entries = append(entries, entry)
		list = append(list, warnings...)
	}
	return entries, rawRows, list, data.Name
}

// safeParse 行解析中的 panic 转为普通错误，只影响当前行
func safeParse[T any](parse rowParser[T], row model.SheetRow, resolver *parser.Resolver, mode model.ParseMode) (entry *T, warnings []model.ParseIssue, err error) {
	defer func() {
		if r := recover(); r != nil {
			entry, warnings = nil, nil
			err = fmt.Errorf("unexpected error while parsing row: %v", r)
		}
	}()
	return parse(row, resolver, mode)
}

func (c *Coordinator) mode(m model.ParseMode) model.ParseMode {
	if mode, ok := model.ParseModeFrom(string(m)); ok {
		return mode
	}
	return c.defaultMode
}

// rawRow 回显行：excelRow + 规范字段 + 额外列（与已有键冲突时追加 " (extra)"）
func (c *Coordinator) rawRow(row model.SheetRow) model.RawRow {
	canonical, _ := c.resolver.Normalize(row)
	raw := model.RawRow{"excelRow": row.Row}
	for f, v := range canonical.Values {
		raw[string(f)] = v
	}
	for _, cell := range canonical.Extras {
		key := cell.Header
		if _, exists := raw[key]; exists {
			key += " (extra)"
		}
		raw[key] = cell.Value
	}
	return raw
}

// readIssue 读取失败映射为整文件错误
func readIssue(err error) model.ParseIssue {
	code := model.CodeFileReadError
	switch {
	case errors.Is(err, excel.ErrFileNotFound):
		code = model.CodeFileNotFound
	case errors.Is(err, excel.ErrUnsupportedFormat):
		code = model.CodeUnsupportedFileType
	case errors.Is(err, excel.ErrSheetNotFound):
		code = model.CodeSheetNotFound
	case errors.Is(err, excel.ErrHeaderRowNotFound):
		code = model.CodeInvalidHeaderRow
	}
	return model.FileIssue(code, err.Error())
}

func (c *Coordinator) logResult(ctx context.Context, kind, name, sheet string, entries int, resp *model.ParseResponse, start time.Time) {
	l := c.log.With().Str("request_id", logger.RequestID(ctx)).Logger()
	ev := l.Info()
	if resp.Summary.Status == model.StatusBlocking {
		ev = l.Warn()
	}
	ev.Str("kind", kind).
		Str("file", filepath.Base(name)).
		Str("sheet", sheet).
		Int("entries", entries).
		Int("issues", resp.Summary.TotalIssues).
		Str("status", string(resp.Summary.Status)).
		Dur("duration", time.Since(start)).
		Msg("解析完成")
}
