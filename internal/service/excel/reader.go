package excel

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"rosterlens/internal/model"
)

// 读取失败的分类，调用方用 errors.Is 判断
var (
	ErrFileNotFound       = errors.New("file not found")
	ErrUnsupportedFormat  = errors.New("unsupported file format")
	ErrUnreadableWorkbook = errors.New("unreadable workbook")
	ErrSheetNotFound      = errors.New("sheet not found")
	ErrHeaderRowNotFound  = errors.New("header row not found")
)

// ReadOptions 读取选项
type ReadOptions struct {
	Sheet     string // 为空时使用活动工作表
	HeaderRow int    // 1 基；0 表示自动探测
	TempDir   string // ReadUpload 暂存目录，为空时使用系统临时目录
}

// minHeaderCells 自动探测表头时要求的最少非空单元格数
const minHeaderCells = 2

// ReadSheet 读取工作表：定位表头行，返回其后的非空数据行
// 未找到表头（自动探测）时返回 0 行而非错误
func ReadSheet(path string, opts ReadOptions) (*model.SheetData, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("%w: %v", ErrUnreadableWorkbook, err)
	}
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".xlsx" {
		return nil, fmt.Errorf("%w: expected .xlsx, got %q", ErrUnsupportedFormat, ext)
	}
	if opts.HeaderRow < 0 {
		return nil, fmt.Errorf("%w: header row must be >= 1, got %d", ErrHeaderRowNotFound, opts.HeaderRow)
	}

	f, err := excelize.OpenFile(path, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableWorkbook, err)
	}
	defer f.Close()

	sheet, err := resolveSheet(f, opts.Sheet)
	if err != nil {
		return nil, err
	}

	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableWorkbook, err)
	}
	defer rows.Close()

	r := &sheetReader{f: f, sheet: sheet}
	data := &model.SheetData{Name: sheet}

	rowNum := 0
	for rows.Next() {
		rowNum++
		cols, err := rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrUnreadableWorkbook, rowNum, err)
		}

		if data.HeaderRow == 0 {
			if !r.isHeaderRow(rowNum, cols, opts.HeaderRow) {
				continue
			}
			data.HeaderRow = rowNum
			data.Headers = r.headers(rowNum, cols)
			if opts.HeaderRow > 0 && countNonEmpty(data.Headers) == 0 {
				return nil, fmt.Errorf("%w: row %d is empty", ErrHeaderRowNotFound, opts.HeaderRow)
			}
			continue
		}

		if row, ok := r.dataRow(rowNum, cols, data.Headers); ok {
			data.Rows = append(data.Rows, row)
		}
	}
	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableWorkbook, err)
	}

	if data.HeaderRow == 0 && opts.HeaderRow > 0 {
		return nil, fmt.Errorf("%w: %d", ErrHeaderRowNotFound, opts.HeaderRow)
	}
	return data, nil
}

// ReadUpload 将上传内容暂存为临时文件后读取，任何路径下都会删除临时文件
func ReadUpload(src io.Reader, filename string, opts ReadOptions) (*model.SheetData, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".xlsx" {
		return nil, fmt.Errorf("%w: expected .xlsx, got %q", ErrUnsupportedFormat, ext)
	}

	dir := opts.TempDir
	if dir == "" {
		dir = os.TempDir()
	}
	path := filepath.Join(dir, "upload-"+uuid.NewString()+ext)

	dst, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("创建临时文件失败: %w", err)
	}
	defer os.Remove(path)

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return nil, fmt.Errorf("写入临时文件失败: %w", err)
	}
	if err := dst.Close(); err != nil {
		return nil, fmt.Errorf("写入临时文件失败: %w", err)
	}

	return ReadSheet(path, opts)
}

// ListSheets 列出工作簿中的工作表及行数
func ListSheets(path string) ([]model.SheetInfo, error) {
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".xlsx" {
		return nil, fmt.Errorf("%w: expected .xlsx, got %q", ErrUnsupportedFormat, ext)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("%w: %v", ErrUnreadableWorkbook, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	result := make([]model.SheetInfo, 0, len(sheets))
	for _, name := range sheets {
		rows, err := f.GetRows(name)
		if err != nil {
			continue
		}
		result = append(result, model.SheetInfo{Name: name, RowCount: len(rows)})
	}
	return result, nil
}

func resolveSheet(f *excelize.File, name string) (string, error) {
	if name == "" {
		active := f.GetSheetName(f.GetActiveSheetIndex())
		if active == "" {
			list := f.GetSheetList()
			if len(list) == 0 {
				return "", fmt.Errorf("%w: workbook has no sheets", ErrUnreadableWorkbook)
			}
			active = list[0]
		}
		return active, nil
	}
	for _, s := range f.GetSheetList() {
		if s == name {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: '%s'. Available sheets: %s",
		ErrSheetNotFound, name, strings.Join(f.GetSheetList(), ", "))
}

// sheetReader 按单元格类型还原取值
type sheetReader struct {
	f     *excelize.File
	sheet string
}

func (r *sheetReader) isHeaderRow(rowNum int, cols []string, explicit int) bool {
	if explicit > 0 {
		return rowNum == explicit
	}
	n := 0
	for i := range cols {
		if r.value(rowNum, i, cols[i]) != nil {
			n++
		}
	}
	return n >= minHeaderCells
}

func (r *sheetReader) headers(rowNum int, cols []string) []string {
	headers := make([]string, len(cols))
	for i := range cols {
		switch v := r.value(rowNum, i, cols[i]).(type) {
		case nil:
		case string:
			headers[i] = v
		case float64:
			headers[i] = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			headers[i] = strconv.FormatBool(v)
		}
	}
	return headers
}

// dataRow 只保留表头非空的列；全部为空的行跳过
func (r *sheetReader) dataRow(rowNum int, cols []string, headers []string) (model.SheetRow, bool) {
	row := model.SheetRow{Row: rowNum}
	empty := true
	for i, h := range headers {
		if h == "" {
			continue
		}
		var v any
		if i < len(cols) {
			v = r.value(rowNum, i, cols[i])
		}
		if v != nil {
			empty = false
		}
		row.Cells = append(row.Cells, model.Cell{Header: h, Value: v})
	}
	return row, !empty
}

// value 原始单元格值转为 nil / string / float64 / bool
func (r *sheetReader) value(rowNum, colIdx int, raw string) any {
	if raw == "" {
		return nil
	}
	cell, err := excelize.CoordinatesToCellName(colIdx+1, rowNum)
	if err != nil {
		return trimmedOrNil(raw)
	}
	typ, err := r.f.GetCellType(r.sheet, cell)
	if err != nil {
		return trimmedOrNil(raw)
	}
	switch typ {
	case excelize.CellTypeBool:
		return raw == "1" || strings.EqualFold(raw, "true")
	case excelize.CellTypeUnset, excelize.CellTypeNumber, excelize.CellTypeDate:
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return f
		}
	}
	return trimmedOrNil(raw)
}

func trimmedOrNil(s string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return s
}

func countNonEmpty(values []string) int {
	n := 0
	for _, v := range values {
		if v != "" {
			n++
		}
	}
	return n
}
