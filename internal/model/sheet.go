package model

// Cell 单元格：表头原文 + 值
// Value 取值类型：nil（空）、string（已去首尾空格）、float64（数字/日期序列号）、bool
type Cell struct {
	Header string
	Value  any
}

// SheetRow 工作表中的一行数据，Row 为 Excel 中真实的 1 基行号
type SheetRow struct {
	Row   int
	Cells []Cell
}

// SheetData 读取后的工作表
type SheetData struct {
	Name      string     `json:"name"`
	HeaderRow int        `json:"headerRow"`
	Headers   []string   `json:"headers"`
	Rows      []SheetRow `json:"-"`
}

// SheetInfo 工作表信息
type SheetInfo struct {
	Name     string `json:"name"`
	RowCount int    `json:"rowCount"`
}
