package parser

import (
	"fmt"
	"strings"
)

// Format 上传文件格式
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
)

// ParseError 上传文件无法转换为人员记录（缺少必需列、空文件或格式损坏）
type ParseError struct {
	FileName string
	Missing  []string
	Err      error
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString("parse ")
	if e.FileName != "" {
		b.WriteString(fmt.Sprintf("%q", e.FileName))
	} else {
		b.WriteString("upload")
	}
	if len(e.Missing) > 0 {
		b.WriteString(": missing required columns: ")
		b.WriteString(strings.Join(e.Missing, ", "))
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ColumnMapping 必需列名 -> 表头中的列索引
type ColumnMapping map[string]int

// Result 解析结果
type Result struct {
	Format  Format
	Header  []string
	Skipped int
}
