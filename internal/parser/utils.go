package parser

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// NormalizeColumnName 规范化列名：去除首尾空白与控制字符、转小写、NFC 组合
// 例如 " Área_Colaboración\n" 与分解形式的重音都会得到 "área_colaboración"
func NormalizeColumnName(name string) string {
	name = strings.TrimPrefix(name, "\ufeff")
	name = strings.ReplaceAll(name, "\n", "")
	name = strings.ReplaceAll(name, "\r", "")
	name = strings.ReplaceAll(name, "\t", "")
	name = strings.TrimSpace(name)
	return norm.NFC.String(strings.ToLower(name))
}

// TitleCase 首字母大写并去除首尾空白，用于部门与城市
// Caser 有内部状态，每次调用新建
func TitleCase(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	return cases.Title(language.Spanish).String(norm.NFC.String(value))
}

// MapColumns 在表头中定位必需列，返回映射与缺失列
func MapColumns(header []string, required []string) (ColumnMapping, []string) {
	index := make(map[string]int, len(header))
	for i, col := range header {
		name := NormalizeColumnName(col)
		if name == "" {
			continue
		}
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}

	mapping := make(ColumnMapping, len(required))
	var missing []string
	for _, col := range required {
		idx, ok := index[col]
		if !ok {
			missing = append(missing, col)
			continue
		}
		mapping[col] = idx
	}
	return mapping, missing
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func isBlankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
