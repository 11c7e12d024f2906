package parser

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/PascmdeoMvd/Plataforma/internal/model"
)

// Load 读取上传文件并转换为人员记录
// 列名在此处规范化一次；部门、城市在此处首字母大写一次，下游过滤依赖这些规范值
func Load(r io.Reader, filename string) ([]model.PersonRecord, error) {
	records, _, err := LoadWithResult(r, filename)
	return records, err
}

// LoadWithResult 同 Load，额外返回格式、表头等解析信息
func LoadWithResult(r io.Reader, filename string) ([]model.PersonRecord, Result, error) {
	var res Result

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, res, &ParseError{FileName: filename, Err: fmt.Errorf("failed to read upload: %w", err)}
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, res, &ParseError{FileName: filename, Err: errors.New("empty file")}
	}

	res.Format = DetectFormat(data, filename)
	rows, err := ReadRows(data, res.Format)
	if err != nil {
		return nil, res, &ParseError{FileName: filename, Err: err}
	}
	if len(rows) == 0 {
		return nil, res, &ParseError{FileName: filename, Err: errors.New("header row not found")}
	}

	res.Header = make([]string, len(rows[0]))
	for i, col := range rows[0] {
		res.Header[i] = NormalizeColumnName(col)
	}

	mapping, missing := MapColumns(rows[0], model.RequiredColumns)
	if len(missing) > 0 {
		return nil, res, &ParseError{FileName: filename, Missing: missing}
	}

	records := make([]model.PersonRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isBlankRow(row) {
			res.Skipped++
			continue
		}
		records = append(records, toRecord(row, mapping))
	}
	return records, res, nil
}

func toRecord(row []string, m ColumnMapping) model.PersonRecord {
	get := func(col string) string {
		return strings.TrimSpace(cellValue(row, m[col]))
	}
	return model.PersonRecord{
		FullName:     get(model.ColFullName),
		Department:   TitleCase(get(model.ColDepartment)),
		City:         TitleCase(get(model.ColCity)),
		Interest:     get(model.ColInterest),
		Area:         get(model.ColArea),
		Availability: get(model.ColAvailability),
		Mode:         get(model.ColMode),
		Comment:      get(model.ColComment),
	}
}
