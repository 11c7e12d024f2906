// Package aggregate 图表用的分组计数
// 每次调用都基于当前台账重新计算，不做缓存
package aggregate

import (
	"sort"

	"github.com/PascmdeoMvd/Plataforma/internal/ledger"
	"github.com/PascmdeoMvd/Plataforma/internal/model"
)

// SectorCount 板块人数
type SectorCount struct {
	Sector model.SectorCode `json:"sector"`
	Label  string           `json:"label"`
	Count  int              `json:"count"`
}

// GroupCount 板块 × 维度 的人数
type GroupCount struct {
	Sector model.SectorCode `json:"sector"`
	Key    string           `json:"key"`
	Count  int              `json:"count"`
}

// Charts 面板图表数据
type Charts struct {
	BySector             []SectorCount  `json:"bySector"`
	ByDepartment         map[string]int `json:"byDepartment"`
	BySectorArea         []GroupCount   `json:"bySectorArea"`
	BySectorAvailability []GroupCount   `json:"bySectorAvailability"`
}

// Build 计算全部图表
func Build(records []model.PersonRecord, asg *ledger.Assignments) Charts {
	return Charts{
		BySector:             CountBySector(records, asg),
		ByDepartment:         CountByDepartment(records),
		BySectorArea:         CountBySectorAndArea(records, asg),
		BySectorAvailability: CountBySectorAndAvailability(records, asg),
	}
}

// CountBySector 按板块目录顺序计数，无人的板块记 0
func CountBySector(records []model.PersonRecord, asg *ledger.Assignments) []SectorCount {
	return CountBySectorOver(records, asg, model.SectorCodes())
}

// CountBySectorOver 在给定板块集合上计数（集合顺序即输出顺序）
// 只统计显式分配，建议板块不计入；集合外的分配值忽略
func CountBySectorOver(records []model.PersonRecord, asg *ledger.Assignments, sectors []model.SectorCode) []SectorCount {
	counts := make(map[model.SectorCode]int, len(sectors))
	for _, r := range records {
		if code, ok := asg.Get(r.FullName); ok {
			counts[code]++
		}
	}

	out := make([]SectorCount, 0, len(sectors))
	for _, code := range sectors {
		out = append(out, SectorCount{Sector: code, Label: code.Label(), Count: counts[code]})
	}
	return out
}

// CountByDepartment 按部门计数
func CountByDepartment(records []model.PersonRecord) map[string]int {
	out := make(map[string]int)
	for _, r := range records {
		out[r.Department]++
	}
	return out
}

// CountBySectorAndArea 板块 × 协作领域；未分配或领域为空的记录不计入，空组不输出
func CountBySectorAndArea(records []model.PersonRecord, asg *ledger.Assignments) []GroupCount {
	return countBy(records, asg, func(r model.PersonRecord) string { return r.Area })
}

// CountBySectorAndAvailability 板块 × 时间可用性；规则同上
func CountBySectorAndAvailability(records []model.PersonRecord, asg *ledger.Assignments) []GroupCount {
	return countBy(records, asg, func(r model.PersonRecord) string { return r.Availability })
}

type groupKey struct {
	sector model.SectorCode
	key    string
}

func countBy(records []model.PersonRecord, asg *ledger.Assignments, keyFn func(model.PersonRecord) string) []GroupCount {
	counts := make(map[groupKey]int)
	for _, r := range records {
		code, ok := asg.Get(r.FullName)
		if !ok || code == "" {
			continue
		}
		key := keyFn(r)
		if key == "" {
			continue
		}
		counts[groupKey{sector: code, key: key}]++
	}

	out := make([]GroupCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, GroupCount{Sector: k.sector, Key: k.key, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Sector != out[j].Sector {
			return out[i].Sector < out[j].Sector
		}
		return out[i].Key < out[j].Key
	})
	return out
}
