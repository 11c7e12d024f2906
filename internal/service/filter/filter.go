package filter

import (
	"sort"

	"github.com/PascmdeoMvd/Plataforma/internal/model"
)

// Selection 分面选择
// nil 表示未触碰（默认选中全部观测值）；非 nil 的空切片表示什么都不选，结果为空
type Selection struct {
	Departments []string `json:"departments"`
	Interests   []string `json:"interests"`
}

// Facets 数据集中观测到的分面取值（排序）
type Facets struct {
	Departments []string `json:"departments"`
	Interests   []string `json:"interests"`
}

// Observe 收集分面取值
// 部门保留空值；兴趣丢弃空值，因此兴趣为空的记录在默认选择下不会出现
func Observe(records []model.PersonRecord) Facets {
	deps := make(map[string]struct{})
	ints := make(map[string]struct{})
	for _, r := range records {
		deps[r.Department] = struct{}{}
		if r.Interest != "" {
			ints[r.Interest] = struct{}{}
		}
	}
	return Facets{
		Departments: sortedKeys(deps),
		Interests:   sortedKeys(ints),
	}
}

// Resolve 把未触碰的分面替换为观测到的全部取值
func (s Selection) Resolve(records []model.PersonRecord) Selection {
	if s.Departments != nil && s.Interests != nil {
		return s
	}
	facets := Observe(records)
	out := s
	if out.Departments == nil {
		out.Departments = facets.Departments
	}
	if out.Interests == nil {
		out.Interests = facets.Interests
	}
	return out
}

// Apply 过滤记录：部门在所选集合内且兴趣在所选集合内，保持原顺序
func Apply(records []model.PersonRecord, sel Selection) []model.PersonRecord {
	sel = sel.Resolve(records)
	deps := toSet(sel.Departments)
	ints := toSet(sel.Interests)

	out := make([]model.PersonRecord, 0, len(records))
	for _, r := range records {
		if _, ok := deps[r.Department]; !ok {
			continue
		}
		if _, ok := ints[r.Interest]; !ok {
			continue
		}
		out = append(out, r)
	}
	return out
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
