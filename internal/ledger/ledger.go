// Package ledger 保存每个人的可变属性：板块分配与最近一次联系日期
// 两个台账以姓名为键、互相独立，不校验是否对应当前数据集中的记录
package ledger

import (
	"sort"

	"github.com/PascmdeoMvd/Plataforma/internal/model"
)

// Entry 台账条目
type Entry struct {
	PersonID string `json:"nombre_completo"`
	Value    string `json:"value"`
}

// Assignments 分配台账：姓名 -> 板块代码
type Assignments struct {
	m map[string]model.SectorCode
}

// NewAssignments 创建分配台账
func NewAssignments() *Assignments {
	return &Assignments{m: make(map[string]model.SectorCode)}
}

// Get 查询分配，未分配返回 false
func (a *Assignments) Get(personID string) (model.SectorCode, bool) {
	code, ok := a.m[personID]
	return code, ok
}

// Set 覆盖写入分配
func (a *Assignments) Set(personID string, code model.SectorCode) {
	a.m[personID] = code
}

// Len 已分配人数
func (a *Assignments) Len() int {
	return len(a.m)
}

// Resolve 显式分配优先，否则按协作领域给出建议板块
// suggested 为 true 表示结果来自建议表
func (a *Assignments) Resolve(personID, area string) (code model.SectorCode, suggested bool, ok bool) {
	if code, ok := a.m[personID]; ok {
		return code, false, true
	}
	if code, ok := Suggest(area); ok {
		return code, true, true
	}
	return "", false, false
}

// GroupBy 返回某板块下的人员（按姓名排序）
func (a *Assignments) GroupBy(code model.SectorCode) []string {
	members := []string{}
	for name, c := range a.m {
		if c == code {
			members = append(members, name)
		}
	}
	sort.Strings(members)
	return members
}

// SectorGroup 板块及其成员
type SectorGroup struct {
	Sector  model.Sector `json:"sector"`
	Members []string     `json:"members"`
}

// Groups 按目录顺序返回全部板块，成员为空的板块也包含在内
func (a *Assignments) Groups() []SectorGroup {
	sectors := model.Sectors()
	groups := make([]SectorGroup, 0, len(sectors))
	for _, s := range sectors {
		groups = append(groups, SectorGroup{Sector: s, Members: a.GroupBy(s.Code)})
	}
	return groups
}

// Entries 全部分配（按姓名排序）
func (a *Assignments) Entries() []Entry {
	out := make([]Entry, 0, len(a.m))
	for name, code := range a.m {
		out = append(out, Entry{PersonID: name, Value: string(code)})
	}
	sortEntries(out)
	return out
}

// Names 已分配人员姓名（排序）
func (a *Assignments) Names() []string {
	names := make([]string, 0, len(a.m))
	for name := range a.m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Map 返回副本
func (a *Assignments) Map() map[string]string {
	out := make(map[string]string, len(a.m))
	for k, v := range a.m {
		out[k] = string(v)
	}
	return out
}

// Contacts 联系台账：姓名 -> 日期字符串（写入时不校验）
type Contacts struct {
	m map[string]string
}

// NewContacts 创建联系台账
func NewContacts() *Contacts {
	return &Contacts{m: make(map[string]string)}
}

// Get 查询最近联系日期
func (c *Contacts) Get(personID string) (string, bool) {
	v, ok := c.m[personID]
	return v, ok
}

// Set 覆盖写入
func (c *Contacts) Set(personID, date string) {
	c.m[personID] = date
}

func (c *Contacts) Len() int {
	return len(c.m)
}

// Entries 全部联系记录（按姓名排序）
func (c *Contacts) Entries() []Entry {
	out := make([]Entry, 0, len(c.m))
	for name, date := range c.m {
		out = append(out, Entry{PersonID: name, Value: date})
	}
	sortEntries(out)
	return out
}

// Map 返回副本
func (c *Contacts) Map() map[string]string {
	out := make(map[string]string, len(c.m))
	for k, v := range c.m {
		out[k] = v
	}
	return out
}

func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].PersonID < entries[j].PersonID
	})
}
