package alert

import (
	"strconv"
	"strings"
	"time"

	"github.com/PascmdeoMvd/Plataforma/internal/ledger"
	"github.com/PascmdeoMvd/Plataforma/internal/model"
)

// DefaultThresholdDays 默认超期天数阈值
const DefaultThresholdDays = 14

// Kind 提醒类型
type Kind string

const (
	KindMissingDate Kind = "missing"
	KindOverdue     Kind = "overdue"
)

// Record 一条沟通提醒（派生数据，不落库）
type Record struct {
	PersonID string           `json:"nombre_completo"`
	Sector   model.SectorCode `json:"sector"`
	Kind     Kind             `json:"kind"`
	Days     int              `json:"dias,omitempty"`
}

// Label tipo_alerta 文本
func (r Record) Label() string {
	if r.Kind == KindOverdue {
		return strconv.Itoa(r.Days) + " días sin contacto"
	}
	return "Sin fecha"
}

// Result 提醒评估结果
type Result struct {
	Today         string   `json:"today"`
	ThresholdDays int      `json:"thresholdDays"`
	Missing       []Record `json:"missing"`
	Overdue       []Record `json:"overdue"`
	UpToDate      []string `json:"upToDate"`
}

// Status ok 表示所有已分配人员都在阈值内
func (r Result) Status() string {
	if len(r.Missing) == 0 && len(r.Overdue) == 0 {
		return "ok"
	}
	return "attention"
}

// Row 导出用的扁平行
type Row struct {
	PersonID string
	Sector   string
	Kind     string
	Days     string
}

// Rows 扁平化：无日期在前，超期在后；无日期行的 dias 为空
func (r Result) Rows() []Row {
	rows := make([]Row, 0, len(r.Missing)+len(r.Overdue))
	for _, rec := range r.Missing {
		rows = append(rows, Row{PersonID: rec.PersonID, Sector: string(rec.Sector), Kind: rec.Label()})
	}
	for _, rec := range r.Overdue {
		rows = append(rows, Row{PersonID: rec.PersonID, Sector: string(rec.Sector), Kind: rec.Label(), Days: strconv.Itoa(rec.Days)})
	}
	return rows
}

// Evaluate 按阈值检查已分配人员的最近联系日期
// 只遍历分配台账；日期缺失、为空或无法解析都归为“无日期”，不会中断评估
// 距今天数严格大于阈值才算超期
func Evaluate(assignments *ledger.Assignments, contacts *ledger.Contacts, today time.Time, thresholdDays int) Result {
	res := Result{
		Today:         civil(today).Format(time.DateOnly),
		ThresholdDays: thresholdDays,
		Missing:       []Record{},
		Overdue:       []Record{},
		UpToDate:      []string{},
	}

	for _, e := range assignments.Entries() {
		sector := model.SectorCode(e.Value)

		raw, _ := contacts.Get(e.PersonID)
		date, ok := ParseDate(raw)
		if !ok {
			res.Missing = append(res.Missing, Record{PersonID: e.PersonID, Sector: sector, Kind: KindMissingDate})
			continue
		}

		days := DaysBetween(date, today)
		if days > thresholdDays {
			res.Overdue = append(res.Overdue, Record{PersonID: e.PersonID, Sector: sector, Kind: KindOverdue, Days: days})
			continue
		}
		res.UpToDate = append(res.UpToDate, e.PersonID)
	}
	return res
}

var dateLayouts = []string{
	time.DateOnly,
	time.DateTime,
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-1-2",
	"2006/1/2",
	"20060102",
	"2/1/2006", // 日在前
	"2 Jan 2006",
	"2 January 2006",
	"Jan 2, 2006",
}

// ParseDate 解析联系日期，空串或无法识别的格式返回 false
func ParseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DaysBetween 两个日历日期之间的整天数（to - from）
func DaysBetween(from, to time.Time) int {
	return int(civil(to).Sub(civil(from)).Hours() / 24)
}

func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
