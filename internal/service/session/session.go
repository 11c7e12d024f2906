package session

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/sirupsen/logrus"

	"github.com/PascmdeoMvd/Plataforma/internal/ledger"
	"github.com/PascmdeoMvd/Plataforma/internal/model"
	"github.com/PascmdeoMvd/Plataforma/internal/parser"
	"github.com/PascmdeoMvd/Plataforma/internal/service/aggregate"
	"github.com/PascmdeoMvd/Plataforma/internal/service/alert"
	"github.com/PascmdeoMvd/Plataforma/internal/service/filter"
	"github.com/PascmdeoMvd/Plataforma/internal/service/state"
)

const saveDebounceDelay = time.Second

// Options 会话配置
type Options struct {
	ThresholdDays int
	AutoSave      bool
	Now           func() time.Time
	Logger        logrus.FieldLogger
}

// Session 当前用户的面板会话：数据集 + 面板状态
// HTTP 请求并发进入，读写通过 RWMutex 串行化
type Session struct {
	repo Repository
	opts Options
	log  logrus.FieldLogger

	mu      sync.RWMutex
	records []model.PersonRecord
	dataset *model.Dataset
	state   ledger.PanelState

	saveMu    sync.Mutex
	saveTimer *time.Timer
}

// New 创建会话；repo 可为 nil（仅内存）
func New(repo Repository, opts Options) *Session {
	if opts.ThresholdDays <= 0 {
		opts.ThresholdDays = alert.DefaultThresholdDays
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	return &Session{
		repo:  repo,
		opts:  opts,
		log:   opts.Logger.WithField("component", "session"),
		state: ledger.NewPanelState(),
	}
}

// Restore 从持久化边界加载状态，替换当前台账
func (s *Session) Restore(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}
	ps, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to restore panel state: %w", err)
	}

	s.mu.Lock()
	s.state = ps
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{
		"assignments": ps.Assignments.Len(),
		"contacts":    ps.Contacts.Len(),
	}).Info("panel state restored")
	return nil
}

// SaveNow 立即持久化
func (s *Session) SaveNow(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}
	s.mu.RLock()
	snapshot := s.state.Clone()
	s.mu.RUnlock()

	if err := s.repo.Save(ctx, snapshot); err != nil {
		return fmt.Errorf("failed to save panel state: %w", err)
	}
	return nil
}

// ScheduleSave 防抖保存
func (s *Session) ScheduleSave() {
	if s.repo == nil || !s.opts.AutoSave {
		return
	}
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	if s.saveTimer != nil {
		s.saveTimer.Stop()
	}
	s.saveTimer = time.AfterFunc(saveDebounceDelay, func() {
		if err := s.SaveNow(context.Background()); err != nil {
			s.log.WithError(err).Warn("autosave failed")
		}
	})
}

// StopAutoSave 取消尚未触发的防抖保存
func (s *Session) StopAutoSave() {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	if s.saveTimer != nil {
		s.saveTimer.Stop()
		s.saveTimer = nil
	}
}

// ThresholdDays 超期阈值
func (s *Session) ThresholdDays() int {
	return s.opts.ThresholdDays
}

// LoadDataset 上传并替换当前数据集；失败时保留原数据集与台账
func (s *Session) LoadDataset(r io.Reader, filename string) (Change, *model.Dataset, error) {
	records, res, err := parser.LoadWithResult(r, filename)
	if err != nil {
		return Change{}, nil, err
	}

	ds := &model.Dataset{
		ID:       uuid.New().String(),
		FileName: filename,
		Format:   string(res.Format),
		Rows:     len(records),
		LoadedAt: s.opts.Now().UTC(),
	}

	s.mu.Lock()
	s.records = records
	s.dataset = ds
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{
		"dataset": ds.ID,
		"file":    filename,
		"format":  ds.Format,
		"rows":    ds.Rows,
		"skipped": res.Skipped,
	}).Info("dataset loaded")

	return Change{Kind: ChangeDataset, Changed: true, Rows: len(records)}, ds, nil
}

// Dataset 当前数据集描述
func (s *Session) Dataset() (*model.Dataset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.dataset == nil {
		return nil, false
	}
	ds := *s.dataset
	return &ds, true
}

// RequireDataset 尚未上传数据集时返回 ErrNoDataset
func (s *Session) RequireDataset() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.dataset == nil {
		return ErrNoDataset
	}
	return nil
}

// Records 当前记录副本
func (s *Session) Records() []model.PersonRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.PersonRecord, len(s.records))
	copy(out, s.records)
	return out
}

// State 面板状态快照
func (s *Session) State() ledger.PanelState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// ApplyAssignment 设置某人的板块
func (s *Session) ApplyAssignment(personID string, code model.SectorCode) (Change, error) {
	if personID == "" {
		return Change{}, ErrEmptyPerson
	}
	if !code.Valid() {
		return Change{}, fmt.Errorf("%w: %q", ErrUnknownSector, code)
	}

	s.mu.Lock()
	ch := s.applyAssignmentLocked(personID, code)
	s.mu.Unlock()

	s.ScheduleSave()
	return ch, nil
}

func (s *Session) applyAssignmentLocked(personID string, code model.SectorCode) Change {
	before, existed := s.state.Assignments.Get(personID)
	s.state.Assignments.Set(personID, code)
	return Change{
		Kind:     ChangeAssignment,
		PersonID: personID,
		Before:   string(before),
		After:    string(code),
		Existed:  existed,
		Changed:  !existed || before != code,
	}
}

// RecordContact 记录最近联系日期（不校验格式）
func (s *Session) RecordContact(personID, date string) (Change, error) {
	if personID == "" {
		return Change{}, ErrEmptyPerson
	}

	s.mu.Lock()
	ch := s.recordContactLocked(personID, date)
	s.mu.Unlock()

	s.ScheduleSave()
	return ch, nil
}

func (s *Session) recordContactLocked(personID, date string) Change {
	before, existed := s.state.Contacts.Get(personID)
	s.state.Contacts.Set(personID, date)
	return Change{
		Kind:     ChangeContact,
		PersonID: personID,
		Before:   before,
		After:    date,
		Existed:  existed,
		Changed:  !existed || before != date,
	}
}

// ApplyGridEdits 批量应用表格编辑；先整体校验，任何一行非法则不做修改
func (s *Session) ApplyGridEdits(edits []GridEdit) (Change, error) {
	for _, e := range edits {
		if e.PersonID == "" {
			return Change{}, ErrEmptyPerson
		}
		if e.Sector != nil && !model.SectorCode(*e.Sector).Valid() {
			return Change{}, fmt.Errorf("%w: %q (%s)", ErrUnknownSector, *e.Sector, e.PersonID)
		}
	}

	out := Change{Kind: ChangeGrid}
	s.mu.Lock()
	for _, e := range edits {
		if e.Sector != nil {
			ch := s.applyAssignmentLocked(e.PersonID, model.SectorCode(*e.Sector))
			out.Details = append(out.Details, ch)
			out.Changed = out.Changed || ch.Changed
		}
		if e.LastContact != nil {
			ch := s.recordContactLocked(e.PersonID, *e.LastContact)
			out.Details = append(out.Details, ch)
			out.Changed = out.Changed || ch.Changed
		}
	}
	out.Assignments = s.state.Assignments.Len()
	out.Contacts = s.state.Contacts.Len()
	s.mu.Unlock()

	s.ScheduleSave()
	return out, nil
}

// ImportState 用 JSON 文档整体替换两个台账；失败时原状态不变
func (s *Session) ImportState(doc []byte) (Change, error) {
	ps, err := state.Import(doc)
	if err != nil {
		return Change{}, err
	}

	s.mu.Lock()
	s.state = ps
	s.mu.Unlock()

	s.ScheduleSave()
	return Change{
		Kind:        ChangeImportState,
		Changed:     true,
		Assignments: ps.Assignments.Len(),
		Contacts:    ps.Contacts.Len(),
	}, nil
}

// ExportState 导出 JSON 文档
func (s *Session) ExportState() ([]byte, error) {
	return state.Export(s.State())
}

// Facets 当前数据集的分面取值
func (s *Session) Facets() filter.Facets {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return filter.Observe(s.records)
}

// View 过滤视图：显式分配优先，其次建议板块
func (s *Session) View(sel filter.Selection) []Row {
	s.mu.RLock()
	defer s.mu.RUnlock()

	filtered := filter.Apply(s.records, sel)
	rows := make([]Row, 0, len(filtered))
	for _, r := range filtered {
		code, suggested, _ := s.state.Assignments.Resolve(r.FullName, r.Area)
		contact, _ := s.state.Contacts.Get(r.FullName)
		rows = append(rows, Row{
			PersonRecord: r,
			Sector:       code,
			Suggested:    suggested,
			SectorLabel:  code.Label(),
			LastContact:  contact,
		})
	}
	return rows
}

// Groups 各板块成员
func (s *Session) Groups() []ledger.SectorGroup {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Assignments.Groups()
}

// Assignments 全部分配条目
func (s *Session) Assignments() []ledger.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Assignments.Entries()
}

// AssignedPeople 可登记联系日期的人员（已分配者）
func (s *Session) AssignedPeople() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Assignments.Names()
}

// Charts 基于过滤后的记录计算图表
func (s *Session) Charts(sel filter.Selection) aggregate.Charts {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return aggregate.Build(filter.Apply(s.records, sel), s.state.Assignments)
}

// Alerts 沟通提醒；today 为零值时取当前日期
func (s *Session) Alerts(today time.Time) alert.Result {
	if today.IsZero() {
		today = s.opts.Now()
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return alert.Evaluate(s.state.Assignments, s.state.Contacts, today, s.opts.ThresholdDays)
}

// Search 按姓名模糊搜索（数据集记录 + 台账中的姓名）
func (s *Session) Search(q string, limit int) []string {
	s.mu.RLock()
	seen := make(map[string]struct{}, len(s.records))
	names := make([]string, 0, len(s.records))
	add := func(n string) {
		if n == "" {
			return
		}
		if _, ok := seen[n]; ok {
			return
		}
		seen[n] = struct{}{}
		names = append(names, n)
	}
	for _, r := range s.records {
		add(r.FullName)
	}
	for _, n := range s.state.Assignments.Names() {
		add(n)
	}
	s.mu.RUnlock()

	if q == "" {
		sort.Strings(names)
		return truncate(names, limit)
	}

	ranks := fuzzy.RankFindNormalizedFold(q, names)
	sort.Sort(ranks)
	out := make([]string, 0, len(ranks))
	for _, r := range ranks {
		out = append(out, r.Target)
	}
	return truncate(out, limit)
}

func truncate(values []string, limit int) []string {
	if limit > 0 && len(values) > limit {
		return values[:limit]
	}
	return values
}
