package session

import (
	"context"
	"errors"

	"github.com/PascmdeoMvd/Plataforma/internal/ledger"
	"github.com/PascmdeoMvd/Plataforma/internal/model"
)

var (
	// ErrUnknownSector 板块代码不在目录中
	ErrUnknownSector = errors.New("unknown sector code")
	// ErrNoDataset 尚未上传数据集
	ErrNoDataset = errors.New("no dataset loaded")
	// ErrEmptyPerson 缺少人员标识
	ErrEmptyPerson = errors.New("person name is required")
)

// Repository 面板状态的持久化边界：启动时加载，按需保存
type Repository interface {
	Load(ctx context.Context) (ledger.PanelState, error)
	Save(ctx context.Context, ps ledger.PanelState) error
}

// ChangeKind 命令类型
type ChangeKind string

const (
	ChangeAssignment  ChangeKind = "assignment"
	ChangeContact     ChangeKind = "contact"
	ChangeImportState ChangeKind = "import_state"
	ChangeDataset     ChangeKind = "dataset"
	ChangeGrid        ChangeKind = "grid"
)

// Change 命令执行后的变更描述
type Change struct {
	Kind     ChangeKind `json:"kind"`
	PersonID string     `json:"person,omitempty"`
	Before   string     `json:"before,omitempty"`
	After    string     `json:"after,omitempty"`
	Existed  bool       `json:"existed"`
	Changed  bool       `json:"changed"`

	Assignments int `json:"assignments,omitempty"`
	Contacts    int `json:"contacts,omitempty"`
	Rows        int `json:"rows,omitempty"`

	Details []Change `json:"details,omitempty"`
}

// GridEdit 表格中一行的编辑（板块和/或最近联系日期）
type GridEdit struct {
	PersonID    string  `json:"nombre_completo" binding:"required"`
	Sector      *string `json:"sector"`
	LastContact *string `json:"ultima_comunicacion"`
}

// Row 过滤视图中的一行：记录 + 台账信息
type Row struct {
	model.PersonRecord
	Sector      model.SectorCode `json:"sector"`
	Suggested   bool             `json:"suggested"`
	SectorLabel string           `json:"sector_descriptivo"`
	LastContact string           `json:"ultima_comunicacion"`
}
