package ledger

import "github.com/PascmdeoMvd/Plataforma/internal/model"

// PanelState 可序列化的面板状态：分配台账 + 联系台账
type PanelState struct {
	Assignments *Assignments
	Contacts    *Contacts
}

// NewPanelState 会话开始时的空状态
func NewPanelState() PanelState {
	return PanelState{
		Assignments: NewAssignments(),
		Contacts:    NewContacts(),
	}
}

// FromMaps 由普通 map 构造状态（导入/持久化恢复使用）
func FromMaps(assignments, contacts map[string]string) PanelState {
	ps := NewPanelState()
	for name, code := range assignments {
		ps.Assignments.Set(name, model.SectorCode(code))
	}
	for name, date := range contacts {
		ps.Contacts.Set(name, date)
	}
	return ps
}

// Clone 深拷贝
func (ps PanelState) Clone() PanelState {
	return FromMaps(ps.Assignments.Map(), ps.Contacts.Map())
}

// Empty 两个台账是否都为空
func (ps PanelState) Empty() bool {
	return ps.Assignments.Len() == 0 && ps.Contacts.Len() == 0
}
