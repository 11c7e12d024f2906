package state

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/PascmdeoMvd/Plataforma/internal/ledger"
)

const (
	fieldAssignments = "asignaciones"
	fieldContacts    = "ultima_comunicacion"
)

// Document 持久化的 JSON 文档结构
type Document struct {
	Assignments map[string]string `json:"asignaciones"`
	Contacts    map[string]string `json:"ultima_comunicacion"`
}

// ImportError 导入的文档不是合法 JSON 或结构不符
type ImportError struct {
	Reason string
	Err    error
}

func (e *ImportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("import state: %s: %v", e.Reason, e.Err)
	}
	return "import state: " + e.Reason
}

func (e *ImportError) Unwrap() error {
	return e.Err
}

// Export 导出面板状态，两空格缩进
func Export(ps ledger.PanelState) ([]byte, error) {
	doc := Document{
		Assignments: ps.Assignments.Map(),
		Contacts:    ps.Contacts.Map(),
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal state: %w", err)
	}
	return append(data, '\n'), nil
}

// Import 解析状态文档，返回新的面板状态（调用方负责整体替换）
// 两个字段都缺失、字段不是对象或值不是字符串时返回 *ImportError；值为 null 的条目忽略
func Import(doc []byte) (ledger.PanelState, error) {
	doc = bytes.TrimSpace(doc)
	if len(doc) == 0 {
		return ledger.PanelState{}, &ImportError{Reason: "empty document"}
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(doc, &raw); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return ledger.PanelState{}, &ImportError{Reason: "invalid JSON", Err: err}
		}
		return ledger.PanelState{}, &ImportError{Reason: "document must be a JSON object", Err: err}
	}
	if raw == nil {
		return ledger.PanelState{}, &ImportError{Reason: "document must be a JSON object"}
	}

	_, hasAssignments := raw[fieldAssignments]
	_, hasContacts := raw[fieldContacts]
	if !hasAssignments && !hasContacts {
		return ledger.PanelState{}, &ImportError{
			Reason: fmt.Sprintf("expected %q and/or %q fields", fieldAssignments, fieldContacts),
		}
	}

	assignments, err := decodeStringMap(raw, fieldAssignments)
	if err != nil {
		return ledger.PanelState{}, err
	}
	contacts, err := decodeStringMap(raw, fieldContacts)
	if err != nil {
		return ledger.PanelState{}, err
	}
	return ledger.FromMaps(assignments, contacts), nil
}

func decodeStringMap(raw map[string]json.RawMessage, field string) (map[string]string, error) {
	msg, ok := raw[field]
	if !ok || string(msg) == "null" {
		return map[string]string{}, nil
	}

	var values map[string]*string
	if err := json.Unmarshal(msg, &values); err != nil {
		return nil, &ImportError{Reason: fmt.Sprintf("field %q must be an object of strings", field), Err: err}
	}

	out := make(map[string]string, len(values))
	for k, v := range values {
		if v == nil {
			continue
		}
		out[k] = *v
	}
	return out, nil
}
