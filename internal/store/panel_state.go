package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/PascmdeoMvd/Plataforma/internal/ledger"
	"github.com/PascmdeoMvd/Plataforma/internal/service/state"
)

const currentSlot = "current"

// Load 读取当前面板状态；尚未保存过时返回空状态
func (s *Store) Load(ctx context.Context) (ledger.PanelState, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, "SELECT document FROM panel_state WHERE slot = ?", currentSlot).Scan(&doc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ledger.NewPanelState(), nil
		}
		return ledger.PanelState{}, fmt.Errorf("failed to load panel state: %w", err)
	}
	return state.Import([]byte(doc))
}

// Save 覆盖保存当前面板状态
func (s *Store) Save(ctx context.Context, ps ledger.PanelState) error {
	doc, err := state.Export(ps)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO panel_state (slot, document, assignments, contacts) VALUES (?, ?, ?, ?)
		ON CONFLICT(slot) DO UPDATE SET
			document = excluded.document,
			assignments = excluded.assignments,
			contacts = excluded.contacts,
			updated_at = CURRENT_TIMESTAMP
	`, currentSlot, string(doc), ps.Assignments.Len(), ps.Contacts.Len())
	if err != nil {
		return fmt.Errorf("failed to save panel state: %w", err)
	}
	return nil
}
