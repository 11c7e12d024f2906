package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// ImportLog 上传记录
type ImportLog struct {
	ID           int64      `json:"id"`
	DatasetID    string     `json:"datasetId"`
	FileName     string     `json:"fileName"`
	Format       string     `json:"format"`
	FileSize     int64      `json:"fileSize"`
	FileHash     string     `json:"fileHash"`
	Status       string     `json:"status"`
	ImportedRows int        `json:"importedRows"`
	ErrorMessage string     `json:"errorMessage,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
}

// CreateImportLog 创建上传日志，返回 import_log_id
func (s *Store) CreateImportLog(ctx context.Context, filename string, fileSize int64, fileHash string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO import_logs (filename, file_size, file_hash, status)
		VALUES (?, ?, ?, 'processing')
	`, filename, fileSize, fileHash)
	if err != nil {
		return 0, fmt.Errorf("failed to create import log: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get import log id: %w", err)
	}
	return id, nil
}

// CompleteImportLog 成功完成
func (s *Store) CompleteImportLog(ctx context.Context, id int64, datasetID, format string, rows int) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE import_logs SET
			dataset_id = ?,
			format = ?,
			imported_rows = ?,
			status = 'completed',
			completed_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, datasetID, format, rows, id)
	if err != nil {
		return fmt.Errorf("failed to update import log: %w", err)
	}
	return nil
}

// FailImportLog 记录失败原因
func (s *Store) FailImportLog(ctx context.Context, id int64, message string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE import_logs SET
			status = 'failed',
			error_message = ?,
			completed_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, message, id)
	if err != nil {
		return fmt.Errorf("failed to update import log: %w", err)
	}
	return nil
}

// ListImportLogs 最近的上传记录（新的在前）
func (s *Store) ListImportLogs(ctx context.Context, limit int) ([]ImportLog, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, dataset_id, filename, format, file_size, file_hash, status,
			imported_rows, error_message, created_at, completed_at
		FROM import_logs
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query import logs: %w", err)
	}
	defer rows.Close()

	out := []ImportLog{}
	for rows.Next() {
		var (
			item      ImportLog
			datasetID sql.NullString
			format    sql.NullString
			fileHash  sql.NullString
			errMsg    sql.NullString
			completed sql.NullTime
		)
		if err := rows.Scan(&item.ID, &datasetID, &item.FileName, &format, &item.FileSize, &fileHash,
			&item.Status, &item.ImportedRows, &errMsg, &item.CreatedAt, &completed); err != nil {
			return nil, fmt.Errorf("failed to scan import log: %w", err)
		}
		item.DatasetID = datasetID.String
		item.Format = format.String
		item.FileHash = fileHash.String
		item.ErrorMessage = errMsg.String
		if completed.Valid {
			t := completed.Time
			item.CompletedAt = &t
		}
		out = append(out, item)
	}
	return out, rows.Err()
}
