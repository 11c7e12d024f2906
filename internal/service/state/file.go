package state

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/PascmdeoMvd/Plataforma/internal/ledger"
)

// FileRepository 以 JSON 文件保存面板状态
type FileRepository struct {
	path string
}

// NewFileRepository 创建文件仓库
func NewFileRepository(path string) (*FileRepository, error) {
	if path == "" {
		return nil, errors.New("state file path is required")
	}
	return &FileRepository{path: path}, nil
}

// Path 文件路径
func (r *FileRepository) Path() string {
	return r.path
}

// Load 读取状态；文件不存在时返回空状态
func (r *FileRepository) Load(ctx context.Context) (ledger.PanelState, error) {
	if err := ctx.Err(); err != nil {
		return ledger.PanelState{}, err
	}
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return ledger.NewPanelState(), nil
		}
		return ledger.PanelState{}, fmt.Errorf("failed to read state file: %w", err)
	}
	return Import(data)
}

// Save 原子写入（先写临时文件再重命名）
func (r *FileRepository) Save(ctx context.Context, ps ledger.PanelState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := Export(ps)
	if err != nil {
		return err
	}
	return writeFileAtomic(r.path, data)
}

func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	return os.Rename(tmp, path)
}
