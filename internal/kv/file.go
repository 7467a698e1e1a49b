package kv

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore JSON 文件存储实现，每个键对应数据目录下的一个文件
type FileStore struct {
	dataDir string
}

// NewFileStore 创建文件存储实例
func NewFileStore(dataDir string) (*FileStore, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileStore{dataDir: dataDir}, nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dataDir, key+".json")
}

// Get 读取键对应的文件
func (s *FileStore) Get(_ context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read data file: %w", err)
	}
	return data, nil
}

// Put 写入键对应的文件
// 先写临时文件再重命名，避免写到一半时留下损坏的 JSON
func (s *FileStore) Put(_ context.Context, key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dataDir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write data file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close data file: %w", err)
	}

	if err := os.Rename(tmpName, s.path(key)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename data file: %w", err)
	}
	return nil
}

// Delete 删除键对应的文件
func (s *FileStore) Delete(_ context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove data file: %w", err)
	}
	return nil
}

// Close 文件存储无需释放资源
func (s *FileStore) Close() error {
	return nil
}
