package scheduler

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Registry 任务注册表管理器
type Registry struct {
	filePath string
	registry *TaskRegistry
	mu       sync.RWMutex
}

// NewRegistry 创建任务注册表
func NewRegistry(runDir string) *Registry {
	return &Registry{
		filePath: filepath.Join(runDir, "tasks.json"),
		registry: &TaskRegistry{
			Tasks: make([]*TaskConfig, 0),
		},
	}
}

// Load 从文件加载任务状态
func (r *Registry) Load() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			r.registry = &TaskRegistry{Tasks: make([]*TaskConfig, 0)}
			return nil
		}
		return fmt.Errorf("failed to read tasks file: %w", err)
	}

	var registry TaskRegistry
	if err := json.Unmarshal(data, &registry); err != nil {
		return fmt.Errorf("failed to parse tasks file: %w", err)
	}

	r.registry = &registry
	return nil
}

// Save 保存任务状态到文件
func (r *Registry) Save() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	data, err := json.MarshalIndent(r.registry, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal tasks: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(r.filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(r.filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write tasks file: %w", err)
	}

	return nil
}

// GetTask 获取指定 ID 的任务状态副本，不存在返回 nil
func (r *Registry) GetTask(id string) *TaskConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, task := range r.registry.Tasks {
		if task.ID == id {
			copied := *task
			return &copied
		}
	}
	return nil
}

// GetAllTasks 获取所有任务状态
func (r *Registry) GetAllTasks() []TaskConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tasks := make([]TaskConfig, 0, len(r.registry.Tasks))
	for _, task := range r.registry.Tasks {
		tasks = append(tasks, *task)
	}
	return tasks
}

// PutTask 新增或更新任务状态
func (r *Registry) PutTask(config TaskConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, task := range r.registry.Tasks {
		if task.ID == config.ID {
			r.registry.Tasks[i] = &config
			return
		}
	}
	r.registry.Tasks = append(r.registry.Tasks, &config)
}
