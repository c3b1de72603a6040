package securestore

import (
	"context"
	"errors"
	"sync"
)

// ErrQuotaExceeded 后端容量不足
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// Backend 原始字符串存储（外部协作方）
type Backend interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// MemoryBackend 进程内存储；quota > 0 时限制 key+value 总字节数
type MemoryBackend struct {
	mu    sync.RWMutex
	items map[string]string
	quota int
	used  int
}

// NewMemoryBackend 创建内存后端
func NewMemoryBackend(quota int) *MemoryBackend {
	return &MemoryBackend{
		items: make(map[string]string),
		quota: quota,
	}
}

// Get 实现 Backend
func (m *MemoryBackend) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.items[key]
	return v, ok, nil
}

// Set 实现 Backend
func (m *MemoryBackend) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	used := m.used + entrySize(key, value)
	if old, ok := m.items[key]; ok {
		used -= entrySize(key, old)
	}
	if m.quota > 0 && used > m.quota {
		return ErrQuotaExceeded
	}

	m.items[key] = value
	m.used = used
	return nil
}

// Delete 实现 Backend
func (m *MemoryBackend) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if old, ok := m.items[key]; ok {
		m.used -= entrySize(key, old)
		delete(m.items, key)
	}
	return nil
}

// Clear 实现 Backend
func (m *MemoryBackend) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items = make(map[string]string)
	m.used = 0
	return nil
}

// Len 条目数
func (m *MemoryBackend) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

func entrySize(key, value string) int {
	return len(key) + len(value)
}
