package resource

import (
	"sync"
	"time"
)

// Registry 按 id 管理资源，最后一次状态变化超过 TTL 的资源会被淘汰
// loading 中的资源同样会过期，避免结果永远不到时常驻内存
type Registry[T any] struct {
	mu    sync.Mutex
	items map[string]*Resource[T]
	ttl   time.Duration
	now   func() time.Time
}

// NewRegistry 创建注册表；ttl <= 0 表示不过期
func NewRegistry[T any](ttl time.Duration) *Registry[T] {
	return &Registry[T]{
		items: make(map[string]*Resource[T]),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Start 注册并开始加载一个资源（已存在则开启新一轮）
func (g *Registry[T]) Start(id string) *Resource[T] {
	g.mu.Lock()
	defer g.mu.Unlock()

	res, ok := g.items[id]
	if !ok {
		res = newWithClock[T](g.clock)
		g.items[id] = res
	}
	res.Begin()
	return res
}

// Get 查询资源，已过期的视为不存在
func (g *Registry[T]) Get(id string) (*Resource[T], bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	res, ok := g.items[id]
	if !ok {
		return nil, false
	}
	if g.expired(res) {
		delete(g.items, id)
		return nil, false
	}
	return res, true
}

// Delete 删除资源
func (g *Registry[T]) Delete(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.items, id)
}

// Evict 清理过期资源，返回清理数量
func (g *Registry[T]) Evict() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	n := 0
	for id, res := range g.items {
		if g.expired(res) {
			delete(g.items, id)
			n++
		}
	}
	return n
}

// Len 当前资源数
func (g *Registry[T]) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.items)
}

// clock 读取当前的 g.now，测试替换时钟后已创建的资源同样生效
func (g *Registry[T]) clock() time.Time {
	return g.now()
}

func (g *Registry[T]) expired(res *Resource[T]) bool {
	if g.ttl <= 0 {
		return false
	}
	return g.now().Sub(res.Snapshot().UpdatedAt) > g.ttl
}
