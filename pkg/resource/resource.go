// Package resource 异步资源的状态机：idle → loading → success | error。
//
// Resource 可重复加载；Wait 会阻塞到当前这一轮加载结束。
package resource

import (
	"context"
	"sync"
	"time"
)

// Status 资源状态
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Settled 是否已结束（成功或失败）
func (s Status) Settled() bool {
	return s == StatusSuccess || s == StatusError
}

// Snapshot 资源某一时刻的只读视图
type Snapshot[T any] struct {
	Status    Status
	Data      T
	Err       error
	UpdatedAt time.Time
}

// Resource 异步资源，可并发使用
type Resource[T any] struct {
	mu        sync.Mutex
	status    Status
	data      T
	err       error
	updatedAt time.Time
	done      chan struct{}
	now       func() time.Time // 状态变化的时间戳来源
}

// New 创建 idle 状态的资源
func New[T any]() *Resource[T] {
	return newWithClock[T](time.Now)
}

// newWithClock 使用指定时钟，Registry 借此让打点与过期判断用同一个时钟
func newWithClock[T any](now func() time.Time) *Resource[T] {
	return &Resource[T]{
		status:    StatusIdle,
		updatedAt: now(),
		done:      make(chan struct{}),
		now:       now,
	}
}

// Begin 进入 loading；已结束的资源会开启新一轮
func (r *Resource[T]) Begin() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status.Settled() {
		r.done = make(chan struct{})
	}
	r.status = StatusLoading
	r.err = nil
	r.updatedAt = r.now()
}

// Resolve 成功结束；重复结束只保留第一次
func (r *Resource[T]) Resolve(v T) bool {
	return r.settle(StatusSuccess, v, nil)
}

// Reject 失败结束；重复结束只保留第一次
func (r *Resource[T]) Reject(err error) bool {
	var zero T
	return r.settle(StatusError, zero, err)
}

func (r *Resource[T]) settle(status Status, v T, err error) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status.Settled() {
		return false
	}
	r.status = status
	if status == StatusSuccess {
		r.data = v
	}
	r.err = err
	r.updatedAt = r.now()
	close(r.done)
	return true
}

// Load 执行一次加载并记录结果
func (r *Resource[T]) Load(ctx context.Context, fetch func(ctx context.Context) (T, error)) (T, error) {
	r.Begin()
	v, err := fetch(ctx)
	if err != nil {
		r.Reject(err)
		return v, err
	}
	r.Resolve(v)
	return v, nil
}

// Snapshot 当前状态
func (r *Resource[T]) Snapshot() Snapshot[T] {
	r.mu.Lock()
	defer r.mu.Unlock()

	return Snapshot[T]{
		Status:    r.status,
		Data:      r.data,
		Err:       r.err,
		UpdatedAt: r.updatedAt,
	}
}

// Wait 等待本轮加载结束；ctx 先结束时返回当前快照与 ctx 错误
func (r *Resource[T]) Wait(ctx context.Context) (Snapshot[T], error) {
	r.mu.Lock()
	done := r.done
	r.mu.Unlock()

	select {
	case <-done:
		return r.Snapshot(), nil
	case <-ctx.Done():
		return r.Snapshot(), ctx.Err()
	}
}
