package worker

import (
	"context"
	"fmt"
	"sync"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/atomic"

	"rbx/logicore/internal/domains"
	"rbx/logicore/internal/domains/common"
	"rbx/logicore/internal/framework"
	"rbx/logicore/internal/rate/setup"
	"rbx/logicore/pkg/config"
	"rbx/logicore/pkg/infra/redis"
	"rbx/logicore/pkg/lmstfy"
	"rbx/logicore/pkg/lmstfyx"
	"rbx/logicore/pkg/logger"
)

// Manager 接口
type Manager interface {
	Start() error
	Shutdown()
}

// ManagerInstance Manager 实例
type ManagerInstance struct {
	ctx        context.Context
	cfg        *config.Config
	source     framework.MessageSource
	proc       lmstfyx.Proc
	cleanup    func()
	workers    []Worker
	closing    *atomic.Bool
	shutdownCh chan struct{}
	wg         sync.WaitGroup
	logger     logger.Logger
}

// NewManagerInstance 创建 Manager，组装 lmstfy、Redis 和报价服务
func NewManagerInstance(cfg *config.Config, log logger.Logger) (Manager, error) {
	ctx := context.Background()

	// 1. lmstfy 客户端
	lmstfyClient, err := lmstfy.NewClient(cfg.Lmstfy)
	if err != nil {
		return nil, fmt.Errorf("failed to create lmstfy client: %w", err)
	}

	// 2. Redis（报价结果推送）
	rdb, err := redis.NewClient(cfg.Redis)
	if err != nil {
		return nil, err
	}

	// 3. 报价服务
	svc, closeRates, err := setup.QuoteService(ctx, cfg, log)
	if err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to create quote service: %w", err)
	}

	deps := &common.Deps{
		Quote:     svc,
		Publisher: redis.NewPubSub(rdb),
		Logger:    log,
	}

	log.Infof(ctx, "[Manager] Initialized, redis: %s, lmstfy: %s:%d", cfg.Redis.Addr, cfg.Lmstfy.Host, cfg.Lmstfy.Port)

	return newManager(ctx, cfg, lmstfyClient, domains.GetProcess(log, deps), closer(rdb, closeRates), log), nil
}

func newManager(ctx context.Context, cfg *config.Config, source framework.MessageSource, proc lmstfyx.Proc, cleanup func(), log logger.Logger) *ManagerInstance {
	return &ManagerInstance{
		ctx:        ctx,
		cfg:        cfg,
		source:     source,
		proc:       proc,
		cleanup:    cleanup,
		closing:    atomic.NewBool(false),
		shutdownCh: make(chan struct{}),
		workers:    make([]Worker, 0),
		logger:     log,
	}
}

func closer(rdb *goredis.Client, closeRates func()) func() {
	return func() {
		closeRates()
		_ = rdb.Close()
	}
}

// Start 启动 Manager
func (m *ManagerInstance) Start() error {
	m.logger.Infof(m.ctx, "[Manager] Starting...")

	// 1. 加载所有 Worker
	if err := m.loadWorkers(); err != nil {
		return fmt.Errorf("failed to load workers: %w", err)
	}

	m.logger.Infof(m.ctx, "[Manager] All workers loaded, count: %d", len(m.workers))

	// 2. 启动所有 Worker（每个 Worker 在独立 goroutine）
	for _, worker := range m.workers {
		w := worker
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			w.Start()
		}()
		m.logger.Infof(m.ctx, "[Manager] Worker started: %s", w.GetName())
	}

	m.logger.Infof(m.ctx, "[Manager] Start success")

	// 3. 阻塞等待退出信号
	<-m.shutdownCh

	return nil
}

// Shutdown 优雅退出
func (m *ManagerInstance) Shutdown() {
	m.logger.Infof(m.ctx, "[Manager] Began to close")

	if m.closing.CAS(false, true) {
		// 1. 所有 Worker 安全退出
		for _, worker := range m.workers {
			m.logger.Infof(m.ctx, "[Manager] Shutting down worker: %s", worker.GetName())
			worker.Shutdown()
		}

		// 2. 等待所有 Worker 退出
		m.wg.Wait()

		// 3. 释放连接
		if m.cleanup != nil {
			m.cleanup()
		}

		close(m.shutdownCh)
		m.logger.Infof(m.ctx, "[Manager] Shutdown complete")
	}
}

// loadWorkers 每个 worker 配置对应一个 Worker，共享同一个队列客户端和处理函数
func (m *ManagerInstance) loadWorkers() error {
	if len(m.cfg.Workers) == 0 {
		return fmt.Errorf("no workers configured")
	}
	for _, workerCfg := range m.cfg.Workers {
		if workerCfg.QueueName == "" {
			return fmt.Errorf("worker %q has no queue_name", workerCfg.Name)
		}
		m.workers = append(m.workers, NewWorkerInstance(m.ctx, workerCfg, m.source, m.proc, m.logger))
	}
	return nil
}
