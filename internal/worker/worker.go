package worker

import (
	"context"
	"sync"

	"rbx/logicore/internal/framework"
	"rbx/logicore/pkg/config"
	"rbx/logicore/pkg/lmstfyx"
	"rbx/logicore/pkg/logger"
)

// Worker 一个队列对应一个 Worker
type Worker interface {
	Start()
	Shutdown()
	GetName() string
}

// WorkerInstance Subscriber → buffered channel → Processor
type WorkerInstance struct {
	ctx        context.Context
	name       string
	subscriber *framework.Subscriber
	processor  *framework.Processor
	buffer     chan *framework.Message
	stopOnce   sync.Once
	done       chan struct{}
	logger     logger.Logger
}

// NewWorkerInstance 按 worker 配置创建实例
func NewWorkerInstance(ctx context.Context, cfg config.WorkerConfig, source framework.MessageSource, proc lmstfyx.Proc, log logger.Logger) *WorkerInstance {
	subCfg := framework.NewSubscriberConfig(cfg)
	procCfg := framework.NewProcessorConfig(cfg)

	name := cfg.Name
	if name == "" {
		name = cfg.QueueName
	}
	return &WorkerInstance{
		ctx:        ctx,
		name:       name,
		subscriber: framework.NewSubscriber(subCfg, source, log),
		processor:  framework.NewProcessor(procCfg, proc, source, log),
		buffer:     make(chan *framework.Message, procCfg.BufferSize),
		done:       make(chan struct{}),
		logger:     log,
	}
}

// Start 启动处理侧再启动拉取侧，阻塞到 Shutdown 完成
func (w *WorkerInstance) Start() {
	w.logger.Infof(w.ctx, "[Worker] %s started", w.name)

	_ = w.processor.Start(w.ctx, w.buffer)
	_ = w.subscriber.Start(w.ctx, w.buffer)

	<-w.done
}

// Shutdown 先停拉取，等拉取协程退出后再让 Processor 排空缓冲区
func (w *WorkerInstance) Shutdown() {
	w.stopOnce.Do(func() {
		w.logger.Infof(w.ctx, "[Worker] %s shutting down", w.name)

		w.subscriber.Stop()
		w.subscriber.Wait()

		w.processor.SignalShutdown()
		w.processor.Wait()

		close(w.done)
		w.logger.Infof(w.ctx, "[Worker] %s shutdown complete", w.name)
	})
}

// GetName Worker 名称
func (w *WorkerInstance) GetName() string {
	return w.name
}
