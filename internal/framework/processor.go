package framework

import (
	"context"
	"sync"
	"time"

	"github.com/bitleak/lmstfy/client"

	"rbx/logicore/pkg/lmstfyx"
	"rbx/logicore/pkg/logger"
)

const defaultProcessTimeout = 30 * time.Second

// Processor 从 channel 取消息交给 proc，并按返回的动作决定是否 ACK
type Processor struct {
	cfg      *ProcessorConfig
	proc     lmstfyx.Proc
	source   MessageSource
	logger   logger.Logger
	draining chan struct{}
	once     sync.Once
	wg       sync.WaitGroup
}

// NewProcessor 创建处理器
func NewProcessor(cfg *ProcessorConfig, proc lmstfyx.Proc, source MessageSource, log logger.Logger) *Processor {
	return &Processor{
		cfg:      cfg,
		proc:     proc,
		source:   source,
		logger:   log,
		draining: make(chan struct{}),
	}
}

// Start 启动 cfg.Concurrency 个处理协程
func (p *Processor) Start(ctx context.Context, in <-chan *Message) error {
	p.logger.Infof(ctx, "[Processor] Starting with %d workers", p.cfg.Concurrency)

	for i := 0; i < p.cfg.Concurrency; i++ {
		p.wg.Add(1)
		go p.loop(ctx, i, in)
	}
	return nil
}

// SignalShutdown 进入 drain：处理完 channel 中剩余消息后退出，可重复调用
func (p *Processor) SignalShutdown() {
	p.once.Do(func() {
		p.logger.Infof(context.Background(), "[Processor] Draining")
		close(p.draining)
	})
}

// Wait 等待所有处理协程退出
func (p *Processor) Wait() {
	p.wg.Wait()
	p.logger.Infof(context.Background(), "[Processor] All workers exited")
}

func (p *Processor) loop(ctx context.Context, workerID int, in <-chan *Message) {
	defer p.wg.Done()

	for {
		select {
		case msg := <-in:
			p.process(ctx, workerID, msg)
		case <-p.draining:
			drained := 0
			for {
				select {
				case msg := <-in:
					p.process(ctx, workerID, msg)
					drained++
				default:
					p.logger.Infof(ctx, "[Processor-%d] Drained %d messages, exiting", workerID, drained)
					return
				}
			}
		}
	}
}

func (p *Processor) process(ctx context.Context, workerID int, msg *Message) {
	if msg == nil {
		return
	}
	start := time.Now()

	timeout := p.cfg.Timeout
	if timeout <= 0 {
		timeout = defaultProcessTimeout
	}
	procCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	procCtx = logger.WithWorkerID(procCtx, workerID)
	procCtx = logger.WithMessageID(procCtx, msg.ID)

	if !msg.ReceivedAt.IsZero() {
		p.logger.Debugf(procCtx, "[Processor-%d] Picked up %s after %v in buffer", workerID, msg.ID, start.Sub(msg.ReceivedAt))
	}

	resp := p.proc(procCtx, &client.Job{ID: msg.ID, Queue: msg.Queue, Data: msg.Data})
	if resp == nil {
		resp = &lmstfyx.JobResp{Action: lmstfyx.JobRespStatusRelease}
	}

	p.logger.Infof(procCtx, "[Processor-%d] Message %s done: action=%s, duration=%v",
		workerID, msg.ID, resp.Action, time.Since(start))

	if !resp.Action.Acks() {
		// 不 ACK，TTR 到期后由队列重新投递
		p.logger.Warnf(procCtx, "[Processor-%d] Leaving %s for redelivery", workerID, msg.ID)
		return
	}
	if err := p.source.Ack(msg.Queue, msg.ID); err != nil {
		p.logger.Errorf(procCtx, "[Processor-%d] Ack %s failed: %v", workerID, msg.ID, err)
	}
}
