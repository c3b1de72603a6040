package framework

import (
	"context"
	"sync"
	"time"

	"rbx/logicore/pkg/logger"
)

// Subscriber 从队列拉取消息写入 channel
type Subscriber struct {
	cfg    *SubscriberConfig
	source MessageSource
	logger logger.Logger
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSubscriber 创建订阅者
func NewSubscriber(cfg *SubscriberConfig, source MessageSource, log logger.Logger) *Subscriber {
	return &Subscriber{
		cfg:    cfg,
		source: source,
		logger: log,
	}
}

// Start 启动 cfg.Concurrency 个拉取协程
func (s *Subscriber) Start(parent context.Context, out chan<- *Message) error {
	ctx, cancel := context.WithCancel(parent)
	s.cancel = cancel

	s.logger.Infof(ctx, "[Subscriber] Consuming %s with %d workers", s.cfg.QueueName, s.cfg.Concurrency)
	for i := 0; i < s.cfg.Concurrency; i++ {
		s.wg.Add(1)
		go s.loop(ctx, i, out)
	}
	return nil
}

// Stop 停止拉取；正在阻塞的 Consume 在超时后返回
func (s *Subscriber) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
}

// Wait 等待所有拉取协程退出
func (s *Subscriber) Wait() {
	s.wg.Wait()
	s.logger.Infof(context.Background(), "[Subscriber] %s stopped", s.cfg.QueueName)
}

func (s *Subscriber) loop(ctx context.Context, workerID int, out chan<- *Message) {
	defer s.wg.Done()

	for ctx.Err() == nil {
		msg, err := s.source.Consume(s.cfg.QueueName, s.cfg.Timeout, s.cfg.TTR)
		if err != nil {
			s.logger.Warnf(ctx, "[Subscriber-%d] Consume failed, backing off: %v", workerID, err)
			if !sleepCtx(ctx, s.cfg.ErrorBackoff) {
				return
			}
			continue
		}
		if msg == nil {
			continue
		}
		if msg.ReceivedAt.IsZero() {
			msg.ReceivedAt = time.Now()
		}

		// 关闭期间拉到的消息不转发也不 ACK，TTR 后重新投递
		select {
		case out <- msg:
		case <-ctx.Done():
			s.logger.Warnf(ctx, "[Subscriber-%d] Shutting down, leaving %s for redelivery", workerID, msg.ID)
			return
		}

		if !sleepCtx(ctx, s.cfg.Rate) {
			return
		}
	}
}

// sleepCtx 可取消的等待，ctx 结束返回 false
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
