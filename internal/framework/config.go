package framework

import (
	"time"

	"rbx/logicore/pkg/config"
)

const (
	defaultConsumeTimeout = 3 * time.Second
	defaultTTR            = 30 * time.Second
	defaultErrorBackoff   = time.Second
)

// SubscriberConfig 拉取侧配置
type SubscriberConfig struct {
	QueueName    string
	Concurrency  int
	Timeout      time.Duration // 单次 Consume 阻塞上限
	TTR          time.Duration // 未 ACK 的消息在 TTR 后重新投递
	Rate         time.Duration // 两次拉取的间隔
	ErrorBackoff time.Duration
}

// ProcessorConfig 处理侧配置
type ProcessorConfig struct {
	Concurrency int
	BufferSize  int
	Timeout     time.Duration
}

// NewSubscriberConfig 由 worker 配置生成，未填写的项取默认值
func NewSubscriberConfig(w config.WorkerConfig) *SubscriberConfig {
	cfg := &SubscriberConfig{
		QueueName:    w.QueueName,
		Concurrency:  w.Subscriber.Threads,
		Timeout:      w.Subscriber.Timeout,
		TTR:          w.Subscriber.TTR,
		Rate:         w.Subscriber.Rate,
		ErrorBackoff: w.Subscriber.ErrorBackoff,
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultConsumeTimeout
	}
	if cfg.TTR <= 0 {
		cfg.TTR = defaultTTR
	}
	if cfg.ErrorBackoff <= 0 {
		cfg.ErrorBackoff = defaultErrorBackoff
	}
	return cfg
}

// NewProcessorConfig 由 worker 配置生成
// 处理超时不超过 TTR，否则消息可能在处理中途被重新投递
func NewProcessorConfig(w config.WorkerConfig) *ProcessorConfig {
	cfg := &ProcessorConfig{
		Concurrency: w.Processor.Threads,
		BufferSize:  w.Processor.BufferSize,
		Timeout:     w.Processor.Timeout,
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.BufferSize < 0 {
		cfg.BufferSize = 0
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultProcessTimeout
	}
	if ttr := w.Subscriber.TTR; ttr > 0 && cfg.Timeout > ttr {
		cfg.Timeout = ttr
	}
	return cfg
}
