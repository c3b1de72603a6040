package framework

import (
	"time"
)

// MessageSource 队列适配接口，lmstfy 与测试桩都实现它
type MessageSource interface {
	// Consume 阻塞至拉到消息或超时；超时返回 (nil, nil)
	Consume(queue string, timeout time.Duration, ttr time.Duration) (*Message, error)

	// Ack 删除消息；不 ACK 的消息在 TTR 后重新投递
	Ack(queue string, jobID string) error
}
