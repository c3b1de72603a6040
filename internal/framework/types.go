package framework

import "time"

// Message 框架内部流转的消息
type Message struct {
	ID         string
	Queue      string
	Data       []byte
	ReceivedAt time.Time // 从队列取出的时间，用于统计排队耗时
}
