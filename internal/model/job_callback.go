package model

import "fmt"

// QuoteCallback 报价结果回调消息（标准化）
// 用于 worker → apiserver 的 Redis Pub/Sub 推送
type QuoteCallback struct {
	RequestID   string       `json:"request_id"`           // 对应请求的 request_id（链路追踪）
	QuoteID     string       `json:"quote_id"`             // 报价 ID
	Status      string       `json:"status"`               // 回调状态: SUCCESS / FAILED
	Result      *QuoteResult `json:"result,omitempty"`     // 报价结果（成功时返回）
	Error       string       `json:"error,omitempty"`      // 错误信息（失败时返回）
	ErrorKind   string       `json:"error_kind,omitempty"` // errorutil.Kind
	ErrorField  string       `json:"error_field,omitempty"`
	ProcessedAt int64        `json:"processed_at"` // 处理时间戳（Unix timestamp）
}

// 回调状态常量
const (
	CallbackStatusSuccess = "SUCCESS" // 报价成功
	CallbackStatusFailed  = "FAILED"  // 报价失败
)

// QuoteResultChannel 报价结果的 Redis 频道
func QuoteResultChannel(quoteID string) string {
	return fmt.Sprintf("quote:result:%s", quoteID)
}
