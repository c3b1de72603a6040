package model

// QuoteJob 报价任务消息（标准化）
// 用于 apiserver → worker 的消息传递
type QuoteJob struct {
	Payload QuotePayload `json:"payload"`
}

// QuotePayload Job 负载
type QuotePayload struct {
	Data QuoteJobData `json:"data"`
}

// QuoteJobData Job 数据层
type QuoteJobData struct {
	// 元信息
	RequestID  string `json:"request_id"`  // 请求 ID（全链路追踪）
	OrgID      string `json:"org_id"`      // 组织 ID（固定为 "0"）
	ActionType string `json:"action_type"` // 动作类型，固定值 "rate_quote"
	ID         string `json:"id"`          // 报价 ID

	// 业务数据
	Data QuoteRequest `json:"data"`
}

// ActionTypeRateQuote 报价任务的路由键
const ActionTypeRateQuote = "rate_quote"

// NewQuoteJob 构造标准报价任务
func NewQuoteJob(requestID, quoteID string, req QuoteRequest) *QuoteJob {
	return &QuoteJob{
		Payload: QuotePayload{
			Data: QuoteJobData{
				RequestID:  requestID,
				OrgID:      "0",
				ActionType: ActionTypeRateQuote,
				ID:         quoteID,
				Data:       req,
			},
		},
	}
}
