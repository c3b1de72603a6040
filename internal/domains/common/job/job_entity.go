package job

import (
	"encoding/json"
	"errors"
)

// ErrMissingPayload 信封里没有 payload.data
var ErrMissingPayload = errors.New("invalid job structure: payload.data is nil")

// Job 队列消息信封：{"payload":{"data":{...}}}
type Job struct {
	Payload *JobPayload `json:"payload"`
}

// JobPayload 信封负载
type JobPayload struct {
	Data *JobPayloadData `json:"data"`
}

// JobPayloadData 路由元信息 + 业务数据
type JobPayloadData struct {
	RequestID  string          `json:"request_id"`
	OrgID      string          `json:"org_id,omitempty"`
	ActionType string          `json:"action_type"` // HandlerMap 路由键
	ID         string          `json:"id"`          // 报价 ID
	Data       json.RawMessage `json:"data"`        // 由具体 Handler 解析
}

// Meta 传给 Handler 的元信息
type Meta struct {
	RequestID  string
	OrgID      string
	ActionType string
	ID         string
}

// Decode 解析信封；payload.data 缺失返回 ErrMissingPayload
func Decode(raw []byte) (*JobPayloadData, error) {
	var j Job
	if err := json.Unmarshal(raw, &j); err != nil {
		return nil, err
	}
	if j.Payload == nil || j.Payload.Data == nil {
		return nil, ErrMissingPayload
	}
	return j.Payload.Data, nil
}

// Meta 提取元信息
func (d *JobPayloadData) Meta() *Meta {
	return &Meta{
		RequestID:  d.RequestID,
		OrgID:      d.OrgID,
		ActionType: d.ActionType,
		ID:         d.ID,
	}
}

