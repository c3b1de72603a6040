package response

import (
	"rbx/logicore/internal/domains/common/job"
	"rbx/logicore/internal/model"
	"rbx/logicore/pkg/errorutil"
)

// QuoteResult 报价任务结果（实现 ResultI 接口）
type QuoteResult struct {
	ID     string             `json:"id"`
	Status string             `json:"status"`
	Data   *model.QuoteResult `json:"data,omitempty"`
	Error  *errorutil.Error   `json:"error,omitempty"`
}

// NewQuoteResult 创建报价结果
func NewQuoteResult() *QuoteResult {
	return &QuoteResult{}
}

// Set 实现 ResultI 接口
func (r *QuoteResult) Set(meta *job.Meta, err error) {
	r.ID = meta.ID
	if err != nil {
		r.Status = model.CallbackStatusFailed
		r.Error = errorutil.Wrap(err)
	} else {
		r.Status = model.CallbackStatusSuccess
	}
}

// GetStatus 实现 ResultI 接口
func (r *QuoteResult) GetStatus() string {
	return r.Status
}
