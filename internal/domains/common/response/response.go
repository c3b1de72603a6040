package response

import (
	"rbx/logicore/internal/domains/common/job"
	"rbx/logicore/pkg/errorutil"
)

// ResultI Handler 的业务结果
type ResultI interface {
	Set(meta *job.Meta, err error)
	GetStatus() string
}

// Response Handler 返回给 doJobReport 的结果，序列化后写入处理日志
type Response struct {
	Meta      *job.Meta        `json:"meta"`
	Processed bool             `json:"processed"`
	Result    ResultI          `json:"result"`
	Error     *errorutil.Error `json:"error,omitempty"`
}

// New 由业务结果和错误生成 Response；err 为 nil 视为处理成功
func New(result ResultI, meta *job.Meta, err error) *Response {
	result.Set(meta, err)
	return &Response{
		Meta:      meta,
		Processed: err == nil,
		Result:    result,
		Error:     errorutil.Wrap(err),
	}
}

// Retryable 失败且可重试
func (r *Response) Retryable() bool {
	return r.Error != nil && r.Error.Retryable
}
