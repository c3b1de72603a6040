package errorutil

import (
	"errors"
	"fmt"
)

// Kind 错误分类
type Kind string

const (
	// KindInvalidInput 输入非法（pincode 格式、重量、费率卡字段），不可重试
	KindInvalidInput Kind = "INVALID_INPUT"
	// KindStorage 存储/加解密失败，不可重试
	KindStorage Kind = "STORAGE"
	// KindPartialComputation 单个承运商费率计算失败（仅记录，不阻断）
	KindPartialComputation Kind = "PARTIAL_COMPUTATION"
	// KindUpstream 上游依赖失败（费率卡拉取、队列），可重试
	KindUpstream Kind = "UPSTREAM"
	// KindInternal 其他内部错误
	KindInternal Kind = "INTERNAL"
)

// Error 错误结构（包含可重试标记）
type Error struct {
	Code       int    `json:"code"`
	Kind       Kind   `json:"kind"`
	Message    string `json:"message"`
	Field      string `json:"field,omitempty"`
	Retryable  bool   `json:"retryable"`
	DevDetails string `json:"dev_details,omitempty"`

	cause error
}

// Error 实现 error 接口
func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// Unwrap 返回底层错误
func (e *Error) Unwrap() error {
	return e.cause
}

// Retriable 创建可重试错误（网络错误、临时故障等）
func Retriable(message string) *Error {
	return &Error{
		Code:      500,
		Kind:      KindInternal,
		Message:   message,
		Retryable: true,
	}
}

// RetriableWithDetails 创建可重试错误（带详细信息）
func RetriableWithDetails(message string, details string) *Error {
	e := Retriable(message)
	e.DevDetails = details
	return e
}

// NonRetriable 创建不可重试错误（参数错误、业务规则错误等）
func NonRetriable(message string) *Error {
	return &Error{
		Code:      400,
		Kind:      KindInvalidInput,
		Message:   message,
		Retryable: false,
	}
}

// NonRetriableWithDetails 创建不可重试错误（带详细信息）
func NonRetriableWithDetails(message string, details string) *Error {
	e := NonRetriable(message)
	e.DevDetails = details
	return e
}

// InvalidInput 输入校验失败，必须返回给调用方修正
func InvalidInput(field, format string, args ...interface{}) *Error {
	return &Error{
		Code:    400,
		Kind:    KindInvalidInput,
		Message: fmt.Sprintf(format, args...),
		Field:   field,
	}
}

// Storage 存储或加解密失败
func Storage(message string, cause error) *Error {
	return &Error{
		Code:       500,
		Kind:       KindStorage,
		Message:    message,
		DevDetails: details(cause),
		cause:      cause,
	}
}

// Partial 单个费率卡计算失败
func Partial(mode string, cause error) *Error {
	return &Error{
		Code:       500,
		Kind:       KindPartialComputation,
		Message:    fmt.Sprintf("rate calculation failed for mode %q", mode),
		DevDetails: details(cause),
		cause:      cause,
	}
}

// Upstream 上游调用失败（默认可重试）
func Upstream(message string, cause error) *Error {
	return &Error{
		Code:       502,
		Kind:       KindUpstream,
		Message:    message,
		Retryable:  true,
		DevDetails: details(cause),
		cause:      cause,
	}
}

// Wrap 包装错误（自动判断是否可重试）
func Wrap(err error) *Error {
	if err == nil {
		return nil
	}

	// 如果链路中已经有 Error 类型，直接返回
	var e *Error
	if errors.As(err, &e) {
		return e
	}

	// 默认为不可重试错误
	return &Error{
		Code:       500,
		Kind:       KindInternal,
		Message:    err.Error(),
		Retryable:  false,
		DevDetails: fmt.Sprintf("%+v", err),
		cause:      err,
	}
}

// IsKind 判断错误链中是否存在指定分类的 Error
func IsKind(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// IsRetryable 判断错误是否可重试
func IsRetryable(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Retryable
}

func details(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
