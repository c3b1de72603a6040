// Package lmstfyx 队列处理函数与处理结果的约定
package lmstfyx

import (
	"context"

	"github.com/bitleak/lmstfy/client"
)

// Proc 处理单个任务，返回值决定消息去留
type Proc func(ctx context.Context, job *client.Job) *JobResp

// JobRespStatus 处理结果
type JobRespStatus int

const (
	// JobRespStatusSuccess 成功
	JobRespStatusSuccess JobRespStatus = iota
	// JobRespStatusRelease 可重试失败，留在队列等待重新投递
	JobRespStatusRelease
	// JobRespStatusBury 不可重试失败，失败结果已推送给调用方
	JobRespStatusBury
)

var statusNames = map[JobRespStatus]string{
	JobRespStatusSuccess: "success",
	JobRespStatusRelease: "release",
	JobRespStatusBury:    "bury",
}

func (s JobRespStatus) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

// Acks 是否应当 ACK（从队列删除）
func (s JobRespStatus) Acks() bool {
	return s == JobRespStatusSuccess || s == JobRespStatusBury
}

// JobResp 处理结果；Data 为序列化后的 response.Response，仅用于日志
type JobResp struct {
	Action JobRespStatus
	Data   []byte
}
