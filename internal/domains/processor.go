package domains

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bitleak/lmstfy/client"
	"github.com/google/uuid"

	"rbx/logicore/internal/domains/common"
	"rbx/logicore/internal/domains/common/job"
	"rbx/logicore/internal/domains/common/response"
	"rbx/logicore/pkg/lmstfyx"
	"rbx/logicore/pkg/logger"
)

// GetProcess 返回核心处理函数（注入到 Processor）
func GetProcess(log logger.Logger, deps *common.Deps) lmstfyx.Proc {
	return getProcess(log, deps, HandlerMap)
}

func getProcess(log logger.Logger, deps *common.Deps, handlers map[string]common.HandlerServProc) lmstfyx.Proc {
	return func(ctx context.Context, lmstfyJob *client.Job) (resp *lmstfyx.JobResp) {
		startTime := time.Now()

		// 1. 解析 Job
		meta, bizPayload, err := parseJob(ctx, lmstfyJob, log)
		if err != nil {
			log.Errorf(ctx, "[GetProcess] parseJob failed: %v", err)
			return &lmstfyx.JobResp{Action: lmstfyx.JobRespStatusBury}
		}

		// 2. 注入 TraceID 到 Context
		ctx = logger.WithTraceID(ctx, meta.RequestID)
		ctx = logger.WithActionType(ctx, meta.ActionType)

		log.Infof(ctx, "[GetProcess] Processing job: action_type=%s, id=%s", meta.ActionType, meta.ID)

		// 3. 从 HandlerMap 获取 Handler
		handlerFunc, ok := handlers[meta.ActionType]
		if !ok {
			log.Errorf(ctx, "[GetProcess] handler not found for action_type: %s", meta.ActionType)
			return &lmstfyx.JobResp{Action: lmstfyx.JobRespStatusBury}
		}

		// 4. 调用 Handler（捕获 panic）
		defer func() {
			if r := recover(); r != nil {
				log.Errorf(ctx, "[GetProcess] handler panic: %v", r)
				resp = &lmstfyx.JobResp{Action: lmstfyx.JobRespStatusBury}
			}
			log.Infof(ctx, "[GetProcess] Processing complete: action=%s, duration=%v", resp.Action, time.Since(startTime))
		}()

		handler, err := handlerFunc(ctx, meta, bizPayload, deps)
		if err != nil {
			log.Errorf(ctx, "[GetProcess] handler creation failed: %v", err)
			return &lmstfyx.JobResp{Action: lmstfyx.JobRespStatusBury}
		}

		return doJobReport(ctx, handler.GetProcess(), log)
	}
}

// parseJob 解析 Job
func parseJob(ctx context.Context, lmstfyJob *client.Job, log logger.Logger) (*job.Meta, json.RawMessage, error) {
	data, err := job.Decode(lmstfyJob.Data)
	if err != nil {
		return nil, nil, fmt.Errorf("decode job %s: %w", lmstfyJob.ID, err)
	}
	meta := data.Meta()

	// RequestID 为空则生成一个
	if meta.RequestID == "" {
		meta.RequestID = uuid.New().String()
	}

	log.Debugf(ctx, "[parseJob] Parsed: action_type=%s, request_id=%s, id=%s",
		meta.ActionType, meta.RequestID, meta.ID)

	return meta, data.Data, nil
}

// doJobReport 根据 Response 决定 ACK/Bury/Release
// 成功 → Success；可重试失败 → Release；其余失败 → Bury
func doJobReport(ctx context.Context, resp *response.Response, log logger.Logger) *lmstfyx.JobResp {
	if resp == nil {
		return &lmstfyx.JobResp{Action: lmstfyx.JobRespStatusRelease}
	}

	data, err := json.Marshal(resp)
	if err != nil {
		log.Errorf(ctx, "[doJobReport] marshal response failed: %v", err)
		data = nil
	}

	switch {
	case resp.Error == nil:
		return &lmstfyx.JobResp{Action: lmstfyx.JobRespStatusSuccess, Data: data}
	case resp.Retryable():
		log.Warnf(ctx, "[doJobReport] Retryable failure: %v", resp.Error)
		return &lmstfyx.JobResp{Action: lmstfyx.JobRespStatusRelease, Data: data}
	default:
		log.Errorf(ctx, "[doJobReport] Permanent failure: kind=%s, err=%v", resp.Error.Kind, resp.Error)
		return &lmstfyx.JobResp{Action: lmstfyx.JobRespStatusBury, Data: data}
	}
}
