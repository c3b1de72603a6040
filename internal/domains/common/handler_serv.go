package common

import (
	"context"
	"encoding/json"

	"rbx/logicore/internal/domains/common/job"
	"rbx/logicore/internal/domains/common/response"
	"rbx/logicore/internal/model"
	"rbx/logicore/internal/rate/quote"
	"rbx/logicore/pkg/logger"
)

// ResultPublisher 将处理结果推送给等待方（Redis Pub/Sub）
type ResultPublisher interface {
	PublishQuoteResult(ctx context.Context, cb *model.QuoteCallback) error
}

// Deps Handler 依赖
type Deps struct {
	Quote     *quote.Service
	Publisher ResultPublisher
	Logger    logger.Logger
}

// HandlerServProc Handler 构造函数类型
type HandlerServProc func(ctx context.Context, meta *job.Meta, payload json.RawMessage, deps *Deps) (HandlerServ, error)

// HandlerServ Handler 接口
type HandlerServ interface {
	GetProcess() *response.Response
}
