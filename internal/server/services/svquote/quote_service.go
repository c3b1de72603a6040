package svquote

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"rbx/logicore/internal/model"
	"rbx/logicore/internal/rate/quote"
	"rbx/logicore/internal/rate/zone"
	"rbx/logicore/internal/server/modules/mdquote"
	"rbx/logicore/pkg/idgen"
	"rbx/logicore/pkg/logger"
	"rbx/logicore/pkg/resource"
)

// QuoteService 报价服务，负责同步报价与异步报价编排
type QuoteService struct {
	engine  *quote.Service
	module  *mdquote.QuoteModule
	ids     *idgen.SnowflakeIDGenerator
	maxWait time.Duration
	logger  logger.Logger
}

// NewQuoteService 创建报价服务实例
func NewQuoteService(engine *quote.Service, module *mdquote.QuoteModule, ids *idgen.SnowflakeIDGenerator, maxWait time.Duration, log logger.Logger) *QuoteService {
	if log == nil {
		log = logger.NewNop()
	}
	return &QuoteService{
		engine:  engine,
		module:  module,
		ids:     ids,
		maxWait: maxWait,
		logger:  log,
	}
}

// Quote 同步报价
func (s *QuoteService) Quote(ctx context.Context, req model.QuoteRequest) (*model.QuoteResult, error) {
	res, err := s.engine.Quote(ctx, req)
	if err != nil {
		return nil, err
	}
	res.QuoteID = s.ids.NextString()
	return res, nil
}

// Zone 区域判定
func (s *QuoteService) Zone(source, destination string) (zone.Zone, error) {
	return s.engine.Zone(source, destination)
}

// Submit 异步报价（完整业务流程）
// 1. 完整输入校验（快速失败，不入队）
// 2. 登记并投递报价任务
// 3. Smart Wait：最多等待 wait（不超过 maxWait），超时返回 loading 快照
func (s *QuoteService) Submit(ctx context.Context, req model.QuoteRequest, wait time.Duration) (string, resource.Snapshot[*model.QuoteResult], error) {
	var empty resource.Snapshot[*model.QuoteResult]

	if err := s.engine.Validate(req); err != nil {
		return "", empty, err
	}

	requestID := logger.TraceID(ctx)
	if requestID == "" {
		requestID = uuid.New().String()
	}
	quoteID := s.ids.NextString()
	ctx = logger.WithQuoteID(ctx, quoteID)

	res, err := s.module.Submit(ctx, requestID, quoteID, req)
	if err != nil {
		s.logger.Errorf(ctx, "[QuoteService] Submit quote job failed: %v", err)
		return "", empty, err
	}
	s.logger.Infof(ctx, "[QuoteService] Quote job submitted, wait=%v", wait)

	if wait > s.maxWait {
		wait = s.maxWait
	}
	if wait <= 0 {
		return quoteID, res.Snapshot(), nil
	}

	waitCtx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	snap, err := res.Wait(waitCtx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			s.logger.Infof(ctx, "[QuoteService] Smart wait timed out, client should poll")
			return quoteID, snap, nil
		}
		return quoteID, snap, err
	}
	return quoteID, snap, nil
}

// Get 查询异步报价
func (s *QuoteService) Get(quoteID string) (resource.Snapshot[*model.QuoteResult], bool) {
	return s.module.Get(quoteID)
}

// HandleCallback 处理 worker 推送的报价结果
func (s *QuoteService) HandleCallback(ctx context.Context, cb *model.QuoteCallback) {
	ctx = logger.WithQuoteID(logger.WithTraceID(ctx, cb.RequestID), cb.QuoteID)
	if !s.module.HandleCallback(ctx, cb) {
		s.logger.Debugf(ctx, "[QuoteService] Ignoring callback for unknown quote")
		return
	}
	s.logger.Infof(ctx, "[QuoteService] Quote settled: status=%s", cb.Status)
}
