package mdquote

import (
	"context"
	"encoding/json"
	"fmt"

	"rbx/logicore/internal/model"
	"rbx/logicore/pkg/errorutil"
	"rbx/logicore/pkg/resource"
)

// JobPublisher 投递报价任务（由 lmstfy.Client 实现）
type JobPublisher interface {
	Publish(queue string, data []byte) (string, error)
}

// QuoteModule 异步报价模块
// 职责：
// 1. 构造标准化报价任务并投递到队列
// 2. 按报价 ID 维护异步结果（Registry），由 Redis 回调结算
type QuoteModule struct {
	publisher JobPublisher
	queueName string
	registry  *resource.Registry[*model.QuoteResult]
}

// NewQuoteModule 创建报价模块实例
func NewQuoteModule(publisher JobPublisher, queueName string, registry *resource.Registry[*model.QuoteResult]) *QuoteModule {
	return &QuoteModule{
		publisher: publisher,
		queueName: queueName,
		registry:  registry,
	}
}

// Submit 登记报价并投递任务；必须先登记再投递，避免结果先于登记到达
func (m *QuoteModule) Submit(ctx context.Context, requestID, quoteID string, req model.QuoteRequest) (*resource.Resource[*model.QuoteResult], error) {
	res := m.registry.Start(quoteID)

	payload, err := json.Marshal(model.NewQuoteJob(requestID, quoteID, req))
	if err != nil {
		m.registry.Delete(quoteID)
		return nil, fmt.Errorf("marshal quote job failed: %w", err)
	}

	if _, err := m.publisher.Publish(m.queueName, payload); err != nil {
		m.registry.Delete(quoteID)
		return nil, errorutil.Upstream("enqueue quote job failed", err)
	}
	return res, nil
}

// HandleCallback 结算 worker 推送的报价结果；未登记（已过期或其他实例）的 ID 忽略
func (m *QuoteModule) HandleCallback(_ context.Context, cb *model.QuoteCallback) bool {
	res, ok := m.registry.Get(cb.QuoteID)
	if !ok {
		return false
	}

	if cb.Status == model.CallbackStatusSuccess && cb.Result != nil {
		return res.Resolve(cb.Result)
	}
	return res.Reject(CallbackError(cb))
}

// Get 查询报价状态快照
func (m *QuoteModule) Get(quoteID string) (resource.Snapshot[*model.QuoteResult], bool) {
	res, ok := m.registry.Get(quoteID)
	if !ok {
		return resource.Snapshot[*model.QuoteResult]{}, false
	}
	return res.Snapshot(), true
}

// CallbackError 还原 worker 侧的错误分类
func CallbackError(cb *model.QuoteCallback) error {
	msg := cb.Error
	if msg == "" {
		msg = "quote failed"
	}
	switch errorutil.Kind(cb.ErrorKind) {
	case errorutil.KindInvalidInput:
		return errorutil.InvalidInput(cb.ErrorField, "%s", msg)
	case errorutil.KindUpstream:
		return errorutil.Upstream(msg, nil)
	default:
		return errorutil.Wrap(fmt.Errorf("%s", msg))
	}
}
