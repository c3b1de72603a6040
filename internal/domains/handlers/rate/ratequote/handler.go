package ratequote

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"rbx/logicore/internal/domains/common"
	"rbx/logicore/internal/domains/common/job"
	"rbx/logicore/internal/domains/common/response"
	"rbx/logicore/internal/framework"
	"rbx/logicore/internal/model"
	"rbx/logicore/pkg/errorutil"
	"rbx/logicore/pkg/logger"
)

// publishTimeout 失败回调单独的发布超时（处理 ctx 可能已超时）
const publishTimeout = 3 * time.Second

var validate = newValidator()

// newValidator 复用 gin 的 binding 标签，字段名取 json 名
func newValidator() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// QuoteHandler 运费报价 Handler
type QuoteHandler struct {
	ctx     context.Context
	meta    *job.Meta
	payload json.RawMessage
	deps    *common.Deps
	log     logger.Logger

	req    model.QuoteRequest
	result *model.QuoteResult
}

// NewQuoteHandler 创建报价 Handler
func NewQuoteHandler(ctx context.Context, meta *job.Meta, payload json.RawMessage, deps *common.Deps) (common.HandlerServ, error) {
	if deps == nil || deps.Quote == nil || deps.Publisher == nil {
		return nil, errors.New("quote handler requires quote service and publisher")
	}
	if meta.ID == "" {
		return nil, errorutil.InvalidInput("id", "quote id is required")
	}
	log := deps.Logger
	if log == nil {
		log = logger.NewNop()
	}
	return &QuoteHandler{
		ctx:     logger.WithQuoteID(ctx, meta.ID),
		meta:    meta,
		payload: payload,
		deps:    deps,
		log:     log,
	}, nil
}

// GetProcess 解析 → 计算 → 推送结果
func (h *QuoteHandler) GetProcess() *response.Response {
	result := response.NewQuoteResult()

	chain := framework.NewChain(
		framework.Step{Name: "decode", Run: h.decode},
		framework.Step{Name: "compute", Run: h.compute},
		framework.Step{Name: "publish", Run: h.publishSuccess},
	)
	err := chain.Run(h.ctx)
	if err != nil {
		err = h.classify(err)
		if !errorutil.IsRetryable(err) {
			h.publishFailure(err)
		}
	}
	result.Data = h.result

	return response.New(result, h.meta, err)
}

func (h *QuoteHandler) decode(ctx context.Context) error {
	if len(h.payload) == 0 || string(h.payload) == "null" {
		return errorutil.InvalidInput("data", "quote request is required")
	}
	if err := json.Unmarshal(h.payload, &h.req); err != nil {
		return errorutil.InvalidInput("data", "malformed quote request: %v", err)
	}

	if err := validate.Struct(&h.req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return errorutil.InvalidInput(fe.Field(), "%s", fieldMessage(fe))
		}
		return errorutil.InvalidInput("data", "%v", err)
	}
	return nil
}

// fieldMessage 与 HTTP 入口的校验提示保持一致
func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "gt":
		return fe.Field() + " must be greater than " + fe.Param()
	default:
		return fe.Field() + " is invalid"
	}
}

func (h *QuoteHandler) compute(ctx context.Context) error {
	res, err := h.deps.Quote.Quote(ctx, h.req)
	if err != nil {
		return err
	}
	res.QuoteID = h.meta.ID
	h.result = res

	h.log.Infof(ctx, "[QuoteHandler] Quote computed: zone=%s, status=%s, rates=%d, failed=%d",
		res.Zone, res.Status, len(res.Rates), len(res.Failed))
	return nil
}

func (h *QuoteHandler) publishSuccess(ctx context.Context) error {
	cb := &model.QuoteCallback{
		RequestID:   h.meta.RequestID,
		QuoteID:     h.meta.ID,
		Status:      model.CallbackStatusSuccess,
		Result:      h.result,
		ProcessedAt: time.Now().Unix(),
	}
	if err := h.deps.Publisher.PublishQuoteResult(ctx, cb); err != nil {
		return errorutil.Upstream("publish quote result failed", err)
	}
	return nil
}

// publishFailure 不可重试的失败也要告知等待方，推送失败仅记录
func (h *QuoteHandler) publishFailure(err error) {
	e := errorutil.Wrap(err)
	cb := &model.QuoteCallback{
		RequestID:   h.meta.RequestID,
		QuoteID:     h.meta.ID,
		Status:      model.CallbackStatusFailed,
		Error:       e.Message,
		ErrorKind:   string(e.Kind),
		ErrorField:  e.Field,
		ProcessedAt: time.Now().Unix(),
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(h.ctx), publishTimeout)
	defer cancel()
	if perr := h.deps.Publisher.PublishQuoteResult(ctx, cb); perr != nil {
		h.log.Errorf(ctx, "[QuoteHandler] Publish failure callback failed: %v", perr)
	}
}

// classify 处理超时按可重试处理，交给队列重新投递
func (h *QuoteHandler) classify(err error) error {
	if errorutil.IsRetryable(err) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errorutil.RetriableWithDetails("quote processing interrupted", err.Error())
	}
	return err
}
