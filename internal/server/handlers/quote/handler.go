package quote

import (
	"context"
	"time"

	"rbx/logicore/internal/model"
	"rbx/logicore/internal/rate/zone"
	"rbx/logicore/pkg/resource"
)

// Service QuoteHandler 依赖的报价服务（由 svquote.QuoteService 实现）
type Service interface {
	Quote(ctx context.Context, req model.QuoteRequest) (*model.QuoteResult, error)
	Zone(source, destination string) (zone.Zone, error)
	Submit(ctx context.Context, req model.QuoteRequest, wait time.Duration) (string, resource.Snapshot[*model.QuoteResult], error)
	Get(quoteID string) (resource.Snapshot[*model.QuoteResult], bool)
}

// QuoteHandler 报价 HTTP 处理器
type QuoteHandler struct {
	quoteService Service
}

// NewQuoteHandler 创建报价处理器实例
func NewQuoteHandler(quoteService Service) *QuoteHandler {
	return &QuoteHandler{
		quoteService: quoteService,
	}
}

// ZoneResponse 区域判定结果
type ZoneResponse struct {
	From string `json:"from" example:"110001"`
	To   string `json:"to" example:"400001"`
	Zone string `json:"zone" example:"METRO_TO_METRO"`
}
