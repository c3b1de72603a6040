package domains

import (
	"rbx/logicore/internal/domains/common"
	"rbx/logicore/internal/domains/handlers/rate/ratequote"
	"rbx/logicore/internal/model"
)

// HandlerMap 路由表（ActionType → Handler 映射）
var HandlerMap = map[string]common.HandlerServProc{
	model.ActionTypeRateQuote: ratequote.NewQuoteHandler,
}
