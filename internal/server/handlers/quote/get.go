package quote

import (
	"github.com/gin-gonic/gin"

	"rbx/logicore/internal/server/ginx"
)

// Get godoc
// @Summary      查询异步报价
// @Description  POST /quotes 返回 code=3001 时，通过此接口轮询结果
// @Tags         quotes
// @Produce      json
// @Param        id path string true "报价ID"
// @Success      200 {object} ginx.Response{data=model.QuoteResult} "查询成功或仍在处理中（code=3001）"
// @Failure      404 {object} ginx.Response "报价不存在或已过期"
// @Router       /quotes/{id} [get]
func (h *QuoteHandler) Get(c *gin.Context) {
	quoteID := c.Param("id")
	if quoteID == "" {
		ginx.BadRequest(c, "quote_id required")
		return
	}

	snap, ok := h.quoteService.Get(quoteID)
	if !ok {
		ginx.NotFound(c, "quote not found")
		return
	}
	writeSnapshot(c, quoteID, snap)
}
