package quote

import (
	"github.com/gin-gonic/gin"

	"rbx/logicore/internal/model"
	"rbx/logicore/internal/server/ginx"
)

// Quote godoc
// @Summary      同步报价
// @Description  计算所有费率卡的运费明细，按总价升序返回；无可用费率时 status=NO_RATES
// @Tags         rates
// @Accept       json
// @Produce      json
// @Param        request body model.QuoteRequest true "报价请求"
// @Success      200 {object} ginx.Response{data=model.QuoteResult}
// @Failure      400 {object} ginx.Response "参数错误"
// @Failure      502 {object} ginx.Response "费率卡来源不可用"
// @Router       /rates/quote [post]
func (h *QuoteHandler) Quote(c *gin.Context) {
	var req model.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	result, err := h.quoteService.Quote(c.Request.Context(), req)
	if err != nil {
		ginx.FromError(c, err)
		return
	}
	ginx.Success(c, result)
}

// Zone godoc
// @Summary      区域判定
// @Tags         rates
// @Produce      json
// @Param        from query string true "发件 pincode"
// @Param        to   query string true "收件 pincode"
// @Success      200 {object} ginx.Response{data=ZoneResponse}
// @Failure      400 {object} ginx.Response "pincode 非法"
// @Router       /zones [get]
func (h *QuoteHandler) Zone(c *gin.Context) {
	from, to := c.Query("from"), c.Query("to")

	z, err := h.quoteService.Zone(from, to)
	if err != nil {
		ginx.FromError(c, err)
		return
	}
	ginx.Success(c, ZoneResponse{From: from, To: to, Zone: string(z)})
}
