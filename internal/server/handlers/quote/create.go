package quote

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"rbx/logicore/internal/model"
	"rbx/logicore/internal/server/ginx"
	"rbx/logicore/pkg/resource"
)

// Create 异步报价接口
// POST /api/v1/quotes?wait=10
func (h *QuoteHandler) Create(c *gin.Context) {
	waitSeconds := 0
	if waitStr := c.Query("wait"); waitStr != "" {
		if w, err := strconv.Atoi(waitStr); err == nil && w > 0 {
			waitSeconds = w
		}
	}

	var req model.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	quoteID, snap, err := h.quoteService.Submit(c.Request.Context(), req, time.Duration(waitSeconds)*time.Second)
	if err != nil {
		ginx.FromError(c, err)
		return
	}
	writeSnapshot(c, quoteID, snap)
}

// writeSnapshot 成功返回结果，失败按错误分类，未完成返回 3001 + 轮询地址
func writeSnapshot(c *gin.Context, quoteID string, snap resource.Snapshot[*model.QuoteResult]) {
	switch snap.Status {
	case resource.StatusSuccess:
		ginx.Success(c, snap.Data)
	case resource.StatusError:
		ginx.FromError(c, snap.Err)
	default:
		ginx.Processing(c, quoteID, fmt.Sprintf("/api/v1/quotes/%s", quoteID))
	}
}
