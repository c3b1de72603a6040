package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"rbx/logicore/internal/rate/calculator"
	"rbx/logicore/pkg/config"
	"rbx/logicore/pkg/errorutil"
)

// maxBodyBytes 远程响应体上限
const maxBodyBytes = 4 << 20

// HTTP 远程费率卡服务：GET {base_url}/rate-cards
// 响应可以是费率卡数组，也可以是 {"data": [...]}
type HTTP struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewHTTP 创建远程来源；client 为 nil 时按配置超时新建
func NewHTTP(cfg config.RatesHTTPConfig, client *http.Client) *HTTP {
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &HTTP{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		token:   cfg.Token,
		client:  client,
	}
}

// List 实现 quote.Source
func (h *HTTP) List(ctx context.Context) ([]calculator.RateCard, error) {
	endpoint := h.baseURL + "/rate-cards"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errorutil.Upstream("build rate card request failed", err)
	}
	req.Header.Set("Accept", "application/json")
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, errorutil.Upstream("rate card service unreachable", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, errorutil.Upstream("read rate card response failed", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errorutil.Upstream(
			fmt.Sprintf("rate card service returned status=%d", resp.StatusCode),
			fmt.Errorf("%s", truncate(body, 256)),
		)
	}

	cards, err := decodeCards(body)
	if err != nil {
		return nil, errorutil.Upstream("decode rate card response failed", err)
	}

	// 区域名无法识别的卡保持原样，计算时被剔除到 failed 列表
	for i := range cards {
		if normalized, err := cards[i].NormalizeZones(); err == nil {
			cards[i] = normalized
		}
	}
	return cards, nil
}

func decodeCards(body []byte) ([]calculator.RateCard, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var cards []calculator.RateCard
		if err := json.Unmarshal(trimmed, &cards); err != nil {
			return nil, err
		}
		return cards, nil
	}

	var envelope struct {
		Data []calculator.RateCard `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, err
	}
	return envelope.Data, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
