// Package lmstfy 把 lmstfy 客户端适配为 framework.MessageSource 和报价任务投递方
package lmstfy

import (
	"fmt"
	"time"

	"github.com/bitleak/lmstfy/client"

	"rbx/logicore/internal/framework"
	"rbx/logicore/pkg/config"
)

// Client lmstfy 客户端封装
type Client struct {
	cli   *client.LmstfyClient
	ttl   uint32
	tries uint16
}

// NewClient 创建客户端
func NewClient(cfg config.LmstfyConfig) (*Client, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("lmstfy host is required")
	}
	c := &Client{
		cli:   client.NewLmstfyClient(cfg.Host, cfg.Port, cfg.Namespace, cfg.Token),
		ttl:   uint32(cfg.JobTTL.Seconds()),
		tries: uint16(cfg.JobTries),
	}
	if c.tries == 0 {
		c.tries = 1
	}
	return c, nil
}

// Consume 实现 framework.MessageSource；超时未拉到消息返回 (nil, nil)
func (c *Client) Consume(queue string, timeout time.Duration, ttr time.Duration) (*framework.Message, error) {
	job, err := c.cli.Consume(queue, uint32(ttr.Seconds()), uint32(timeout.Seconds()))
	if err != nil {
		return nil, fmt.Errorf("lmstfy consume %s: %w", queue, err)
	}
	if job == nil {
		return nil, nil
	}

	return &framework.Message{
		ID:         job.ID,
		Queue:      job.Queue,
		Data:       job.Data,
		ReceivedAt: time.Now(),
	}, nil
}

// Ack 实现 framework.MessageSource
func (c *Client) Ack(queue string, jobID string) error {
	if err := c.cli.Ack(queue, jobID); err != nil {
		return fmt.Errorf("lmstfy ack %s/%s: %w", queue, jobID, err)
	}
	return nil
}

// Publish 投递任务，返回 job ID
func (c *Client) Publish(queue string, data []byte) (string, error) {
	jobID, err := c.cli.Publish(queue, data, c.ttl, c.tries, 0)
	if err != nil {
		return "", fmt.Errorf("lmstfy publish %s: %w", queue, err)
	}
	return jobID, nil
}
