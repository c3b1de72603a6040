package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"rbx/logicore/internal/model"
	"rbx/logicore/pkg/config"
)

// quoteResultPattern 所有报价结果频道
const quoteResultPattern = "quote:result:*"

// NewClient 创建 Redis 客户端并测试连接
func NewClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// PubSub 报价结果的发布/订阅
type PubSub struct {
	client *redis.Client
}

// NewPubSub 基于已有客户端创建 PubSub
func NewPubSub(client *redis.Client) *PubSub {
	return &PubSub{client: client}
}

// PublishQuoteResult 发布报价结果到 quote:result:{id}
func (p *PubSub) PublishQuoteResult(ctx context.Context, cb *model.QuoteCallback) error {
	msgJSON, err := json.Marshal(cb)
	if err != nil {
		return fmt.Errorf("failed to marshal quote callback: %w", err)
	}

	channel := model.QuoteResultChannel(cb.QuoteID)
	if err := p.client.Publish(ctx, channel, msgJSON).Err(); err != nil {
		return fmt.Errorf("failed to publish quote callback: %w", err)
	}
	return nil
}

// WaitQuoteResult 订阅单个报价频道并等待结果，支持超时控制
func (p *PubSub) WaitQuoteResult(ctx context.Context, quoteID string, timeout time.Duration) (*model.QuoteCallback, error) {
	sub := p.client.Subscribe(ctx, model.QuoteResultChannel(quoteID))
	defer sub.Close()

	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// 确认订阅生效
	if _, err := sub.Receive(timeoutCtx); err != nil {
		return nil, fmt.Errorf("subscribe failed: %w", err)
	}

	select {
	case msg, ok := <-sub.Channel():
		if !ok {
			return nil, fmt.Errorf("subscription closed")
		}
		return decodeCallback(msg.Payload)
	case <-timeoutCtx.Done():
		return nil, timeoutCtx.Err()
	}
}

// QuoteHandler 报价结果处理函数
type QuoteHandler func(ctx context.Context, cb *model.QuoteCallback)

// Listener 常驻的报价结果订阅
type Listener struct {
	sub    *redis.PubSub
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// ListenQuoteResults 订阅所有报价结果频道；返回前订阅已生效
func (p *PubSub) ListenQuoteResults(ctx context.Context, handler QuoteHandler, onError func(error)) (*Listener, error) {
	ctx, cancel := context.WithCancel(ctx)
	sub := p.client.PSubscribe(ctx, quoteResultPattern)

	if _, err := sub.Receive(ctx); err != nil {
		cancel()
		sub.Close()
		return nil, fmt.Errorf("psubscribe failed: %w", err)
	}

	l := &Listener{sub: sub, cancel: cancel}
	ch := sub.Channel()

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				cb, err := decodeCallback(msg.Payload)
				if err != nil {
					if onError != nil {
						onError(fmt.Errorf("channel %s: %w", msg.Channel, err))
					}
					continue
				}
				handler(ctx, cb)
			}
		}
	}()

	return l, nil
}

// Close 停止订阅并等待处理协程退出
func (l *Listener) Close() error {
	l.cancel()
	err := l.sub.Close()
	l.wg.Wait()
	return err
}

func decodeCallback(payload string) (*model.QuoteCallback, error) {
	var cb model.QuoteCallback
	if err := json.Unmarshal([]byte(payload), &cb); err != nil {
		return nil, fmt.Errorf("failed to unmarshal quote callback: %w", err)
	}
	return &cb, nil
}
