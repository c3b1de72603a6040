package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"rbx/logicore/internal/model"
	"rbx/logicore/internal/rate/setup"
	"rbx/logicore/internal/server/handlers/quote"
	"rbx/logicore/internal/server/modules/mdquote"
	"rbx/logicore/internal/server/routers"
	"rbx/logicore/internal/server/services/svquote"
	"rbx/logicore/pkg/config"
	"rbx/logicore/pkg/idgen"
	"rbx/logicore/pkg/infra/redis"
	"rbx/logicore/pkg/lmstfy"
	"rbx/logicore/pkg/logger"
	"rbx/logicore/pkg/resource"
)

// App apiserver 组件
type App struct {
	Engine   *gin.Engine
	registry *resource.Registry[*model.QuoteResult]
	ttl      time.Duration
	logger   logger.Logger
}

// InitializeApp 组装 apiserver：报价引擎、lmstfy、Redis 结果订阅、路由
func InitializeApp(ctx context.Context, cfg *config.Config, log logger.Logger) (*App, func(), error) {
	engine, closeRates, err := setup.QuoteService(ctx, cfg, log)
	if err != nil {
		return nil, nil, fmt.Errorf("init quote engine: %w", err)
	}

	lmstfyClient, err := lmstfy.NewClient(cfg.Lmstfy)
	if err != nil {
		closeRates()
		return nil, nil, err
	}

	rdb, err := redis.NewClient(cfg.Redis)
	if err != nil {
		closeRates()
		return nil, nil, err
	}

	registry := resource.NewRegistry[*model.QuoteResult](cfg.Server.QuoteTTL)
	module := mdquote.NewQuoteModule(lmstfyClient, cfg.Lmstfy.QuoteQueue, registry)
	ids := idgen.NewSnowflakeIDGenerator(cfg.App.MachineID)
	quoteService := svquote.NewQuoteService(engine, module, ids, cfg.Server.MaxWait, log)

	// 订阅先于任何投递建立，结果不会丢在订阅之前
	listener, err := redis.NewPubSub(rdb).ListenQuoteResults(ctx, quoteService.HandleCallback, func(err error) {
		log.Warnf(ctx, "[App] Bad quote callback: %v", err)
	})
	if err != nil {
		rdb.Close()
		closeRates()
		return nil, nil, err
	}

	app := &App{
		Engine:   routers.SetupRoutes(cfg.Server, quote.NewQuoteHandler(quoteService), log),
		registry: registry,
		ttl:      cfg.Server.QuoteTTL,
		logger:   log,
	}

	cleanup := func() {
		if err := listener.Close(); err != nil {
			log.Warnf(context.Background(), "[App] Close listener failed: %v", err)
		}
		rdb.Close()
		closeRates()
	}
	return app, cleanup, nil
}

// RunEviction 定期清理过期的异步报价
func (a *App) RunEviction(ctx context.Context) {
	if a.ttl <= 0 {
		return
	}
	ticker := time.NewTicker(a.ttl / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := a.registry.Evict(); n > 0 {
				a.logger.Debugf(ctx, "[App] Evicted %d expired quotes", n)
			}
		}
	}
}
