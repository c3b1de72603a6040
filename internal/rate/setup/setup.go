// Package setup 按配置组装报价服务（worker、apiserver、portalctl 共用）
package setup

import (
	"context"
	"fmt"

	"rbx/logicore/internal/rate/quote"
	"rbx/logicore/internal/rate/source"
	"rbx/logicore/internal/rate/zone"
	"rbx/logicore/pkg/config"
	"rbx/logicore/pkg/infra/mysql"
	"rbx/logicore/pkg/logger"
)

// QuoteService 创建报价服务，返回的 cleanup 释放数据库连接
func QuoteService(ctx context.Context, cfg *config.Config, log logger.Logger) (*quote.Service, func(), error) {
	cleanup := func() {}

	var dao *mysql.RateCardDAO
	if cfg.Rates.Source == config.SourceMySQL || cfg.Rates.Directory == config.SourceMySQL {
		db, err := mysql.Open(cfg.MySQL)
		if err != nil {
			return nil, cleanup, err
		}
		dao = mysql.NewRateCardDAO(db)
		cleanup = func() {
			if err := dao.Close(); err != nil {
				log.Warnf(context.Background(), "[Setup] Close mysql failed: %v", err)
			}
		}
	}

	var src quote.Source
	switch cfg.Rates.Source {
	case config.SourceStatic:
		static, err := source.FromConfig(cfg.Rates.Cards)
		if err != nil {
			cleanup()
			return nil, func() {}, err
		}
		src = static
	case config.SourceHTTP:
		src = source.NewHTTP(cfg.Rates.HTTP, nil)
	case config.SourceMySQL:
		src = source.NewMySQL(dao, log)
	default:
		cleanup()
		return nil, func() {}, fmt.Errorf("unknown rates.source: %q", cfg.Rates.Source)
	}

	var dir zone.Directory = zone.NewStaticDirectory()
	if cfg.Rates.Directory == config.SourceMySQL {
		table, err := source.LoadDirectory(ctx, dao, dir)
		if err != nil {
			cleanup()
			return nil, func() {}, err
		}
		log.Infof(ctx, "[Setup] Pincode directory loaded: %d regions", table.Len())
		dir = table
	}

	log.Infof(ctx, "[Setup] Quote service ready: source=%s, directory=%s", cfg.Rates.Source, cfg.Rates.Directory)
	return quote.NewService(src, dir, log, quote.WithConcurrency(cfg.Rates.Concurrency)), cleanup, nil
}
