package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"rbx/logicore/internal/worker"
	"rbx/logicore/pkg/config"
	"rbx/logicore/pkg/logger"
)

var (
	configPath = flag.String("config", "./config/config.yaml", "配置文件路径")
)

func main() {
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.ValidateWorker(); err != nil {
		log.Fatalf("Config validation failed: %v", err)
	}

	zapLogger, err := logger.NewZapLogger(cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zapLogger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	zapLogger.Infof(ctx, "[Main] Worker starting: app=%s, env=%s, workers=%d", cfg.App.Name, cfg.App.Env, len(cfg.Workers))

	// 2. 组装 Manager（lmstfy、Redis、报价服务）
	mgr, err := worker.NewManagerInstance(cfg, zapLogger)
	if err != nil {
		zapLogger.Errorf(ctx, "[Main] Failed to create manager: %v", err)
		return
	}

	startErr := make(chan error, 1)
	go func() {
		startErr <- mgr.Start()
	}()

	// 3. 等待退出信号或启动失败
	select {
	case <-ctx.Done():
		zapLogger.Infof(context.Background(), "[Main] Signal received, draining workers")
	case err := <-startErr:
		if err != nil {
			zapLogger.Errorf(context.Background(), "[Main] Manager stopped: %v", err)
		}
	}

	mgr.Shutdown()
	zapLogger.Infof(context.Background(), "[Main] Worker exited")
}
