package main

// @title           Logicore API
// @version         1.0
// @description     运费报价引擎：同步报价、区域判定、异步报价（Smart Wait）

// @host      localhost:8080
// @BasePath  /api/v1

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

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

	if err := cfg.ValidateServer(); err != nil {
		log.Fatalf("Config validation failed: %v", err)
	}

	zapLogger, err := logger.NewZapLogger(cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zapLogger.Sync()

	// 2. 初始化应用
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, cleanup, err := InitializeApp(ctx, cfg, zapLogger)
	if err != nil {
		log.Fatalf("Failed to initialize app: %v", err)
	}
	defer cleanup()

	go app.RunEviction(ctx)

	// 3. 创建 HTTP Server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      app.Engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 4. 启动 HTTP Server（后台 goroutine）
	serverErrChan := make(chan error, 1)
	go func() {
		zapLogger.Infof(ctx, "[Main] Starting HTTP server on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- err
		}
	}()

	// 5. 优雅停机处理
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		zapLogger.Infof(ctx, "[Main] Received signal %v, gracefully shutting down...", sig)
	case err := <-serverErrChan:
		zapLogger.Errorf(ctx, "[Main] HTTP server error: %v", err)
	}

	gracefulShutdown(server, zapLogger)
	cancel()
	zapLogger.Infof(context.Background(), "[Main] Application stopped")
}

// gracefulShutdown 优雅停机
func gracefulShutdown(server *http.Server, log logger.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Errorf(ctx, "[Main] HTTP server shutdown error: %v", err)
		return
	}
	log.Infof(ctx, "[Main] HTTP server stopped gracefully")
}
