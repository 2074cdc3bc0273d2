package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"vitals-monitor/internal/config"
	"vitals-monitor/internal/logger"
	"vitals-monitor/internal/service"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// 1. 加载 .env（不存在则忽略，使用环境变量/默认值）
	_ = godotenv.Load()

	// 2. 加载配置
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 3. 初始化日志
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, "vitals-monitor")
	if err != nil {
		panic(fmt.Sprintf("Failed to init logger: %v", err))
	}
	defer log.Sync()

	// 4. 创建服务
	monitorService, err := service.NewMonitorService(cfg, log)
	if err != nil {
		log.Error("Failed to create monitor service",
			zap.Error(err),
		)
		log.Sync()
		os.Exit(1)
	}

	// 5. 创建上下文（支持优雅关闭）
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 6. 启动服务（在 goroutine 中）
	serviceErrChan := make(chan error, 1)
	go func() {
		if err := monitorService.Start(ctx); err != nil {
			serviceErrChan <- err
		}
	}()

	// 7. 等待信号（优雅关闭）
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Info("Received signal, shutting down",
			zap.String("signal", sig.String()),
		)
		cancel()
	case err := <-serviceErrChan:
		// Fatal 会跳过清理，这里先停服务再退出
		log.Error("Service error",
			zap.Error(err),
		)
		cancel()
		monitorService.Stop()
		log.Sync()
		os.Exit(1)
	}

	monitorService.Stop()
	log.Info("Monitor service stopped")
}
