package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/LanceHuang1/course-web-app/config"
	"github.com/LanceHuang1/course-web-app/internal/api/handler"
	"github.com/LanceHuang1/course-web-app/internal/api/middleware"
	"github.com/LanceHuang1/course-web-app/internal/api/router"
	"github.com/LanceHuang1/course-web-app/internal/repository"
	"github.com/LanceHuang1/course-web-app/internal/service"
	applogger "github.com/LanceHuang1/course-web-app/pkg/logger"
	"github.com/LanceHuang1/course-web-app/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径（默认查找 ./config/config.yaml 与 ./config.yaml）")
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("store", cfg.Store.Path),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 连接 Redis（可选：未启用或连接失败时写操作不限流）
	var (
		rdb     *redis.Client
		limiter middleware.RateLimiter
	)
	if cfg.Redis.Enabled {
		rdb, err = redis.NewClient(&cfg.Redis, logger)
		if err != nil {
			logger.Warn("Redis 连接失败，限流功能将不可用", zap.Error(err))
		} else {
			limiter = rdb
		}
	}

	// 4. 依赖注入: Repository → Service → Handler
	repo := repository.NewRepository(cfg.Store.Path)
	svc := service.NewService(cfg, repo, logger)
	h := handler.NewHandler(svc)

	// 5. 初始化路由
	engine := router.Setup(cfg, h, limiter, logger)

	// 6. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 7. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}
