// Package main 是服务端的入口点
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"insight/internal/analyzer"
	"insight/internal/cache"
	"insight/internal/config"
	"insight/internal/database"
	"insight/internal/handler"
	"insight/internal/logger"
	"insight/internal/middleware"
	"insight/internal/reader"
	"insight/internal/repository"
	"insight/internal/service"
	"insight/internal/webhook"
	"insight/internal/websocket"
	"insight/pkg/jwt"
	"insight/pkg/response"
)

func main() {
	// 加载配置
	cfg, err := config.Load("./configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.Setup(cfg.Log)

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	// 初始化数据库
	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to init database: %v", err)
	}

	applied, err := database.Migrate(db)
	if err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	if len(applied) > 0 {
		slog.Info("database migrations applied", "migrations", applied)
	}

	// Redis 可选：连不上时关闭限流、撤销和跨实例广播
	redisCache, err := cache.NewRedisCache(cfg)
	if err != nil {
		slog.Warn("redis unavailable, continuing without it", "error", err)
		redisCache = nil
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// 初始化 Repository 层
	conversationRepo := repository.NewConversationRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	webhookRepo := repository.NewWebhookRepository(db)

	contentReader := reader.New(cfg.Reader)
	contentAnalyzer := analyzer.New(cfg.AI)
	shareTokens := jwt.NewShareTokenService(cfg.Share.Secret, cfg.Share.Expire)

	// 初始化 WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run(ctx)

	dispatcher := webhook.NewDispatcher(webhookRepo, cfg.Webhook)

	// 事件先到 Webhook，再到订阅者；有 Redis 时经 Redis 转发给所有实例的 Hub
	var (
		notifier    service.Notifiers
		revocations service.ShareRevocationStore
		limiter     middleware.Limiter
		pinger      service.Pinger
	)
	if redisCache != nil {
		notifier = service.Notifiers{dispatcher, redisCache}
		revocations = redisCache
		limiter = redisCache
		pinger = redisCache

		sub := redisCache.SubscribeConversationEvents(ctx)
		defer sub.Close()
		go wsHub.Relay(ctx, sub.Channel())
	} else {
		notifier = service.Notifiers{dispatcher, wsHub}
	}

	// 初始化 Service 层
	conversationService := service.NewConversationService(conversationRepo, messageRepo, contentReader, contentAnalyzer)
	conversationService.SetNotifier(notifier)
	shareService := service.NewShareService(conversationRepo, shareTokens, revocations)
	shareService.SetNotifier(notifier)
	webhookService := service.NewWebhookService(webhookRepo)
	healthService := service.NewHealthService(db, pinger)

	// 初始化 Handler 层
	handlers := &handler.Handlers{
		Conversation: handler.NewConversationHandler(conversationService),
		Share:        handler.NewShareHandler(shareService),
		Webhook:      handler.NewWebhookHandler(webhookService),
		Health:       handler.NewHealthHandler(healthService),
	}
	wsHandler := websocket.NewHandler(wsHub, conversationRepo, cfg.CORS.AllowedOrigins)

	// 设置 Gin 模式
	if cfg.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// 全局中间件
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.RecoveryMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.CORS.AllowedOrigins))

	// 注册路由
	api := router.Group("/api")
	handler.RegisterRoutes(api, handlers, limiter, cfg.RateLimit)
	wsHandler.RegisterRoutes(api)
	router.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "接口不存在")
	})

	// 创建 HTTP 服务器
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 在 goroutine 中启动服务器
	go func() {
		slog.Info("server starting", "addr", addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}

	// 关闭 Hub 和 Redis 订阅
	stop()

	// 等待进行中的 Webhook 投递
	dispatcher.Wait()

	if redisCache != nil {
		if err := redisCache.Close(); err != nil {
			slog.Error("failed to close redis", "error", err)
		}
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}

	slog.Info("server exited")
}
