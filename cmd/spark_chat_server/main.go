package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"spark_chat_server/internal/config"
	dao "spark_chat_server/internal/dao/mysql"
	myredis "spark_chat_server/internal/dao/redis"
	"spark_chat_server/internal/gateway/websocket"
	"spark_chat_server/internal/handler"
	"spark_chat_server/internal/https_server"
	"spark_chat_server/internal/infrastructure/logger"
	"spark_chat_server/internal/infrastructure/mq"
	"spark_chat_server/internal/service"
	"spark_chat_server/pkg/util/jwt"
	"spark_chat_server/pkg/util/snowflake"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// 1. 加载配置
	conf := config.GetConfig()

	// 2. 初始化日志
	if err := logger.Init(&conf.LogConfig, conf.MainConfig.Mode); err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	defer func() { _ = zap.L().Sync() }()
	if conf.MainConfig.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	zap.L().Info("日志初始化成功")

	// 3. 初始化数据库
	repos, err := dao.Init(&conf.MysqlConfig)
	if err != nil {
		zap.L().Fatal("数据库初始化失败", zap.Error(err))
	}
	zap.L().Info("数据库初始化成功")

	// 4. 初始化 Redis
	redisClient, cache, err := myredis.Init(&conf.RedisConfig)
	if err != nil {
		zap.L().Fatal("Redis 初始化失败", zap.Error(err))
	}
	zap.L().Info("Redis 初始化成功")

	// 5. 初始化 ID 生成和 JWT
	snowflake.Init(conf.SnowflakeConfig.MachineID)
	jwt.Init(conf.JWTConfig.Secret, conf.JWTConfig.AccessTokenExpiry)
	if err := handler.InitTrans("zh"); err != nil {
		zap.L().Fatal("参数校验翻译初始化失败", zap.Error(err))
	}

	// 6. 事件总线
	hub := mq.NewHub()
	broker, err := mq.NewBroker(conf.KafkaConfig, hub)
	if err != nil {
		zap.L().Fatal("事件总线初始化失败", zap.Error(err))
	}
	go broker.Start()
	zap.L().Info("事件总线初始化成功", zap.String("mode", conf.KafkaConfig.MessageMode))

	// 7. Service 层 (依赖注入)
	svc := service.NewServices(service.Dependencies{
		Repos:     repos,
		Cache:     cache,
		Presence:  myredis.NewPresenceStore(redisClient),
		Typing:    myredis.NewTypingStore(redisClient),
		Hub:       hub,
		Publisher: broker,
	}, conf)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go svc.RunSweeper(ctx, time.Duration(conf.PresenceConfig.SweepSeconds)*time.Second)

	// 8. 网关和 HTTP 服务
	gateway := websocket.NewGateway(svc)
	engine := https_server.Init(conf.MainConfig, handler.NewHandlers(svc, gateway))
	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", conf.MainConfig.Host, conf.MainConfig.Port),
		Handler: engine,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("server running fault", zap.Error(err))
		}
	}()
	zap.L().Info("服务启动", zap.String("addr", srv.Addr))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zap.L().Info("关闭服务器...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("HTTP 服务关闭失败", zap.Error(err))
	}
	// 断开连接会写离线，需在关闭事件总线和 Redis 之前
	gateway.CloseAll()
	cancel()
	broker.Close()
	if err := redisClient.Close(); err != nil {
		zap.L().Warn("Redis 关闭失败", zap.Error(err))
	}

	zap.L().Info("服务器已关闭")
}
