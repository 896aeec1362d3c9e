// Package testutil 为各包测试提供内存数据库和内存 Redis
package testutil

import (
	"fmt"
	"testing"

	"spark_chat_server/internal/dao/mysql/repository"
	myredis "spark_chat_server/internal/dao/redis"
	"spark_chat_server/internal/infrastructure/mq"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewDB 打开一个独立的内存 SQLite 并完成迁移
// 只保留一个连接，事务与并发查询在该连接上排队
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sqlite sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := repository.AutoMigrate(db); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return db
}

// NewRepos 基于内存 SQLite 创建 Repositories
func NewRepos(t testing.TB) *repository.Repositories {
	t.Helper()
	return repository.NewRepositories(NewDB(t))
}

// NewRedis 启动 miniredis 并返回连接它的客户端
func NewRedis(t testing.TB) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

// NewCache 基于 miniredis 创建缓存服务
// 不启动 Worker，SubmitTask 总是同步执行，测试中无需等待异步任务
func NewCache(t testing.TB) (*miniredis.Miniredis, *redis.Client, *myredis.RedisCache) {
	t.Helper()
	mr, client := NewRedis(t)
	return mr, client, myredis.NewRedisCache(client, 0, 0)
}

// NewBus 创建 Hub 和已启动的单机 Broker
func NewBus(t testing.TB) (*mq.Hub, *mq.ChannelBroker) {
	t.Helper()
	hub := mq.NewHub()
	broker := mq.NewChannelBroker(hub)
	go broker.Start()
	t.Cleanup(broker.Close)
	return hub, broker
}
