// Package redis 本文件仅包含 Redis 连接初始化逻辑
// 使用 github.com/redis/go-redis/v9 作为底层客户端
package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"spark_chat_server/internal/config"

	"github.com/redis/go-redis/v9"
)

// Init 创建 Redis 客户端并检查连通性，同时返回带 Worker Pool 的缓存服务
func Init(conf *config.RedisConfig) (*redis.Client, *RedisCache, error) {
	addr := conf.Host + ":" + strconv.Itoa(conf.Port)

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: conf.Password,
		DB:       conf.Db,
		// 连接池配置
		PoolSize:     50,             // 最大连接数
		MinIdleConns: conf.WorkerNum, // 最小空闲连接，与 Worker 数量匹配
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}

	return client, NewRedisCache(client, conf.WorkerNum, conf.TaskBufSize), nil
}
