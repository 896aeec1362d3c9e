// Package servicetest 组装基于内存 SQLite、miniredis 和单机 Broker 的完整 Service，供网关和 HTTP 测试使用
package servicetest

import (
	"testing"

	"spark_chat_server/internal/config"
	"spark_chat_server/internal/dao/mysql/repository"
	myredis "spark_chat_server/internal/dao/redis"
	"spark_chat_server/internal/service"
	"spark_chat_server/internal/testutil"
)

// Env 测试用的 Service 聚合及其底层仓储
type Env struct {
	Services *service.Services
	Repos    *repository.Repositories
}

// New 创建测试环境，资源在测试结束时释放
func New(t testing.TB) *Env {
	t.Helper()
	repos := testutil.NewRepos(t)
	_, client, cache := testutil.NewCache(t)
	hub, broker := testutil.NewBus(t)

	conf := &config.Config{}
	conf.PresenceConfig.LeaseSeconds = 60
	conf.PresenceConfig.TypingSeconds = 5
	conf.MessageConfig.MaxContentLength = 2000

	svc := service.NewServices(service.Dependencies{
		Repos:     repos,
		Cache:     cache,
		Presence:  myredis.NewPresenceStore(client),
		Typing:    myredis.NewTypingStore(client),
		Hub:       hub,
		Publisher: broker,
	}, conf)
	return &Env{Services: svc, Repos: repos}
}
