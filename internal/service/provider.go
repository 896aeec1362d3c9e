// Package service 提供业务逻辑层
// 本文件实现 Service 层的依赖注入和聚合
package service

import (
	"context"
	"time"

	"spark_chat_server/internal/config"
	"spark_chat_server/internal/dao/mysql/repository"
	myredis "spark_chat_server/internal/dao/redis"
	"spark_chat_server/internal/infrastructure/mq"
	"spark_chat_server/internal/service/block"
	"spark_chat_server/internal/service/conversation"
	"spark_chat_server/internal/service/gate"
	"spark_chat_server/internal/service/match"
	"spark_chat_server/internal/service/message"
	"spark_chat_server/internal/service/presence"
	"spark_chat_server/internal/service/profile"
	"spark_chat_server/internal/service/typing"
)

// Dependencies Service 层依赖的基础设施
type Dependencies struct {
	Repos     *repository.Repositories
	Cache     myredis.AsyncCacheService
	Presence  presence.Store
	Typing    typing.Store
	Hub       *mq.Hub
	Publisher mq.Publisher
}

// Services 聚合所有 Service 实例
// 作为依赖注入的入口，Handler 层和网关通过它访问各个 Service
type Services struct {
	Conversation ConversationService
	Gate         GateService
	Message      MessageService
	Presence     PresenceService
	Typing       TypingService
	Block        BlockService
	Match        MatchService

	sweeper interface {
		RunSweeper(ctx context.Context, interval time.Duration)
	}
}

// NewServices 创建并注入所有 Service 实例
func NewServices(deps Dependencies, conf *config.Config) *Services {
	profileSvc := profile.NewProfileService(deps.Repos, deps.Cache)
	tracker := presence.NewPresenceTracker(
		deps.Presence,
		deps.Repos,
		deps.Cache,
		deps.Hub,
		deps.Publisher,
		time.Duration(conf.PresenceConfig.LeaseSeconds)*time.Second,
	)

	return &Services{
		Conversation: conversation.NewConversationService(deps.Repos, deps.Hub, deps.Publisher, profileSvc),
		Gate:         gate.NewGateService(deps.Repos, deps.Publisher, conf.MessageConfig.MaxContentLength),
		Message:      message.NewMessageService(deps.Repos, deps.Hub, deps.Publisher),
		Presence:     tracker,
		Typing: typing.NewTypingService(
			deps.Repos,
			deps.Typing,
			deps.Hub,
			deps.Publisher,
			time.Duration(conf.PresenceConfig.TypingSeconds)*time.Second,
		),
		Block:   block.NewBlockService(deps.Repos),
		Match:   match.NewMatchService(deps.Repos, tracker, profileSvc, conf.MatchConfig.Cost),
		sweeper: tracker,
	}
}

// RunSweeper 启动在线租约巡检，阻塞直到 ctx 结束
func (s *Services) RunSweeper(ctx context.Context, interval time.Duration) {
	s.sweeper.RunSweeper(ctx, interval)
}
