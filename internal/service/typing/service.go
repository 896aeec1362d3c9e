// Package typing 会话"正在输入"状态，只保存在 Redis 中并自动过期
package typing

import (
	"context"
	"sort"
	"time"

	"spark_chat_server/internal/dao/mysql/repository"
	"spark_chat_server/internal/dto/respond"
	"spark_chat_server/internal/infrastructure/mq"
	"spark_chat_server/pkg/errorx"

	"go.uber.org/zap"
)

// Store 输入状态存储，由 dao/redis.TypingStore 实现
type Store interface {
	Set(ctx context.Context, conversationId, userId string, at time.Time, ttl time.Duration) error
	Clear(ctx context.Context, conversationId, userId string) error
	Active(ctx context.Context, conversationId string, now time.Time) ([]string, error)
}

// typingService 输入状态业务逻辑实现
type typingService struct {
	repos     *repository.Repositories
	store     Store
	hub       *mq.Hub
	publisher mq.Publisher
	ttl       time.Duration
	now       func() time.Time
}

// NewTypingService 构造函数，ttl 为输入状态的存活时长
func NewTypingService(
	repos *repository.Repositories,
	store Store,
	hub *mq.Hub,
	publisher mq.Publisher,
	ttl time.Duration,
) *typingService {
	return &typingService{repos: repos, store: store, hub: hub, publisher: publisher, ttl: ttl, now: time.Now}
}

// SetTyping 设置或清除用户在会话中的输入状态，仅参与者可设置
func (s *typingService) SetTyping(ctx context.Context, conversationId, userId string, typing bool) error {
	if userId == "" {
		return errorx.ErrUnauthenticated
	}
	conv, err := s.repos.Conversation.FindByUuid(ctx, conversationId)
	if err != nil {
		if errorx.IsNotFound(err) {
			return errorx.ErrConversationNotFound
		}
		zap.L().Error("查询会话失败", zap.String("conversation_id", conversationId), zap.Error(err))
		return errorx.ErrStoreUnavailable
	}
	if !conv.HasParticipant(userId) {
		return errorx.ErrInvalidConversation
	}

	if typing {
		err = s.store.Set(ctx, conversationId, userId, s.now(), s.ttl)
	} else {
		err = s.store.Clear(ctx, conversationId, userId)
	}
	if err != nil {
		zap.L().Warn("写入输入状态失败",
			zap.String("conversation_id", conversationId),
			zap.String("user_id", userId),
			zap.Error(err),
		)
		return errorx.ErrStoreUnavailable
	}

	mq.PublishAll(ctx, s.publisher, mq.Event{
		Topic:          mq.TopicTyping(conversationId),
		Kind:           mq.KindTyping,
		ConversationId: conversationId,
		UserId:         userId,
		Typing:         typing,
	})
	return nil
}

// Typing 当前正在输入的用户
func (s *typingService) Typing(ctx context.Context, conversationId string) (*respond.TypingRespond, error) {
	users, err := s.store.Active(ctx, conversationId, s.now())
	if err != nil {
		zap.L().Warn("读取输入状态失败", zap.String("conversation_id", conversationId), zap.Error(err))
		return nil, errorx.ErrStoreUnavailable
	}
	if users == nil {
		users = []string{}
	}
	sort.Strings(users)
	return &respond.TypingRespond{
		ConversationId: conversationId,
		UserIds:        users,
		TTLSeconds:     int(s.ttl / time.Second),
	}, nil
}

// Subscribe 订阅会话的输入状态，读取失败时回调空列表
func (s *typingService) Subscribe(conversationId string, onTyping func(respond.TypingRespond)) (dispose func()) {
	return s.hub.Subscribe(mq.TopicTyping(conversationId), func(ev mq.Event) {
		rsp, err := s.Typing(context.Background(), conversationId)
		if err != nil {
			rsp = &respond.TypingRespond{ConversationId: conversationId, UserIds: []string{}}
		}
		onTyping(*rsp)
	})
}
