// Package conversation 维护用户的单聊会话目录
package conversation

import (
	"context"
	"time"

	"spark_chat_server/internal/dao/mysql/repository"
	"spark_chat_server/internal/dto/respond"
	"spark_chat_server/internal/infrastructure/mq"
	"spark_chat_server/internal/model"
	"spark_chat_server/pkg/errorx"
	"spark_chat_server/pkg/util/convkey"

	"go.uber.org/zap"
)

// ProfileReader 会话列表展示对方资料时使用
type ProfileReader interface {
	GetProfiles(ctx context.Context, userIds []string) (map[string]*model.UserProfile, error)
}

// conversationService 会话目录业务逻辑实现
type conversationService struct {
	repos     *repository.Repositories
	hub       *mq.Hub
	publisher mq.Publisher
	profiles  ProfileReader
	now       func() time.Time
}

// NewConversationService 构造函数，注入所有依赖，profiles 可以为 nil
func NewConversationService(
	repos *repository.Repositories,
	hub *mq.Hub,
	publisher mq.Publisher,
	profiles ProfileReader,
) *conversationService {
	return &conversationService{
		repos:     repos,
		hub:       hub,
		publisher: publisher,
		profiles:  profiles,
		now:       time.Now,
	}
}

// GetOrCreate 获取两人的会话，不存在时创建
// 并发调用只会产生一条记录，所有调用方拿到同一个会话
func (s *conversationService) GetOrCreate(ctx context.Context, userId, peerId string) (*respond.ConversationRespond, error) {
	if userId == "" {
		return nil, errorx.ErrUnauthenticated
	}
	if peerId == "" || userId == peerId {
		return nil, errorx.ErrInvalidConversation
	}
	key := convkey.Resolve(userId, peerId)
	one, two := convkey.Order(userId, peerId)

	// 1. 先读，绝大多数情况会话已存在
	conv, err := s.repos.Conversation.FindByUuid(ctx, key)
	if err == nil {
		if err := checkPair(conv, one, two); err != nil {
			return nil, err
		}
		return s.toRespond(ctx, conv, userId), nil
	}
	if !errorx.IsNotFound(err) {
		zap.L().Error("查询会话失败", zap.String("conversation_id", key), zap.Error(err))
		return nil, errorx.ErrStoreUnavailable
	}

	// 2. 不存在则插入，唯一键冲突说明别人已经创建
	now := s.now()
	created, err := s.repos.Conversation.CreateIfAbsent(ctx, &model.Conversation{
		Uuid:      key,
		UserOneId: one,
		UserTwoId: two,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		zap.L().Error("创建会话失败", zap.String("conversation_id", key), zap.Error(err))
		return nil, errorx.ErrStoreUnavailable
	}

	// 3. 重新读取，拿到赢家写入的那一条
	conv, err = s.repos.Conversation.FindByUuid(ctx, key)
	if err != nil {
		zap.L().Error("创建后读取会话失败", zap.String("conversation_id", key), zap.Error(err))
		return nil, errorx.ErrStoreUnavailable
	}
	if err := checkPair(conv, one, two); err != nil {
		return nil, err
	}

	if created {
		zap.L().Info("会话已创建",
			zap.String("conversation_id", key),
			zap.String("user_id", userId),
			zap.String("peer_id", peerId),
		)
		mq.PublishAll(ctx, s.publisher,
			mq.Event{Topic: mq.TopicInbox(one), Kind: mq.KindConversation, ConversationId: key},
			mq.Event{Topic: mq.TopicInbox(two), Kind: mq.KindConversation, ConversationId: key},
		)
	}
	return s.toRespond(ctx, conv, userId), nil
}

// checkPair 会话键对应的记录必须恰好属于 one、two 两人
func checkPair(conv *model.Conversation, one, two string) error {
	if conv.UserOneId != one || conv.UserTwoId != two {
		zap.L().Error("会话键与参与者不一致",
			zap.String("conversation_id", conv.Uuid),
			zap.String("user_one_id", one),
			zap.String("user_two_id", two),
		)
		return errorx.ErrInvalidConversation
	}
	return nil
}

// Authorize 加载会话并校验 userId 是参与者
func (s *conversationService) Authorize(ctx context.Context, conversationId, userId string) (*model.Conversation, error) {
	if userId == "" {
		return nil, errorx.ErrUnauthenticated
	}
	conv, err := s.repos.Conversation.FindByUuid(ctx, conversationId)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.ErrConversationNotFound
		}
		zap.L().Error("查询会话失败", zap.String("conversation_id", conversationId), zap.Error(err))
		return nil, errorx.ErrStoreUnavailable
	}
	if _, ok := conv.Counterpart(userId); !ok {
		return nil, errorx.ErrInvalidConversation
	}
	return conv, nil
}

// Get 获取单个会话，仅参与者可见
func (s *conversationService) Get(ctx context.Context, conversationId, userId string) (*respond.ConversationRespond, error) {
	conv, err := s.Authorize(ctx, conversationId, userId)
	if err != nil {
		return nil, err
	}
	return s.toRespond(ctx, conv, userId), nil
}

// List 获取用户的全部会话，最近更新的在前
func (s *conversationService) List(ctx context.Context, userId string) ([]respond.ConversationRespond, error) {
	if userId == "" {
		return nil, errorx.ErrUnauthenticated
	}
	conversations, err := s.repos.Conversation.FindByUserId(ctx, userId)
	if err != nil {
		zap.L().Error("查询会话列表失败", zap.String("user_id", userId), zap.Error(err))
		return nil, errorx.ErrStoreUnavailable
	}
	if len(conversations) == 0 {
		return []respond.ConversationRespond{}, nil
	}

	ids := make([]string, 0, len(conversations))
	peers := make([]string, 0, len(conversations))
	for i := range conversations {
		ids = append(ids, conversations[i].Uuid)
		if peer, ok := conversations[i].Counterpart(userId); ok {
			peers = append(peers, peer)
		}
	}

	unread, err := s.repos.Message.CountUnread(ctx, ids, userId)
	if err != nil {
		zap.L().Error("统计未读失败", zap.String("user_id", userId), zap.Error(err))
		return nil, errorx.ErrStoreUnavailable
	}
	profiles := s.loadProfiles(ctx, peers)

	rsp := make([]respond.ConversationRespond, 0, len(conversations))
	for i := range conversations {
		item := buildRespond(&conversations[i], userId, profiles)
		item.UnreadCount = unread[conversations[i].Uuid]
		rsp = append(rsp, item)
	}
	return rsp, nil
}

// ListForUser 订阅用户的会话列表
// 订阅后立即回调一次完整列表，之后任一会话变化都会重新回调完整列表
// 读取失败时回调空列表；返回的函数用于取消订阅
func (s *conversationService) ListForUser(userId string, onChange func([]respond.ConversationRespond)) (dispose func()) {
	return s.hub.Subscribe(mq.TopicInbox(userId), func(ev mq.Event) {
		list, err := s.List(context.Background(), userId)
		if err != nil {
			zap.L().Warn("会话列表订阅读取失败", zap.String("user_id", userId), zap.Error(err))
			list = []respond.ConversationRespond{}
		}
		onChange(list)
	})
}

// toRespond 单个会话的响应，附带未读数和对方资料
// 未读数和资料读取失败时降级为空值
func (s *conversationService) toRespond(ctx context.Context, conv *model.Conversation, userId string) *respond.ConversationRespond {
	peer, _ := conv.Counterpart(userId)
	item := buildRespond(conv, userId, s.loadProfiles(ctx, []string{peer}))
	unread, err := s.repos.Message.CountUnread(ctx, []string{conv.Uuid}, userId)
	if err != nil {
		zap.L().Warn("统计未读失败", zap.String("conversation_id", conv.Uuid), zap.Error(err))
	} else {
		item.UnreadCount = unread[conv.Uuid]
	}
	return &item
}

func (s *conversationService) loadProfiles(ctx context.Context, userIds []string) map[string]*model.UserProfile {
	if s.profiles == nil || len(userIds) == 0 {
		return nil
	}
	profiles, err := s.profiles.GetProfiles(ctx, userIds)
	if err != nil {
		zap.L().Warn("读取对方资料失败", zap.Strings("user_ids", userIds), zap.Error(err))
		return nil
	}
	return profiles
}

func buildRespond(conv *model.Conversation, userId string, profiles map[string]*model.UserProfile) respond.ConversationRespond {
	peer, _ := conv.Counterpart(userId)
	item := respond.ConversationRespond{
		ConversationId: conv.Uuid,
		PeerId:         peer,
		LastMessage:    conv.LastMessage,
		LastSenderId:   conv.LastSenderId,
		UpdatedAt:      conv.UpdatedAt.UnixMilli(),
	}
	if conv.LastMessageAt != nil {
		item.LastMessageAt = conv.LastMessageAt.UnixMilli()
	}
	if p, ok := profiles[peer]; ok && p != nil {
		item.PeerNickname = p.Nickname
		item.PeerAvatar = p.Avatar
	}
	return item
}
