// Package message 会话消息流：按序读取、实时订阅和已读回执
package message

import (
	"context"

	"spark_chat_server/internal/dao/mysql/repository"
	"spark_chat_server/internal/dto/respond"
	"spark_chat_server/internal/infrastructure/mq"
	"spark_chat_server/internal/model"
	"spark_chat_server/pkg/errorx"

	"go.uber.org/zap"
)

// messageService 消息业务逻辑实现
type messageService struct {
	repos     *repository.Repositories
	hub       *mq.Hub
	publisher mq.Publisher
}

// NewMessageService 构造函数
func NewMessageService(repos *repository.Repositories, hub *mq.Hub, publisher mq.Publisher) *messageService {
	return &messageService{repos: repos, hub: hub, publisher: publisher}
}

// List 获取会话的全部消息，按 (发送时间, 到达顺序) 升序，仅参与者可读
func (m *messageService) List(ctx context.Context, conversationId, userId string) ([]respond.MessageRespond, error) {
	if _, err := m.authorize(ctx, conversationId, userId); err != nil {
		return nil, err
	}
	return m.load(ctx, conversationId)
}

// Subscribe 订阅会话消息
// 订阅后立即回调一次完整列表，此后每次有新消息或已读变化都回调完整列表
// 读取失败时回调空列表，调用方需自行保证订阅者有权访问该会话
func (m *messageService) Subscribe(conversationId string, onMessages func([]respond.MessageRespond)) (dispose func()) {
	return m.hub.Subscribe(mq.TopicConversation(conversationId), func(ev mq.Event) {
		list, err := m.load(context.Background(), conversationId)
		if err != nil {
			zap.L().Warn("消息订阅读取失败", zap.String("conversation_id", conversationId), zap.Error(err))
			list = []respond.MessageRespond{}
		}
		onMessages(list)
	})
}

// MarkRead 把消息标记为已读
// 只作用于对方发送的未读消息，自己的消息和已读消息保持不变，可重复调用
func (m *messageService) MarkRead(ctx context.Context, conversationId string, messageIds []string, readerId string) (int64, error) {
	conv, err := m.authorize(ctx, conversationId, readerId)
	if err != nil {
		return 0, err
	}
	if len(messageIds) == 0 {
		return 0, nil
	}

	updated, err := m.repos.Message.MarkRead(ctx, conv.Uuid, messageIds, readerId)
	if err != nil {
		zap.L().Error("标记已读失败",
			zap.String("conversation_id", conversationId),
			zap.String("reader_id", readerId),
			zap.Error(err),
		)
		return 0, errorx.ErrStoreUnavailable
	}

	if updated > 0 {
		mq.PublishAll(ctx, m.publisher,
			mq.Event{Topic: mq.TopicConversation(conv.Uuid), Kind: mq.KindRead, ConversationId: conv.Uuid, UserId: readerId},
			mq.Event{Topic: mq.TopicInbox(readerId), Kind: mq.KindConversation, ConversationId: conv.Uuid},
		)
	}
	return updated, nil
}

func (m *messageService) authorize(ctx context.Context, conversationId, userId string) (*model.Conversation, error) {
	if userId == "" {
		return nil, errorx.ErrUnauthenticated
	}
	conv, err := m.repos.Conversation.FindByUuid(ctx, conversationId)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.ErrConversationNotFound
		}
		zap.L().Error("查询会话失败", zap.String("conversation_id", conversationId), zap.Error(err))
		return nil, errorx.ErrStoreUnavailable
	}
	if !conv.HasParticipant(userId) {
		return nil, errorx.ErrInvalidConversation
	}
	return conv, nil
}

func (m *messageService) load(ctx context.Context, conversationId string) ([]respond.MessageRespond, error) {
	messages, err := m.repos.Message.FindByConversationId(ctx, conversationId)
	if err != nil {
		zap.L().Error("查询消息列表失败", zap.String("conversation_id", conversationId), zap.Error(err))
		return nil, errorx.ErrStoreUnavailable
	}
	rsp := make([]respond.MessageRespond, 0, len(messages))
	for _, msg := range messages {
		rsp = append(rsp, respond.MessageRespond{
			MessageId:      msg.Uuid,
			ConversationId: msg.ConversationId,
			SenderId:       msg.SendId,
			Content:        msg.Content,
			SendAt:         msg.SendAt.UnixMilli(),
			Delivered:      msg.Delivered,
			Read:           msg.IsRead,
		})
	}
	return rsp, nil
}
