// Package gate 消息投递闸门：校验会话和拉黑关系，通过后写入消息
package gate

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"spark_chat_server/internal/dao/mysql/repository"
	"spark_chat_server/internal/dto/respond"
	"spark_chat_server/internal/infrastructure/mq"
	"spark_chat_server/internal/model"
	"spark_chat_server/pkg/errorx"
	"spark_chat_server/pkg/util/snowflake"

	"go.uber.org/zap"
)

// gateService 发送消息业务逻辑实现
type gateService struct {
	repos      *repository.Repositories
	publisher  mq.Publisher
	maxContent int
	now        func() time.Time
}

// NewGateService 构造函数，maxContent 为单条消息最大字符数
func NewGateService(repos *repository.Repositories, publisher mq.Publisher, maxContent int) *gateService {
	return &gateService{
		repos:      repos,
		publisher:  publisher,
		maxContent: maxContent,
		now:        time.Now,
	}
}

// Send 发送一条文本消息
// 检查顺序：会话存在 -> 参与者合法 -> 对方未拉黑发送者 -> 发送者未拉黑对方 -> 写入
// 整个过程在同一个事务里并持有会话行锁，与拉黑操作互斥；失败不会重试
func (s *gateService) Send(ctx context.Context, conversationId, senderId, text string) (*respond.MessageRespond, error) {
	if senderId == "" {
		return nil, errorx.ErrUnauthenticated
	}
	if strings.TrimSpace(text) == "" {
		return nil, errorx.New(errorx.CodeInvalidParam, "消息内容不能为空")
	}
	if s.maxContent > 0 && utf8.RuneCountInString(text) > s.maxContent {
		return nil, errorx.Newf(errorx.CodeInvalidParam, "消息内容不能超过 %d 个字符", s.maxContent)
	}

	var (
		message model.Message
		peerId  string
	)
	err := s.repos.Transaction(func(tx *repository.Repositories) error {
		// 1. 加锁读取会话
		conv, err := tx.Conversation.FindByUuidForUpdate(ctx, conversationId)
		if err != nil {
			if errorx.IsNotFound(err) {
				return errorx.ErrConversationNotFound
			}
			return s.storeError("锁定会话失败", conversationId, err)
		}

		// 2. 确定接收方
		peer, ok := conv.Counterpart(senderId)
		if !ok {
			return errorx.ErrInvalidConversation
		}
		peerId = peer

		// 3. 对方是否拉黑了发送者
		blocked, err := tx.Block.Exists(ctx, peer, senderId)
		if err != nil {
			return s.storeError("查询拉黑关系失败", conversationId, err)
		}
		if blocked {
			return errorx.ErrSenderBlocked
		}

		// 4. 发送者是否拉黑了对方
		blocking, err := tx.Block.Exists(ctx, senderId, peer)
		if err != nil {
			return s.storeError("查询拉黑关系失败", conversationId, err)
		}
		if blocking {
			return errorx.ErrRecipientBlockedBySender
		}

		// 5. 写入消息，时间戳在会话内单调不减
		sendAt := s.now().Truncate(time.Millisecond)
		if conv.LastMessageAt != nil && sendAt.Before(*conv.LastMessageAt) {
			sendAt = *conv.LastMessageAt
		}
		message = model.Message{
			Uuid:           snowflake.GenerateIDString(),
			ConversationId: conv.Uuid,
			SendId:         senderId,
			Content:        text,
			SendAt:         sendAt,
			Delivered:      true,
			IsRead:         false,
		}
		if err := tx.Message.Create(ctx, &message); err != nil {
			return s.storeError("写入消息失败", conversationId, err)
		}
		if err := tx.Conversation.UpdateSummary(ctx, conv.Uuid, text, senderId, sendAt); err != nil {
			return s.storeError("更新会话摘要失败", conversationId, err)
		}
		return nil
	})
	if err != nil {
		var codeErr *errorx.CodeError
		if !errors.As(err, &codeErr) {
			// 提交失败等未包装的错误
			zap.L().Error("发送消息事务失败", zap.String("conversation_id", conversationId), zap.Error(err))
			return nil, errorx.ErrStoreUnavailable
		}
		if codeErr.Code != errorx.CodeStoreUnavailable {
			zap.L().Info("消息被拒绝",
				zap.String("conversation_id", conversationId),
				zap.String("sender_id", senderId),
				zap.Int("code", codeErr.Code),
			)
		}
		return nil, err
	}

	mq.PublishAll(ctx, s.publisher,
		mq.Event{Topic: mq.TopicConversation(message.ConversationId), Kind: mq.KindMessage, ConversationId: message.ConversationId, UserId: senderId, At: message.SendAt.UnixMilli()},
		mq.Event{Topic: mq.TopicInbox(senderId), Kind: mq.KindConversation, ConversationId: message.ConversationId},
		mq.Event{Topic: mq.TopicInbox(peerId), Kind: mq.KindConversation, ConversationId: message.ConversationId},
	)

	return &respond.MessageRespond{
		MessageId:      message.Uuid,
		ConversationId: message.ConversationId,
		SenderId:       message.SendId,
		Content:        message.Content,
		SendAt:         message.SendAt.UnixMilli(),
		Delivered:      message.Delivered,
		Read:           message.IsRead,
	}, nil
}

func (s *gateService) storeError(msg, conversationId string, err error) error {
	zap.L().Error(msg, zap.String("conversation_id", conversationId), zap.Error(err))
	return errorx.ErrStoreUnavailable
}
