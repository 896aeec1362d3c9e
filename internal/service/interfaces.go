// Package service 定义业务层接口
// 本文件定义所有 Service 接口，供 Handler 层和 WebSocket 网关调用
// 订阅类方法返回的 dispose 用于取消订阅，不能在回调内部调用
package service

import (
	"context"

	"spark_chat_server/internal/dto/request"
	"spark_chat_server/internal/dto/respond"
	"spark_chat_server/internal/model"
	"spark_chat_server/internal/service/presence"
)

// ConversationService 会话目录接口
type ConversationService interface {
	// GetOrCreate 获取或创建与 peerId 的单聊会话
	GetOrCreate(ctx context.Context, userId, peerId string) (*respond.ConversationRespond, error)
	// Authorize 加载会话并校验 userId 是参与者
	Authorize(ctx context.Context, conversationId, userId string) (*model.Conversation, error)
	// Get 获取单个会话
	Get(ctx context.Context, conversationId, userId string) (*respond.ConversationRespond, error)
	// List 获取会话列表快照
	List(ctx context.Context, userId string) ([]respond.ConversationRespond, error)
	// ListForUser 订阅会话列表
	ListForUser(userId string, onChange func([]respond.ConversationRespond)) (dispose func())
}

// GateService 消息投递接口
type GateService interface {
	// Send 发送文本消息，失败不重试
	Send(ctx context.Context, conversationId, senderId, text string) (*respond.MessageRespond, error)
}

// MessageService 消息流接口
type MessageService interface {
	// List 获取会话消息快照
	List(ctx context.Context, conversationId, userId string) ([]respond.MessageRespond, error)
	// Subscribe 订阅会话消息
	Subscribe(conversationId string, onMessages func([]respond.MessageRespond)) (dispose func())
	// MarkRead 标记已读，返回实际更新条数
	MarkRead(ctx context.Context, conversationId string, messageIds []string, readerId string) (int64, error)
}

// PresenceService 在线状态接口
type PresenceService interface {
	GoOnline(ctx context.Context, userId string, conn presence.Conn) error
	GoOffline(ctx context.Context, userId string) error
	Heartbeat(ctx context.Context, userId, connId string) (bool, error)
	Status(ctx context.Context, userId string) (respond.PresenceRespond, error)
	StatusMany(ctx context.Context, userIds []string) ([]respond.PresenceRespond, error)
	Subscribe(userId string, onStatus func(respond.PresenceRespond)) (dispose func())
	SubscribeMany(userIds []string, onStatus func(respond.PresenceRespond)) *presence.Group
	OnlineUsers(ctx context.Context) ([]string, error)
}

// TypingService 输入状态接口
type TypingService interface {
	SetTyping(ctx context.Context, conversationId, userId string, typing bool) error
	Typing(ctx context.Context, conversationId string) (*respond.TypingRespond, error)
	Subscribe(conversationId string, onTyping func(respond.TypingRespond)) (dispose func())
}

// BlockService 拉黑与举报接口
type BlockService interface {
	Block(ctx context.Context, blockerId, blockedId string) error
	Unblock(ctx context.Context, blockerId, blockedId string) error
	IsBlocked(ctx context.Context, blockerId, blockedId string) (bool, error)
	ListBlocked(ctx context.Context, blockerId string) ([]respond.BlockRespond, error)
	Report(ctx context.Context, reporterId string, req request.ReportRequest) error
}

// MatchService 随机匹配接口
type MatchService interface {
	RandomOnline(ctx context.Context, userId string) (*respond.MatchRespond, error)
}
