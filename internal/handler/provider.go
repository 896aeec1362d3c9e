// Package handler 提供 HTTP 请求处理器
// 本文件定义 Handler 聚合结构和构造函数
// 遵循依赖倒置原则，通过构造函数注入 Service 依赖
package handler

import (
	"spark_chat_server/internal/service"
)

// Handlers 聚合所有 Handler 实例
// 作为依赖注入的入口，Router 层通过此结构访问各个 Handler
type Handlers struct {
	Conversation *ConversationHandler
	Message      *MessageHandler
	Block        *BlockHandler
	Presence     *PresenceHandler
	Typing       *TypingHandler
	Ws           *WsHandler
}

// NewHandlers 创建并注入所有 Handler 实例
// svc: Service 层聚合实例
// gateway: 实时网关，负责 WebSocket 连接
func NewHandlers(svc *service.Services, gateway Upgrader) *Handlers {
	return &Handlers{
		Conversation: NewConversationHandler(svc.Conversation),
		Message:      NewMessageHandler(svc.Gate, svc.Message),
		Block:        NewBlockHandler(svc.Block),
		Presence:     NewPresenceHandler(svc.Presence, svc.Match),
		Typing:       NewTypingHandler(svc.Typing, svc.Conversation),
		Ws:           NewWsHandler(gateway),
	}
}
