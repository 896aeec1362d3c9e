package request

// GetOrCreateConversationRequest 获取或创建单聊会话请求
// 使用位置:
//   - internal/handler/conversation_handler.go: GetOrCreate
type GetOrCreateConversationRequest struct {
	PeerId string `json:"peer_id" binding:"required,max=64"`
}

// ConversationIdQuery 按会话查询的参数
// 使用位置:
//   - internal/handler/conversation_handler.go: Get
//   - internal/handler/message_handler.go: List
//   - internal/gateway/websocket/session.go: subscribe_messages
type ConversationIdQuery struct {
	ConversationId string `form:"conversation_id" json:"conversation_id" binding:"required,max=400"`
}
