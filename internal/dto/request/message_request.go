package request

// SendMessageRequest 发送消息请求
// 使用位置:
//   - internal/handler/message_handler.go: Send
type SendMessageRequest struct {
	ConversationId string `json:"conversation_id" binding:"required,max=400"`
	Content        string `json:"content" binding:"required"`
}

// MarkReadRequest 标记已读请求
// 使用位置:
//   - internal/handler/message_handler.go: MarkRead
type MarkReadRequest struct {
	ConversationId string   `json:"conversation_id" binding:"required,max=400"`
	MessageIds     []string `json:"message_ids" binding:"required,min=1,max=500"`
}
