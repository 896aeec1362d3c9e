package request

// PresenceBatchRequest 批量查询在线状态请求
// 使用位置:
//   - internal/handler/presence_handler.go: StatusBatch
type PresenceBatchRequest struct {
	UserIds []string `json:"user_ids" binding:"required,min=1,max=200"`
}

// TypingRequest 设置正在输入状态请求
// 使用位置:
//   - internal/handler/typing_handler.go: Set
type TypingRequest struct {
	ConversationId string `json:"conversation_id" binding:"required,max=400"`
	Typing         bool   `json:"typing"`
}

// PresenceUnsubscribeRequest 取消在线状态订阅，user_ids 为空时取消全部
// 使用位置:
//   - internal/gateway/websocket/session.go: unsubscribe_presence
type PresenceUnsubscribeRequest struct {
	UserIds []string `json:"user_ids" binding:"max=200"`
}
