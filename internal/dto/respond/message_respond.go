package respond

// MessageRespond 消息
// 使用位置:
//   - internal/service/gate/service.go: Send
//   - internal/service/message/service.go: List, Subscribe
type MessageRespond struct {
	MessageId      string `json:"message_id"`
	ConversationId string `json:"conversation_id"`
	SenderId       string `json:"sender_id"`
	Content        string `json:"content"`
	SendAt         int64  `json:"send_at"` // 毫秒时间戳
	Delivered      bool   `json:"delivered"`
	Read           bool   `json:"read"`
}

// MarkReadRespond 标记已读结果
type MarkReadRespond struct {
	Updated int64 `json:"updated"`
}
