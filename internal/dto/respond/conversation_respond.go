package respond

// ConversationRespond 会话列表项
// 时间字段均为毫秒时间戳，0 表示没有消息
// 使用位置:
//   - internal/service/conversation/service.go: GetOrCreate, Get, List, ListForUser
type ConversationRespond struct {
	ConversationId string `json:"conversation_id"`
	PeerId         string `json:"peer_id"`
	PeerNickname   string `json:"peer_nickname"`
	PeerAvatar     string `json:"peer_avatar"`
	LastMessage    string `json:"last_message"`
	LastSenderId   string `json:"last_sender_id"`
	LastMessageAt  int64  `json:"last_message_at"`
	UpdatedAt      int64  `json:"updated_at"`
	UnreadCount    int64  `json:"unread_count"`
}
