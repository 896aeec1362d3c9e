package respond

// PresenceRespond 在线状态
// 在线时 LastSeen 为当前时间，离线时为最后一次下线时间，从未上线为 0
type PresenceRespond struct {
	UserId   string `json:"user_id"`
	Online   bool   `json:"online"`
	LastSeen int64  `json:"last_seen"`
}

// TypingRespond 会话中正在输入的用户
type TypingRespond struct {
	ConversationId string   `json:"conversation_id"`
	UserIds        []string `json:"user_ids"`
	TTLSeconds     int      `json:"ttl_seconds"`
}
