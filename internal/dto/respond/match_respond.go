package respond

// MatchRespond 随机匹配结果
type MatchRespond struct {
	UserId   string `json:"user_id"`
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"`
	Cost     int64  `json:"cost"`
}
