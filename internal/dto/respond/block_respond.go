package respond

// BlockRespond 拉黑列表项
type BlockRespond struct {
	UserId    string `json:"user_id"`
	CreatedAt int64  `json:"created_at"`
}

// BlockExistsRespond 拉黑关系查询结果
type BlockExistsRespond struct {
	Blocked bool `json:"blocked"`
}
