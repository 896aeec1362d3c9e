package request

// BlockRequest 拉黑/解除拉黑请求
// 使用位置:
//   - internal/handler/block_handler.go: Set, Unset
type BlockRequest struct {
	UserId string `json:"user_id" binding:"required,max=64"`
}

// UserIdQuery 按用户查询的参数
// 使用位置:
//   - internal/handler/block_handler.go: Exists
//   - internal/handler/presence_handler.go: Status
type UserIdQuery struct {
	UserId string `form:"user_id" binding:"required,max=64"`
}

// ReportRequest 举报请求，Block 为 true 时同时拉黑对方
// 使用位置:
//   - internal/handler/block_handler.go: Report
type ReportRequest struct {
	UserId         string `json:"user_id" binding:"required,max=64"`
	ConversationId string `json:"conversation_id" binding:"max=400"`
	Reason         string `json:"reason" binding:"required,max=500"`
	Block          bool   `json:"block"`
}
