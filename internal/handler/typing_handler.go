package handler

import (
	"spark_chat_server/internal/dto/request"
	"spark_chat_server/internal/service"

	"github.com/gin-gonic/gin"
)

// TypingHandler 正在输入状态请求处理器
type TypingHandler struct {
	typingSvc       service.TypingService
	conversationSvc service.ConversationService
}

func NewTypingHandler(typingSvc service.TypingService, conversationSvc service.ConversationService) *TypingHandler {
	return &TypingHandler{typingSvc: typingSvc, conversationSvc: conversationSvc}
}

// Set POST /typing/set
func (h *TypingHandler) Set(c *gin.Context) {
	var req request.TypingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := h.typingSvc.SetTyping(c.Request.Context(), req.ConversationId, currentUser(c), req.Typing); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// Get GET /typing/get?conversation_id=xxx
// 只有会话参与者可以查看
func (h *TypingHandler) Get(c *gin.Context) {
	var req request.ConversationIdQuery
	if err := c.ShouldBindQuery(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if _, err := h.conversationSvc.Authorize(c.Request.Context(), req.ConversationId, currentUser(c)); err != nil {
		HandleError(c, err)
		return
	}
	data, err := h.typingSvc.Typing(c.Request.Context(), req.ConversationId)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}
