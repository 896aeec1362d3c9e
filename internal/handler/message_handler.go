package handler

import (
	"spark_chat_server/internal/dto/request"
	"spark_chat_server/internal/dto/respond"
	"spark_chat_server/internal/service"

	"github.com/gin-gonic/gin"
)

// MessageHandler 消息请求处理器
type MessageHandler struct {
	gateSvc    service.GateService
	messageSvc service.MessageService
}

// NewMessageHandler 创建消息处理器实例
func NewMessageHandler(gateSvc service.GateService, messageSvc service.MessageService) *MessageHandler {
	return &MessageHandler{gateSvc: gateSvc, messageSvc: messageSvc}
}

// Send 发送文本消息
// POST /message/send
// 请求体: request.SendMessageRequest
// 响应: respond.MessageRespond
func (h *MessageHandler) Send(c *gin.Context) {
	var req request.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.gateSvc.Send(c.Request.Context(), req.ConversationId, currentUser(c), req.Content)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// List 会话的全部消息，按发送时间升序
// GET /message/list?conversation_id=xxx
func (h *MessageHandler) List(c *gin.Context) {
	var req request.ConversationIdQuery
	if err := c.ShouldBindQuery(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.messageSvc.List(c.Request.Context(), req.ConversationId, currentUser(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// MarkRead 把对方发来的消息标记为已读
// POST /message/markRead
func (h *MessageHandler) MarkRead(c *gin.Context) {
	var req request.MarkReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	updated, err := h.messageSvc.MarkRead(c.Request.Context(), req.ConversationId, req.MessageIds, currentUser(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, respond.MarkReadRespond{Updated: updated})
}
