// Package handler 提供 HTTP 请求处理器
// 本文件处理会话目录相关的 API 请求
package handler

import (
	"spark_chat_server/internal/dto/request"
	"spark_chat_server/internal/service"

	"github.com/gin-gonic/gin"
)

// ConversationHandler 会话请求处理器
type ConversationHandler struct {
	conversationSvc service.ConversationService
}

// NewConversationHandler 创建会话处理器实例
func NewConversationHandler(conversationSvc service.ConversationService) *ConversationHandler {
	return &ConversationHandler{conversationSvc: conversationSvc}
}

// GetOrCreate 获取或创建与对方的单聊会话
// POST /conversation/getOrCreate
// 请求体: request.GetOrCreateConversationRequest
// 响应: respond.ConversationRespond
func (h *ConversationHandler) GetOrCreate(c *gin.Context) {
	var req request.GetOrCreateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.conversationSvc.GetOrCreate(c.Request.Context(), currentUser(c), req.PeerId)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// List 当前用户的会话列表，按最近活跃倒序
// GET /conversation/list
func (h *ConversationHandler) List(c *gin.Context) {
	data, err := h.conversationSvc.List(c.Request.Context(), currentUser(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// Get 单个会话
// GET /conversation/get?conversation_id=xxx
func (h *ConversationHandler) Get(c *gin.Context) {
	var req request.ConversationIdQuery
	if err := c.ShouldBindQuery(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.conversationSvc.Get(c.Request.Context(), req.ConversationId, currentUser(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}
