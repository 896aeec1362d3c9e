// Package handler 提供 HTTP 请求处理器
// 本文件处理 WebSocket 连接升级
package handler

import (
	"github.com/gin-gonic/gin"
)

// Upgrader 把 HTTP 连接交给实时网关
type Upgrader interface {
	Serve(c *gin.Context, userId string)
}

// WsHandler WebSocket 请求处理器
type WsHandler struct {
	gateway Upgrader
}

func NewWsHandler(gateway Upgrader) *WsHandler {
	return &WsHandler{gateway: gateway}
}

// Connect 建立 WebSocket 连接
// GET /wss?token=xxx
// 用户身份取自 JWT，不信任客户端传入的用户 ID
func (h *WsHandler) Connect(c *gin.Context) {
	h.gateway.Serve(c, currentUser(c))
}
