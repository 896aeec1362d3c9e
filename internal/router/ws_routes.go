package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterWebSocketRoutes WebSocket 连接入口
// 请求示例: ws://host:port/wss?token=xxx
func (rt *Router) RegisterWebSocketRoutes(rg *gin.RouterGroup) {
	rg.GET("/wss", rt.handlers.Ws.Connect)
}
