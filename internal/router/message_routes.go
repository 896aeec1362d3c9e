package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterMessageRoutes 消息与输入状态路由
func (rt *Router) RegisterMessageRoutes(rg *gin.RouterGroup) {
	messageGroup := rg.Group("/message")
	{
		messageGroup.POST("/send", rt.handlers.Message.Send)         // 发送消息
		messageGroup.GET("/list", rt.handlers.Message.List)          // 消息列表
		messageGroup.POST("/markRead", rt.handlers.Message.MarkRead) // 标记已读
	}

	typingGroup := rg.Group("/typing")
	{
		typingGroup.POST("/set", rt.handlers.Typing.Set)
		typingGroup.GET("/get", rt.handlers.Typing.Get)
	}
}
