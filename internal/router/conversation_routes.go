package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterConversationRoutes 会话目录路由
func (rt *Router) RegisterConversationRoutes(rg *gin.RouterGroup) {
	conversationGroup := rg.Group("/conversation")
	{
		conversationGroup.POST("/getOrCreate", rt.handlers.Conversation.GetOrCreate) // 获取或创建单聊会话
		conversationGroup.GET("/list", rt.handlers.Conversation.List)                // 会话列表
		conversationGroup.GET("/get", rt.handlers.Conversation.Get)                  // 单个会话
	}
}
