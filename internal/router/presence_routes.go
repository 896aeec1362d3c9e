package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterPresenceRoutes 在线状态和随机匹配路由
func (rt *Router) RegisterPresenceRoutes(rg *gin.RouterGroup) {
	presenceGroup := rg.Group("/presence")
	{
		presenceGroup.GET("/status", rt.handlers.Presence.Status)
		presenceGroup.POST("/statusBatch", rt.handlers.Presence.StatusBatch)
	}
	rg.GET("/match/randomOnline", rt.handlers.Presence.RandomOnline)
}
