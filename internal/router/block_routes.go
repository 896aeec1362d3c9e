package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterBlockRoutes 拉黑与举报路由
func (rt *Router) RegisterBlockRoutes(rg *gin.RouterGroup) {
	blockGroup := rg.Group("/block")
	{
		blockGroup.POST("/set", rt.handlers.Block.Set)
		blockGroup.POST("/unset", rt.handlers.Block.Unset)
		blockGroup.GET("/exists", rt.handlers.Block.Exists)
		blockGroup.GET("/list", rt.handlers.Block.List)
	}
	rg.POST("/report/create", rt.handlers.Block.Report)
}
