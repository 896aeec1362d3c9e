// Package router 提供 HTTP 路由注册
// 本文件是路由注册的入口，聚合所有子模块的路由
package router

import (
	"net/http"

	"spark_chat_server/internal/handler"
	"spark_chat_server/internal/infrastructure/middleware"

	"github.com/gin-gonic/gin"
)

// Router 持有 Handler 聚合，按模块注册路由
type Router struct {
	handlers *handler.Handlers
}

func NewRouter(handlers *handler.Handlers) *Router {
	return &Router{handlers: handlers}
}

// RegisterRoutes 注册所有路由
// 除健康检查外全部需要 JWT 认证
func (rt *Router) RegisterRoutes(r *gin.Engine) {
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	private := r.Group("/", middleware.JWTAuth())
	rt.RegisterConversationRoutes(private)
	rt.RegisterMessageRoutes(private)
	rt.RegisterBlockRoutes(private)
	rt.RegisterPresenceRoutes(private)
	rt.RegisterWebSocketRoutes(private)
}
