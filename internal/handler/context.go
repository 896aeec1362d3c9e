package handler

import (
	"spark_chat_server/internal/infrastructure/middleware"

	"github.com/gin-gonic/gin"
)

// currentUser 取 JWT 中间件写入的用户 ID
func currentUser(c *gin.Context) string {
	return c.GetString(middleware.ContextUserKey)
}
