// Package middleware gin 中间件
package middleware

import (
	"net/http"
	"strings"

	"spark_chat_server/pkg/errorx"
	"spark_chat_server/pkg/util/jwt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ContextUserKey 当前用户 ID 在 gin.Context 中的键
const ContextUserKey = "user_id"

// JWTAuth JWT 认证中间件
// 优先读取 Authorization: Bearer xxx，浏览器 WebSocket 无法设置请求头，退回到 token 查询参数
func JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, msg := extractToken(c)
		if token == "" {
			abortUnauthenticated(c, msg)
			return
		}

		claims, err := jwt.ParseToken(token)
		if err != nil {
			zap.L().Debug("token rejected", zap.String("path", c.Request.URL.Path), zap.Error(err))
			abortUnauthenticated(c, "Token 已过期或无效，请重新登录")
			return
		}
		if claims.Subject != "access_token" {
			abortUnauthenticated(c, "请使用 Access Token 访问此接口")
			return
		}

		c.Set(ContextUserKey, claims.UserID)
		c.Next()
	}
}

func extractToken(c *gin.Context) (string, string) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		if token := c.Query("token"); token != "" {
			return token, ""
		}
		return "", errorx.ErrUnauthenticated.Msg
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", "Token 格式错误，请使用 Bearer Token"
	}
	return parts[1], ""
}

func abortUnauthenticated(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"code": errorx.ErrUnauthenticated.Code,
		"msg":  msg,
	})
}
