package websocket

import (
	"context"
	"net/http"
	"sync"

	"spark_chat_server/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Gateway 管理本实例上的全部 WebSocket 连接
type Gateway struct {
	svc      *service.Services
	upgrader websocket.Upgrader
	// clients connId -> *Client
	clients sync.Map
}

// NewGateway 创建实时网关
func NewGateway(svc *service.Services) *Gateway {
	return &Gateway{
		svc: svc,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  2048,
			WriteBufferSize: 2048,
			// 跨域由 cors 中间件处理
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Serve 升级连接并开始读写，userId 来自已校验的 token
func (g *Gateway) Serve(c *gin.Context, userId string) {
	conn, err := g.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade 失败时已写回 HTTP 错误
		zap.L().Warn("ws upgrade failed", zap.String("user_id", userId), zap.Error(err))
		return
	}
	client := newClient(conn, userId)
	session := newSession(client, g.svc)

	g.clients.Store(client.ID(), client)
	client.OnClose(session.closeAll)
	client.OnClose(func() { g.clients.Delete(client.ID()) })

	// 断线回调先于在线写入登记
	if err := g.svc.Presence.GoOnline(c.Request.Context(), userId, client); err != nil {
		zap.L().Error("ws go online failed", zap.String("user_id", userId), zap.Error(err))
		client.Close()
		return
	}
	zap.L().Info("ws连接建立", zap.String("user_id", userId), zap.String("conn_id", client.ID()))

	go client.Write()
	go client.Read(session.handle, func() {
		if _, err := g.svc.Presence.Heartbeat(context.Background(), userId, client.ID()); err != nil {
			zap.L().Warn("ws heartbeat failed", zap.String("user_id", userId), zap.Error(err))
		}
	})
}

// Online 本实例当前连接数
func (g *Gateway) Online() int {
	n := 0
	g.clients.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// CloseAll 关闭本实例全部连接，用于优雅退出
func (g *Gateway) CloseAll() {
	g.clients.Range(func(_, v any) bool {
		v.(*Client).Close()
		return true
	})
}
