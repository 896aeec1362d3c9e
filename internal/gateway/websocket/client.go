// Package websocket 实时网关：一条 WebSocket 连接对应一个 Client
// Client 负责读写循环和心跳，Session 负责协议帧与订阅管理
package websocket

import (
	"errors"
	"sync"
	"time"

	"spark_chat_server/pkg/constants"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait    = 10 * time.Second // 写超时
	readDeadline = 90 * time.Second // 允许丢 2 次心跳
	pingPeriod   = 30 * time.Second
	readLimit    = int64(16 << 10) // 单帧最大 16KB
)

var errClientClosed = errors.New("client closed")

// Client 一个 WebSocket 客户端连接
type Client struct {
	Conn *websocket.Conn
	// Uuid 连接所属用户
	Uuid   string
	connId string
	// SendBack 待写给前端的帧
	SendBack chan []byte

	quit      chan struct{}
	closeOnce sync.Once
	mu        sync.Mutex
	hooks     []func()
	closed    bool
}

func newClient(conn *websocket.Conn, userId string) *Client {
	return &Client{
		Conn:     conn,
		Uuid:     userId,
		connId:   uuid.NewString(),
		SendBack: make(chan []byte, constants.CHANNEL_SIZE),
		quit:     make(chan struct{}),
	}
}

// ID 连接唯一标识
func (c *Client) ID() string {
	return c.connId
}

// OnClose 登记连接关闭时的回调，按登记顺序执行
// 连接已关闭时立即执行
func (c *Client) OnClose(fn func()) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		fn()
		return
	}
	c.hooks = append(c.hooks, fn)
	c.mu.Unlock()
}

// Send 放入写队列，不阻塞
// 队列满说明客户端消费过慢，异步关闭连接
func (c *Client) Send(frame []byte) error {
	select {
	case <-c.quit:
		return errClientClosed
	default:
	}
	select {
	case c.SendBack <- frame:
		return nil
	case <-c.quit:
		return errClientClosed
	default:
		zap.L().Warn("ws send buffer full, closing", zap.String("user_id", c.Uuid), zap.String("conn_id", c.connId))
		go c.Close()
		return errClientClosed
	}
}

// Close 关闭连接并执行关闭回调，可重复调用
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.quit)
		_ = c.Conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeWait))
		_ = c.Conn.Close()

		c.mu.Lock()
		c.closed = true
		hooks := c.hooks
		c.hooks = nil
		c.mu.Unlock()
		for _, fn := range hooks {
			fn()
		}
		zap.L().Info("ws连接关闭", zap.String("user_id", c.Uuid), zap.String("conn_id", c.connId))
	})
}

// Read 读取前端帧并交给 handle，出错即断开
// onPong 在收到 pong 时调用，用于刷新在线租约
func (c *Client) Read(handle func(data []byte), onPong func()) {
	defer c.Close()

	c.Conn.SetReadLimit(readLimit)
	_ = c.Conn.SetReadDeadline(time.Now().Add(readDeadline))
	c.Conn.SetPongHandler(func(string) error {
		if onPong != nil {
			onPong()
		}
		return c.Conn.SetReadDeadline(time.Now().Add(readDeadline))
	})

	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				zap.L().Warn("ws read error", zap.String("user_id", c.Uuid), zap.Error(err))
			}
			return
		}
		handle(data)
	}
}

// refreshDeadline 收到应用层心跳时延长读超时
func (c *Client) refreshDeadline() {
	_ = c.Conn.SetReadDeadline(time.Now().Add(readDeadline))
}

// Write 把 SendBack 中的帧写给前端，并定时发送 ping
func (c *Client) Write() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-c.quit:
			return
		case frame := <-c.SendBack:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				zap.L().Warn("ws write error", zap.String("user_id", c.Uuid), zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
