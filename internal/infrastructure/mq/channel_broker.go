package mq

import (
	"context"
	"errors"
	"sync"

	"spark_chat_server/pkg/constants"
)

// ErrBrokerClosed 代理已关闭
var ErrBrokerClosed = errors.New("broker closed")

// ChannelBroker 单机模式，事件经 Transmit 通道转交给本进程 Hub
type ChannelBroker struct {
	hub *Hub
	// Transmit 事件转发通道
	Transmit  chan Event
	quit      chan struct{}
	closeOnce sync.Once
}

// NewChannelBroker 创建单机事件代理
func NewChannelBroker(hub *Hub) *ChannelBroker {
	return &ChannelBroker{
		hub:      hub,
		Transmit: make(chan Event, constants.CHANNEL_SIZE),
		quit:     make(chan struct{}),
	}
}

// Publish 写入转发通道，通道满时阻塞到 ctx 结束
func (b *ChannelBroker) Publish(ctx context.Context, ev Event) error {
	select {
	case <-b.quit:
		return ErrBrokerClosed
	default:
	}
	select {
	case b.Transmit <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-b.quit:
		return ErrBrokerClosed
	}
}

// Start 转发循环
func (b *ChannelBroker) Start() {
	for {
		select {
		case ev := <-b.Transmit:
			b.hub.Dispatch(ev)
		case <-b.quit:
			return
		}
	}
}

// Close 停止转发循环
func (b *ChannelBroker) Close() {
	b.closeOnce.Do(func() {
		close(b.quit)
	})
}
