package mq

import (
	"context"
	"fmt"
	"time"

	"spark_chat_server/internal/config"

	"go.uber.org/zap"
)

// Publisher 业务层依赖的发布接口
type Publisher interface {
	// Publish 发布事件，事件最终会分发到各实例 Hub 上的订阅者
	Publish(ctx context.Context, ev Event) error
}

// Broker 事件代理
// 支持两种实现：KafkaBroker (多实例), ChannelBroker (单机)
type Broker interface {
	Publisher
	// Start 启动消费循环，阻塞直到 Close
	Start()
	// Close 关闭代理资源
	Close()
}

// PublishAll 依次发布事件，失败只记录日志
// 用于数据已提交之后的通知，ctx 被取消也会继续发布
func PublishAll(ctx context.Context, p Publisher, events ...Event) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()
	for _, ev := range events {
		if err := p.Publish(ctx, ev); err != nil {
			zap.L().Warn("publish event failed",
				zap.String("topic", ev.Topic),
				zap.String("kind", ev.Kind),
				zap.Error(err),
			)
		}
	}
}

// NewBroker 根据配置创建事件代理
func NewBroker(conf config.KafkaConfig, hub *Hub) (Broker, error) {
	switch conf.MessageMode {
	case "", "channel":
		return NewChannelBroker(hub), nil
	case "kafka":
		return NewKafkaBroker(conf, hub), nil
	default:
		return nil, fmt.Errorf("unknown message mode %q", conf.MessageMode)
	}
}
