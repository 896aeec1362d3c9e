package mq

import (
	"context"
	"errors"
	"time"

	"spark_chat_server/internal/config"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// KafkaBroker 多实例模式
// 所有实例写同一个主题，每个实例使用独立的消费组读取全部事件，再分发给本进程 Hub
// 事件以 Topic 为 key 写入，同一主题的事件落在同一分区，保持顺序
type KafkaBroker struct {
	hub      *Hub
	Producer *kafka.Writer // 生产者：负责写入事件
	Consumer *kafka.Reader // 消费者：负责读取事件
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewKafkaBroker 创建 Kafka 事件代理
func NewKafkaBroker(conf config.KafkaConfig, hub *Hub) *KafkaBroker {
	ctx, cancel := context.WithCancel(context.Background())
	timeout := conf.Timeout * time.Second
	return &KafkaBroker{
		hub: hub,
		Producer: &kafka.Writer{
			Addr:                   kafka.TCP(conf.HostPort),
			Topic:                  conf.EventTopic,
			Balancer:               &kafka.Hash{},
			WriteTimeout:           timeout,
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
		},
		Consumer: kafka.NewReader(kafka.ReaderConfig{
			Brokers:        []string{conf.HostPort},
			Topic:          conf.EventTopic,
			CommitInterval: timeout,
			GroupID:        "spark_fanout_" + uuid.NewString(),
			StartOffset:    kafka.LastOffset,
		}),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Publish 写入 Kafka
func (b *KafkaBroker) Publish(ctx context.Context, ev Event) error {
	value, err := encodeEvent(ev)
	if err != nil {
		return err
	}
	return b.Producer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.Topic),
		Value: value,
	})
}

// Start 消费循环
func (b *KafkaBroker) Start() {
	zap.L().Info("kafka broker started", zap.String("topic", b.Consumer.Config().Topic))
	for {
		m, err := b.Consumer.ReadMessage(b.ctx)
		if err != nil {
			if b.ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return
			}
			zap.L().Error("kafka read event failed", zap.Error(err))
			select {
			case <-time.After(time.Second):
			case <-b.ctx.Done():
				return
			}
			continue
		}
		ev, err := decodeEvent(m.Value)
		if err != nil {
			zap.L().Error("kafka decode event failed", zap.Error(err), zap.ByteString("value", m.Value))
			continue
		}
		b.hub.Dispatch(ev)
	}
}

// Close 关闭读写端
func (b *KafkaBroker) Close() {
	b.cancel()
	if err := b.Producer.Close(); err != nil {
		zap.L().Error("kafka producer close", zap.Error(err))
	}
	if err := b.Consumer.Close(); err != nil {
		zap.L().Error("kafka consumer close", zap.Error(err))
	}
}
