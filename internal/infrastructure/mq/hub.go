package mq

import (
	"sync"
	"sync/atomic"

	"spark_chat_server/pkg/constants"

	"go.uber.org/zap"
)

// Handler 事件回调
type Handler func(ev Event)

// subscription 一个订阅者
// 每个订阅独占一个 goroutine 和一个有界队列，同一订阅的回调串行且有序
type subscription struct {
	id      uint64
	topic   string
	handler Handler
	queue   chan Event
	quit    chan struct{}
	mu      sync.Mutex // 回调执行期间持有
	closed  atomic.Bool
}

func (s *subscription) run() {
	for {
		select {
		case <-s.quit:
			return
		case ev := <-s.queue:
			s.deliver(ev)
		}
	}
}

func (s *subscription) deliver(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed.Load() {
		return
	}
	defer func() {
		if rec := recover(); rec != nil {
			zap.L().Error("subscription handler panic",
				zap.String("topic", s.topic),
				zap.Any("error", rec),
			)
		}
	}()
	s.handler(ev)
}

// stop 停止投递并等待正在执行的回调返回
// 不能在本订阅的回调内部调用
func (s *subscription) stop() {
	s.closed.Store(true)
	close(s.quit)
	s.mu.Lock()
	// 持锁成功说明没有回调在执行，之后的 deliver 都会看到 closed
	s.mu.Unlock()
}

// Hub 进程内的主题订阅表
// Broker 收到事件后调用 Dispatch 分发给本进程内的订阅者
type Hub struct {
	mu     sync.RWMutex
	topics map[string]map[uint64]*subscription
	nextId atomic.Uint64
}

// NewHub 创建订阅表
func NewHub() *Hub {
	return &Hub{topics: make(map[string]map[uint64]*subscription)}
}

// Subscribe 订阅主题，返回的 dispose 可重复调用
// 订阅建立后会先收到一次 KindSync 事件，之后按到达顺序收到该主题的事件
func (h *Hub) Subscribe(topic string, handler Handler) (dispose func()) {
	sub := &subscription{
		id:      h.nextId.Add(1),
		topic:   topic,
		handler: handler,
		queue:   make(chan Event, constants.CHANNEL_SIZE),
		quit:    make(chan struct{}),
	}
	sub.queue <- Event{Topic: topic, Kind: KindSync}

	h.mu.Lock()
	subs, ok := h.topics[topic]
	if !ok {
		subs = make(map[uint64]*subscription)
		h.topics[topic] = subs
	}
	subs[sub.id] = sub
	h.mu.Unlock()

	go sub.run()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.remove(sub)
			sub.stop()
		})
	}
}

func (h *Hub) remove(sub *subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.topics[sub.topic]
	if !ok {
		return
	}
	delete(subs, sub.id)
	if len(subs) == 0 {
		delete(h.topics, sub.topic)
	}
}

// Dispatch 把事件放入该主题所有订阅者的队列
// 队列已满时丢弃：订阅方处理任一事件都会重新加载完整状态，丢掉中间事件不影响最终结果
func (h *Hub) Dispatch(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.topics[ev.Topic] {
		select {
		case sub.queue <- ev:
		default:
			zap.L().Warn("subscription queue full, event dropped",
				zap.String("topic", ev.Topic),
				zap.String("kind", ev.Kind),
			)
		}
	}
}

// Subscribers 返回主题当前的订阅者数量
func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}
