package presence

import (
	"sync"

	"spark_chat_server/internal/dto/respond"
)

// Group 一组用户的在线状态订阅，可动态增删
// 不同用户的回调可能并发执行，同一用户的回调串行
type Group struct {
	tracker   *presenceTracker
	onStatus  func(respond.PresenceRespond)
	mu        sync.Mutex
	disposers map[string]func()
	closed    bool
}

// SubscribeMany 订阅多个用户的在线状态
func (t *presenceTracker) SubscribeMany(userIds []string, onStatus func(respond.PresenceRespond)) *Group {
	g := &Group{
		tracker:   t,
		onStatus:  onStatus,
		disposers: make(map[string]func()),
	}
	for _, id := range userIds {
		g.Add(id)
	}
	return g
}

// Add 增加订阅，已订阅或已关闭时忽略
func (g *Group) Add(userId string) {
	if userId == "" {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return
	}
	if _, ok := g.disposers[userId]; ok {
		return
	}
	g.disposers[userId] = g.tracker.Subscribe(userId, g.onStatus)
}

// Remove 取消对某个用户的订阅
func (g *Group) Remove(userId string) {
	g.mu.Lock()
	dispose, ok := g.disposers[userId]
	delete(g.disposers, userId)
	g.mu.Unlock()
	if ok {
		dispose()
	}
}

// Users 当前订阅的用户
func (g *Group) Users() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	users := make([]string, 0, len(g.disposers))
	for id := range g.disposers {
		users = append(users, id)
	}
	return users
}

// Close 取消全部订阅，之后 Add 不再生效
func (g *Group) Close() {
	g.mu.Lock()
	disposers := g.disposers
	g.disposers = make(map[string]func())
	g.closed = true
	g.mu.Unlock()
	for _, dispose := range disposers {
		dispose()
	}
}
