// Package presence 维护用户在线状态
// 在线状态跟随 WebSocket 连接的生命周期：连接建立时先登记断线回调再写在线，
// 连接断开（包括异常断开）时由回调写离线，进程异常退出则由租约巡检兜底
package presence

import (
	"context"
	"time"

	"spark_chat_server/internal/dao/mysql/repository"
	"spark_chat_server/internal/dto/respond"
	"spark_chat_server/internal/infrastructure/mq"
	"spark_chat_server/internal/model"
	"spark_chat_server/pkg/errorx"
	"spark_chat_server/pkg/util/random"

	"go.uber.org/zap"
)

// Conn 一条实时连接
type Conn interface {
	// ID 连接唯一标识
	ID() string
	// OnClose 登记连接关闭时执行的回调，无论是主动关闭还是网络中断
	OnClose(fn func())
}

// Store 在线记录存储，由 Redis 实现
type Store interface {
	SetOnline(ctx context.Context, userId, connId string, at time.Time) error
	// SetOffline connId 非空时只有当前连接匹配才生效
	SetOffline(ctx context.Context, userId, connId string, at time.Time) (bool, error)
	Heartbeat(ctx context.Context, userId, connId string, at time.Time) (bool, error)
	Get(ctx context.Context, userId string) (model.Presence, bool, error)
	OnlineUsers(ctx context.Context) ([]string, error)
}

// TaskRunner 异步任务执行器，用于最后在线时间落库
type TaskRunner interface {
	SubmitTask(action func())
}

// presenceTracker 在线状态业务逻辑实现
type presenceTracker struct {
	store     Store
	repos     *repository.Repositories
	tasks     TaskRunner
	hub       *mq.Hub
	publisher mq.Publisher
	lease     time.Duration
	now       func() time.Time
}

// NewPresenceTracker 构造函数，lease 为心跳租约时长
func NewPresenceTracker(
	store Store,
	repos *repository.Repositories,
	tasks TaskRunner,
	hub *mq.Hub,
	publisher mq.Publisher,
	lease time.Duration,
) *presenceTracker {
	return &presenceTracker{
		store:     store,
		repos:     repos,
		tasks:     tasks,
		hub:       hub,
		publisher: publisher,
		lease:     lease,
		now:       time.Now,
	}
}

// GoOnline 用户通过 conn 上线
// 断线回调在写在线之前登记，在线写入后连接随时断开都会被记为离线
func (t *presenceTracker) GoOnline(ctx context.Context, userId string, conn Conn) error {
	if userId == "" {
		return errorx.ErrUnauthenticated
	}
	connId := conn.ID()

	// 1. 先登记断线回调
	conn.OnClose(func() {
		t.markOffline(context.Background(), userId, connId, t.now())
	})

	// 2. 再写在线
	if err := t.store.SetOnline(ctx, userId, connId, t.now()); err != nil {
		zap.L().Error("写入在线状态失败", zap.String("user_id", userId), zap.Error(err))
		return errorx.ErrStoreUnavailable
	}
	zap.L().Debug("用户上线", zap.String("user_id", userId), zap.String("conn_id", connId))
	t.notify(ctx, userId)
	return nil
}

// GoOffline 主动下线，不区分连接
func (t *presenceTracker) GoOffline(ctx context.Context, userId string) error {
	if userId == "" {
		return errorx.ErrUnauthenticated
	}
	at := t.now()
	changed, err := t.store.SetOffline(ctx, userId, "", at)
	if err != nil {
		zap.L().Error("写入离线状态失败", zap.String("user_id", userId), zap.Error(err))
		return errorx.ErrStoreUnavailable
	}
	if changed {
		t.afterOffline(ctx, userId, at)
	}
	return nil
}

// markOffline 连接断开时调用，只有该连接仍是当前连接时才生效
func (t *presenceTracker) markOffline(ctx context.Context, userId, connId string, at time.Time) {
	changed, err := t.store.SetOffline(ctx, userId, connId, at)
	if err != nil {
		zap.L().Error("断线写入离线状态失败",
			zap.String("user_id", userId),
			zap.String("conn_id", connId),
			zap.Error(err),
		)
		return
	}
	if !changed {
		zap.L().Debug("旧连接断开，在线状态已由新连接接管", zap.String("user_id", userId), zap.String("conn_id", connId))
		return
	}
	zap.L().Debug("用户下线", zap.String("user_id", userId), zap.String("conn_id", connId))
	t.afterOffline(ctx, userId, at)
}

// afterOffline 通知订阅者并异步落库最后在线时间
func (t *presenceTracker) afterOffline(ctx context.Context, userId string, at time.Time) {
	t.notify(ctx, userId)
	t.tasks.SubmitTask(func() {
		if err := t.repos.Presence.SaveLastSeen(context.Background(), userId, at); err != nil {
			zap.L().Error("最后在线时间落库失败", zap.String("user_id", userId), zap.Error(err))
		}
	})
}

func (t *presenceTracker) notify(ctx context.Context, userId string) {
	mq.PublishAll(ctx, t.publisher, mq.Event{
		Topic:  mq.TopicPresence(userId),
		Kind:   mq.KindPresence,
		UserId: userId,
		At:     t.now().UnixMilli(),
	})
}

// Heartbeat 刷新连接的租约，连接已不是当前连接时返回 false
func (t *presenceTracker) Heartbeat(ctx context.Context, userId, connId string) (bool, error) {
	ok, err := t.store.Heartbeat(ctx, userId, connId, t.now())
	if err != nil {
		zap.L().Warn("心跳写入失败", zap.String("user_id", userId), zap.Error(err))
		return false, errorx.ErrStoreUnavailable
	}
	return ok, nil
}

// Status 查询在线状态
// Redis 中没有记录时以数据库中的最后在线时间兜底
func (t *presenceTracker) Status(ctx context.Context, userId string) (respond.PresenceRespond, error) {
	rsp := respond.PresenceRespond{UserId: userId}
	p, found, err := t.store.Get(ctx, userId)
	if err != nil {
		zap.L().Warn("读取在线状态失败", zap.String("user_id", userId), zap.Error(err))
		return rsp, errorx.ErrStoreUnavailable
	}
	if found {
		if p.Online {
			rsp.Online = true
			rsp.LastSeen = t.now().UnixMilli()
		} else if !p.LastSeen.IsZero() {
			rsp.LastSeen = p.LastSeen.UnixMilli()
		}
		return rsp, nil
	}

	saved, err := t.repos.Presence.FindByUserId(ctx, userId)
	if err != nil {
		if errorx.IsNotFound(err) {
			return rsp, nil
		}
		zap.L().Warn("读取最后在线时间失败", zap.String("user_id", userId), zap.Error(err))
		return rsp, errorx.ErrStoreUnavailable
	}
	rsp.LastSeen = saved.LastSeenAt.UnixMilli()
	return rsp, nil
}

// StatusMany 批量查询在线状态，顺序与入参一致
func (t *presenceTracker) StatusMany(ctx context.Context, userIds []string) ([]respond.PresenceRespond, error) {
	rsp := make([]respond.PresenceRespond, 0, len(userIds))
	for _, id := range userIds {
		status, err := t.Status(ctx, id)
		if err != nil {
			return nil, err
		}
		rsp = append(rsp, status)
	}
	return rsp, nil
}

// Subscribe 订阅某个用户的在线状态
// 订阅后立即回调一次，之后每次变化回调；读取失败时回调离线状态
func (t *presenceTracker) Subscribe(userId string, onStatus func(respond.PresenceRespond)) (dispose func()) {
	return t.hub.Subscribe(mq.TopicPresence(userId), func(ev mq.Event) {
		status, err := t.Status(context.Background(), userId)
		if err != nil {
			status = respond.PresenceRespond{UserId: userId}
		}
		onStatus(status)
	})
}

// OnlineUsers 当前在线的全部用户
func (t *presenceTracker) OnlineUsers(ctx context.Context) ([]string, error) {
	users, err := t.store.OnlineUsers(ctx)
	if err != nil {
		zap.L().Error("读取在线用户失败", zap.Error(err))
		return nil, errorx.ErrStoreUnavailable
	}
	return users, nil
}

// RandomOnlineUser 从除自己以外的在线用户中均匀随机挑选一个，没有候选时 ok 为 false
func (t *presenceTracker) RandomOnlineUser(ctx context.Context, excludeUserId string) (userId string, ok bool, err error) {
	users, err := t.OnlineUsers(ctx)
	if err != nil {
		return "", false, err
	}
	candidates := make([]string, 0, len(users))
	for _, u := range users {
		if u != excludeUserId {
			candidates = append(candidates, u)
		}
	}
	userId, ok = random.Pick(candidates)
	return userId, ok, nil
}
