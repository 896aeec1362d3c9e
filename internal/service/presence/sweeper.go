package presence

import (
	"context"
	"time"

	"spark_chat_server/pkg/errorx"

	"go.uber.org/zap"
)

// Sweep 把租约已过期的在线用户置为离线，最后在线时间取最后一次心跳
// 持有该连接的进程异常退出时断线回调不会执行，依靠这里兜底
func (t *presenceTracker) Sweep(ctx context.Context) (int, error) {
	users, err := t.store.OnlineUsers(ctx)
	if err != nil {
		zap.L().Error("巡检读取在线用户失败", zap.Error(err))
		return 0, errorx.ErrStoreUnavailable
	}
	deadline := t.now().Add(-t.lease)
	swept := 0
	for _, userId := range users {
		p, found, err := t.store.Get(ctx, userId)
		if err != nil {
			zap.L().Warn("巡检读取在线记录失败", zap.String("user_id", userId), zap.Error(err))
			continue
		}
		if found && p.Online && !p.HeartbeatAt.Before(deadline) {
			continue
		}
		lastSeen := p.HeartbeatAt
		if lastSeen.IsZero() {
			lastSeen = t.now()
		}
		// 带上 connId，巡检期间用户重连则不会误伤
		changed, err := t.store.SetOffline(ctx, userId, p.ConnId, lastSeen)
		if err != nil {
			zap.L().Warn("巡检写入离线失败", zap.String("user_id", userId), zap.Error(err))
			continue
		}
		if changed {
			swept++
			t.afterOffline(ctx, userId, lastSeen)
		}
	}
	if swept > 0 {
		zap.L().Info("在线租约巡检", zap.Int("swept", swept))
	}
	return swept, nil
}

// RunSweeper 按 interval 周期执行巡检，直到 ctx 结束
func (t *presenceTracker) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := t.Sweep(ctx); err != nil {
				zap.L().Warn("在线租约巡检失败", zap.Error(err))
			}
		}
	}
}
