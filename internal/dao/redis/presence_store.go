package redis

import (
	"context"
	"strconv"
	"time"

	"spark_chat_server/internal/model"
	"spark_chat_server/pkg/errorx"

	"github.com/redis/go-redis/v9"
)

// 用户 hash 与在线集合放在不同的命名空间，任何用户 ID 都拼不出在线集合的键
const (
	presenceKeyPrefix = "presence:user:"  // 每个用户一个 hash：online / conn_id / last_seen / heartbeat_at
	onlineSetKey      = "presence:online" // 当前在线用户集合
)

// setOfflineScript 把用户置为离线
// ARGV[2] 非空时只在 conn_id 匹配时生效，旧连接迟到的断线回调不会覆盖新会话
var setOfflineScript = redis.NewScript(`
if ARGV[2] ~= '' then
	local cur = redis.call('HGET', KEYS[1], 'conn_id')
	if cur and cur ~= ARGV[2] then
		return 0
	end
end
redis.call('HSET', KEYS[1], 'online', '0', 'conn_id', '', 'last_seen', ARGV[3])
redis.call('SREM', KEYS[2], ARGV[1])
return 1
`)

// heartbeatScript 刷新在线租约，仅对当前连接有效
var heartbeatScript = redis.NewScript(`
if redis.call('HGET', KEYS[1], 'online') == '1' and redis.call('HGET', KEYS[1], 'conn_id') == ARGV[1] then
	redis.call('HSET', KEYS[1], 'heartbeat_at', ARGV[2])
	return 1
end
return 0
`)

// PresenceStore 基于 Redis 的在线状态存储
type PresenceStore struct {
	client *redis.Client
}

// NewPresenceStore 创建在线状态存储
func NewPresenceStore(client *redis.Client) *PresenceStore {
	return &PresenceStore{client: client}
}

func presenceKey(userId string) string {
	return presenceKeyPrefix + userId
}

// SetOnline 在同一个 MULTI 中写入在线记录并加入在线集合
func (s *PresenceStore) SetOnline(ctx context.Context, userId, connId string, at time.Time) error {
	ms := strconv.FormatInt(at.UnixMilli(), 10)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, presenceKey(userId),
			"online", "1",
			"conn_id", connId,
			"last_seen", ms,
			"heartbeat_at", ms,
		)
		pipe.SAdd(ctx, onlineSetKey, userId)
		return nil
	})
	if err != nil {
		return errorx.Wrapf(err, errorx.CodeCacheError, "redis set online user_id=%s", userId)
	}
	return nil
}

// SetOffline 置为离线，connId 为空表示无条件执行
// 返回值表示记录是否真的被修改
func (s *PresenceStore) SetOffline(ctx context.Context, userId, connId string, at time.Time) (bool, error) {
	res, err := setOfflineScript.Run(ctx, s.client,
		[]string{presenceKey(userId), onlineSetKey},
		userId, connId, strconv.FormatInt(at.UnixMilli(), 10),
	).Int()
	if err != nil {
		return false, errorx.Wrapf(err, errorx.CodeCacheError, "redis set offline user_id=%s", userId)
	}
	return res == 1, nil
}

// Heartbeat 刷新租约，连接已被替换或已离线时返回 false
func (s *PresenceStore) Heartbeat(ctx context.Context, userId, connId string, at time.Time) (bool, error) {
	res, err := heartbeatScript.Run(ctx, s.client,
		[]string{presenceKey(userId)},
		connId, strconv.FormatInt(at.UnixMilli(), 10),
	).Int()
	if err != nil {
		return false, errorx.Wrapf(err, errorx.CodeCacheError, "redis heartbeat user_id=%s", userId)
	}
	return res == 1, nil
}

// Get 读取在线记录，不存在时 found 为 false
func (s *PresenceStore) Get(ctx context.Context, userId string) (presence model.Presence, found bool, err error) {
	fields, err := s.client.HGetAll(ctx, presenceKey(userId)).Result()
	if err != nil {
		return presence, false, errorx.Wrapf(err, errorx.CodeCacheError, "redis get presence user_id=%s", userId)
	}
	if len(fields) == 0 {
		return presence, false, nil
	}
	presence = model.Presence{
		UserId:      userId,
		Online:      fields["online"] == "1",
		ConnId:      fields["conn_id"],
		LastSeen:    parseMillis(fields["last_seen"]),
		HeartbeatAt: parseMillis(fields["heartbeat_at"]),
	}
	return presence, true, nil
}

// OnlineUsers 返回在线集合中的全部用户
func (s *PresenceStore) OnlineUsers(ctx context.Context) ([]string, error) {
	members, err := s.client.SMembers(ctx, onlineSetKey).Result()
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeCacheError, "redis smembers online set")
	}
	return members, nil
}

func parseMillis(v string) time.Time {
	ms, err := strconv.ParseInt(v, 10, 64)
	if err != nil || ms <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
