package redis

import (
	"context"
	"strconv"
	"time"

	"spark_chat_server/pkg/constants"
	"spark_chat_server/pkg/errorx"

	"github.com/redis/go-redis/v9"
)

// TypingStore 每个会话一个有序集合，成员为用户 ID，分数为输入状态的过期时间（毫秒）
// 读取时先清掉已过期的成员，整个键在最后一次写入 ttl 之后过期
type TypingStore struct {
	client *redis.Client
}

// NewTypingStore 创建输入状态存储
func NewTypingStore(client *redis.Client) *TypingStore {
	return &TypingStore{client: client}
}

func typingKey(conversationId string) string {
	return constants.TYPING_PREFIX + conversationId
}

// Set 标记用户正在输入，at 起 ttl 内有效
func (s *TypingStore) Set(ctx context.Context, conversationId, userId string, at time.Time, ttl time.Duration) error {
	key := typingKey(conversationId)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAdd(ctx, key, redis.Z{Score: float64(at.Add(ttl).UnixMilli()), Member: userId})
		pipe.PExpire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return errorx.Wrapf(err, errorx.CodeCacheError, "redis set typing conversation_id=%s", conversationId)
	}
	return nil
}

// Clear 清除用户的输入状态
func (s *TypingStore) Clear(ctx context.Context, conversationId, userId string) error {
	if err := s.client.ZRem(ctx, typingKey(conversationId), userId).Err(); err != nil {
		return errorx.Wrapf(err, errorx.CodeCacheError, "redis clear typing conversation_id=%s", conversationId)
	}
	return nil
}

// Active 返回 now 时刻仍在输入的用户
func (s *TypingStore) Active(ctx context.Context, conversationId string, now time.Time) ([]string, error) {
	key := typingKey(conversationId)
	var members *redis.StringSliceCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, key, "-inf", strconv.FormatInt(now.UnixMilli(), 10))
		members = pipe.ZRange(ctx, key, 0, -1)
		return nil
	})
	if err != nil {
		return nil, errorx.Wrapf(err, errorx.CodeCacheError, "redis read typing conversation_id=%s", conversationId)
	}
	return members.Val(), nil
}
