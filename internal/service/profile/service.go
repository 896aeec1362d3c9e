// Package profile 读取用户资料，资料本身由外部服务维护，这里只做只读访问和缓存
package profile

import (
	"context"
	"encoding/json"
	"time"

	"spark_chat_server/internal/dao/mysql/repository"
	myredis "spark_chat_server/internal/dao/redis"
	"spark_chat_server/internal/model"
	"spark_chat_server/pkg/constants"
	"spark_chat_server/pkg/errorx"

	"go.uber.org/zap"
)

// profileService 资料读取，Redis cache-aside
type profileService struct {
	repos *repository.Repositories
	cache myredis.AsyncCacheService
}

// NewProfileService 构造函数，注入所有依赖
func NewProfileService(repos *repository.Repositories, cache myredis.AsyncCacheService) *profileService {
	return &profileService{repos: repos, cache: cache}
}

func cacheKey(userId string) string {
	return constants.PROFILE_CACHE_PREFIX + userId
}

// GetProfile 获取用户资料，不存在时返回 nil
func (s *profileService) GetProfile(ctx context.Context, userId string) (*model.UserProfile, error) {
	if userId == "" {
		return nil, nil
	}
	key := cacheKey(userId)

	// 1. 尝试从 Redis 缓存获取
	cached, err := s.cache.Get(ctx, key)
	if err != nil {
		zap.L().Warn("读取资料缓存失败", zap.String("user_id", userId), zap.Error(err))
	} else if cached != "" {
		var p model.UserProfile
		if err := json.Unmarshal([]byte(cached), &p); err == nil {
			return &p, nil
		}
		// 反序列化失败视同缓存失效，继续查库
		zap.L().Error("资料缓存反序列化失败", zap.String("user_id", userId), zap.Error(err))
	}

	// 2. 查询数据库
	p, err := s.repos.Profile.FindByUuid(ctx, userId)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, nil
		}
		zap.L().Error("查询用户资料失败", zap.String("user_id", userId), zap.Error(err))
		return nil, errorx.ErrStoreUnavailable
	}

	// 3. 异步回写缓存
	s.backfill(p)
	return p, nil
}

// GetProfiles 批量获取资料，缺失的用户不出现在结果中
func (s *profileService) GetProfiles(ctx context.Context, userIds []string) (map[string]*model.UserProfile, error) {
	result := make(map[string]*model.UserProfile, len(userIds))
	var missing []string
	for _, id := range userIds {
		if id == "" {
			continue
		}
		if _, ok := result[id]; ok {
			continue
		}
		cached, err := s.cache.Get(ctx, cacheKey(id))
		if err == nil && cached != "" {
			var p model.UserProfile
			if json.Unmarshal([]byte(cached), &p) == nil {
				result[id] = &p
				continue
			}
		}
		missing = append(missing, id)
	}
	if len(missing) == 0 {
		return result, nil
	}

	profiles, err := s.repos.Profile.FindByUuids(ctx, missing)
	if err != nil {
		zap.L().Error("批量查询用户资料失败", zap.Strings("user_ids", missing), zap.Error(err))
		return nil, errorx.ErrStoreUnavailable
	}
	for i := range profiles {
		p := &profiles[i]
		result[p.Uuid] = p
		s.backfill(p)
	}
	return result, nil
}

func (s *profileService) backfill(p *model.UserProfile) {
	data, err := json.Marshal(p)
	if err != nil {
		zap.L().Error("JSON marshal failed", zap.Error(err))
		return
	}
	key := cacheKey(p.Uuid)
	s.cache.SubmitTask(func() {
		ctx, cancel := context.WithTimeout(context.Background(), constants.REDIS_TIMEOUT*time.Minute)
		defer cancel()
		if err := s.cache.Set(ctx, key, string(data), constants.PROFILE_CACHE_TTL*time.Minute); err != nil {
			zap.L().Error("回写资料缓存失败", zap.String("key", key), zap.Error(err))
		}
	})
}
