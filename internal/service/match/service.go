// Package match 随机匹配一位在线用户
package match

import (
	"context"

	"spark_chat_server/internal/dao/mysql/repository"
	"spark_chat_server/internal/dto/respond"
	"spark_chat_server/internal/model"
	"spark_chat_server/pkg/errorx"

	"go.uber.org/zap"
)

// OnlinePicker 在线用户随机挑选
type OnlinePicker interface {
	RandomOnlineUser(ctx context.Context, excludeUserId string) (string, bool, error)
	Status(ctx context.Context, userId string) (respond.PresenceRespond, error)
}

// ProfileGetter 单个用户资料读取
type ProfileGetter interface {
	GetProfile(ctx context.Context, userId string) (*model.UserProfile, error)
}

// matchService 随机匹配业务逻辑实现
type matchService struct {
	repos    *repository.Repositories
	online   OnlinePicker
	profiles ProfileGetter
	cost     int64
}

// NewMatchService 构造函数，cost 为每次匹配扣除的金币，0 表示免费
func NewMatchService(repos *repository.Repositories, online OnlinePicker, profiles ProfileGetter, cost int64) *matchService {
	return &matchService{repos: repos, online: online, profiles: profiles, cost: cost}
}

// RandomOnline 随机匹配一位除自己以外的在线用户
// 需要付费时先选出对象再扣费，没有在线用户不扣费
func (s *matchService) RandomOnline(ctx context.Context, userId string) (*respond.MatchRespond, error) {
	if userId == "" {
		return nil, errorx.ErrUnauthenticated
	}
	peer, ok, err := s.online.RandomOnlineUser(ctx, userId)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errorx.ErrNoOnlineUser
	}

	if s.cost > 0 {
		// 扣费前再确认一次对象在线，窗口内下线的不扣费
		// 扣费之后的下线不退款，在线状态本身是尽力而为的
		st, err := s.online.Status(ctx, peer)
		if err != nil {
			return nil, err
		}
		if !st.Online {
			zap.L().Info("匹配对象已下线", zap.String("user_id", userId), zap.String("peer_id", peer))
			return nil, errorx.ErrNoOnlineUser
		}
		debited, err := s.repos.Coin.Debit(ctx, userId, s.cost, "random_match")
		if err != nil {
			zap.L().Error("随机匹配扣费失败", zap.String("user_id", userId), zap.Error(err))
			return nil, errorx.ErrStoreUnavailable
		}
		if !debited {
			return nil, errorx.ErrInsufficientCoins
		}
	}

	rsp := &respond.MatchRespond{UserId: peer, Cost: s.cost}
	if s.profiles != nil {
		p, err := s.profiles.GetProfile(ctx, peer)
		if err != nil {
			zap.L().Warn("读取匹配对象资料失败", zap.String("user_id", peer), zap.Error(err))
		} else if p != nil {
			rsp.Nickname = p.Nickname
			rsp.Avatar = p.Avatar
		}
	}
	zap.L().Info("随机匹配", zap.String("user_id", userId), zap.String("peer_id", peer), zap.Int64("cost", s.cost))
	return rsp, nil
}
