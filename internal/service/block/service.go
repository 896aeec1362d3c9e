// Package block 拉黑与举报
package block

import (
	"context"
	"time"

	"spark_chat_server/internal/dao/mysql/repository"
	"spark_chat_server/internal/dto/request"
	"spark_chat_server/internal/dto/respond"
	"spark_chat_server/internal/model"
	"spark_chat_server/pkg/constants"
	"spark_chat_server/pkg/errorx"
	"spark_chat_server/pkg/util/convkey"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// blockService 拉黑与举报业务逻辑实现
type blockService struct {
	repos *repository.Repositories
	now   func() time.Time
}

// NewBlockService 构造函数
func NewBlockService(repos *repository.Repositories) *blockService {
	return &blockService{repos: repos, now: time.Now}
}

func validatePair(blockerId, blockedId string) error {
	if blockerId == "" {
		return errorx.ErrUnauthenticated
	}
	if blockedId == "" || blockerId == blockedId {
		return errorx.New(errorx.CodeInvalidParam, "不能对自己执行该操作")
	}
	return nil
}

// Block 拉黑对方，重复拉黑不报错
// 两人之间已有会话时先锁住会话行，与正在进行的发送串行
func (s *blockService) Block(ctx context.Context, blockerId, blockedId string) error {
	if err := validatePair(blockerId, blockedId); err != nil {
		return err
	}
	var created bool
	err := s.repos.Transaction(func(tx *repository.Repositories) error {
		_, err := tx.Conversation.FindByUuidForUpdate(ctx, convkey.Resolve(blockerId, blockedId))
		if err != nil && !errorx.IsNotFound(err) {
			return err
		}
		created, err = tx.Block.Create(ctx, blockerId, blockedId, s.now())
		return err
	})
	if err != nil {
		zap.L().Error("拉黑失败",
			zap.String("blocker_id", blockerId),
			zap.String("blocked_id", blockedId),
			zap.Error(err),
		)
		return errorx.ErrStoreUnavailable
	}
	if created {
		zap.L().Info("用户拉黑", zap.String("blocker_id", blockerId), zap.String("blocked_id", blockedId))
	}
	return nil
}

// Unblock 解除拉黑，关系不存在时不报错
func (s *blockService) Unblock(ctx context.Context, blockerId, blockedId string) error {
	if err := validatePair(blockerId, blockedId); err != nil {
		return err
	}
	if _, err := s.repos.Block.Delete(ctx, blockerId, blockedId); err != nil {
		zap.L().Error("解除拉黑失败",
			zap.String("blocker_id", blockerId),
			zap.String("blocked_id", blockedId),
			zap.Error(err),
		)
		return errorx.ErrStoreUnavailable
	}
	return nil
}

// IsBlocked 判断 blockerId 是否拉黑了 blockedId
func (s *blockService) IsBlocked(ctx context.Context, blockerId, blockedId string) (bool, error) {
	if err := validatePair(blockerId, blockedId); err != nil {
		return false, err
	}
	ok, err := s.repos.Block.Exists(ctx, blockerId, blockedId)
	if err != nil {
		zap.L().Error("查询拉黑关系失败", zap.String("blocker_id", blockerId), zap.Error(err))
		return false, errorx.ErrStoreUnavailable
	}
	return ok, nil
}

// ListBlocked 我拉黑的用户，最近的在前
func (s *blockService) ListBlocked(ctx context.Context, blockerId string) ([]respond.BlockRespond, error) {
	if blockerId == "" {
		return nil, errorx.ErrUnauthenticated
	}
	relations, err := s.repos.Block.FindByBlockerId(ctx, blockerId)
	if err != nil {
		zap.L().Error("查询拉黑列表失败", zap.String("blocker_id", blockerId), zap.Error(err))
		return nil, errorx.ErrStoreUnavailable
	}
	rsp := make([]respond.BlockRespond, 0, len(relations))
	for _, r := range relations {
		rsp = append(rsp, respond.BlockRespond{UserId: r.BlockedId, CreatedAt: r.CreatedAt.UnixMilli()})
	}
	return rsp, nil
}

// Report 举报用户，req.Block 为 true 时顺带拉黑
// 被举报次数达到阈值时记录告警，交由外部审核处理
func (s *blockService) Report(ctx context.Context, reporterId string, req request.ReportRequest) error {
	if err := validatePair(reporterId, req.UserId); err != nil {
		return err
	}
	report := &model.UserReport{
		Uuid:           uuid.NewString(),
		ReporterId:     reporterId,
		ReportedId:     req.UserId,
		ConversationId: req.ConversationId,
		Reason:         req.Reason,
	}
	if err := s.repos.Report.Create(ctx, report); err != nil {
		zap.L().Error("创建举报失败", zap.String("reporter_id", reporterId), zap.Error(err))
		return errorx.ErrStoreUnavailable
	}

	if req.Block {
		if err := s.Block(ctx, reporterId, req.UserId); err != nil {
			return err
		}
	}

	count, err := s.repos.Report.CountByReportedId(ctx, req.UserId)
	if err != nil {
		zap.L().Warn("统计举报次数失败", zap.String("reported_id", req.UserId), zap.Error(err))
		return nil
	}
	if count >= constants.REPORT_ALERT_THRESHOLD {
		zap.L().Warn("用户被多次举报",
			zap.String("reported_id", req.UserId),
			zap.Int64("count", count),
		)
	}
	return nil
}
