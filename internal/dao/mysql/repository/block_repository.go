// Package repository 提供数据访问层的具体实现
// 本文件实现 BlockRepository 接口，处理拉黑关系
package repository

import (
	"context"
	"time"

	"spark_chat_server/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type blockRepository struct {
	db *gorm.DB
}

// NewBlockRepository 创建 BlockRepository 实例
func NewBlockRepository(db *gorm.DB) BlockRepository {
	return &blockRepository{db: db}
}

// Exists 判断 blockerId 是否拉黑了 blockedId
func (r *blockRepository) Exists(ctx context.Context, blockerId, blockedId string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.BlockRelation{}).
		Where("blocker_id = ? AND blocked_id = ?", blockerId, blockedId).
		Count(&count).Error
	if err != nil {
		return false, wrapDBErrorf(err, "查询拉黑关系 blocker_id=%s blocked_id=%s", blockerId, blockedId)
	}
	return count > 0, nil
}

// Create 建立拉黑关系，重复拉黑不报错
func (r *blockRepository) Create(ctx context.Context, blockerId, blockedId string, at time.Time) (bool, error) {
	relation := model.BlockRelation{
		BlockerId: blockerId,
		BlockedId: blockedId,
		CreatedAt: at,
	}
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&relation)
	if res.Error != nil {
		return false, wrapDBErrorf(res.Error, "拉黑 blocker_id=%s blocked_id=%s", blockerId, blockedId)
	}
	return res.RowsAffected == 1, nil
}

// Delete 解除拉黑关系
func (r *blockRepository) Delete(ctx context.Context, blockerId, blockedId string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("blocker_id = ? AND blocked_id = ?", blockerId, blockedId).
		Delete(&model.BlockRelation{})
	if res.Error != nil {
		return false, wrapDBErrorf(res.Error, "解除拉黑 blocker_id=%s blocked_id=%s", blockerId, blockedId)
	}
	return res.RowsAffected > 0, nil
}

// FindByBlockerId 获取拉黑列表
func (r *blockRepository) FindByBlockerId(ctx context.Context, blockerId string) ([]model.BlockRelation, error) {
	var relations []model.BlockRelation
	err := r.db.WithContext(ctx).
		Where("blocker_id = ?", blockerId).
		Order("created_at DESC").
		Find(&relations).Error
	if err != nil {
		return nil, wrapDBErrorf(err, "查询拉黑列表 blocker_id=%s", blockerId)
	}
	return relations, nil
}
