package repository

import (
	"context"
	"time"

	"spark_chat_server/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type presenceRepository struct {
	db *gorm.DB
}

// NewPresenceRepository 创建 PresenceRepository 实例
func NewPresenceRepository(db *gorm.DB) PresenceRepository {
	return &presenceRepository{db: db}
}

// SaveLastSeen 按 user_id upsert 最后在线时间
func (r *presenceRepository) SaveLastSeen(ctx context.Context, userId string, at time.Time) error {
	record := model.UserPresence{UserId: userId, LastSeenAt: at, UpdatedAt: at}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_seen_at", "updated_at"}),
	}).Create(&record).Error
	if err != nil {
		return wrapDBErrorf(err, "保存最后在线时间 user_id=%s", userId)
	}
	return nil
}

// FindByUserId 查询最后在线时间
func (r *presenceRepository) FindByUserId(ctx context.Context, userId string) (*model.UserPresence, error) {
	var record model.UserPresence
	if err := r.db.WithContext(ctx).Where("user_id = ?", userId).First(&record).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询最后在线时间 user_id=%s", userId)
	}
	return &record, nil
}
