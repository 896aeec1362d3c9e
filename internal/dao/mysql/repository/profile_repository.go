// Package repository 提供数据访问层的具体实现
// 本文件实现 ProfileRepository 接口，资料由外部服务维护，这里只读
package repository

import (
	"context"

	"spark_chat_server/internal/model"

	"gorm.io/gorm"
)

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository 创建 ProfileRepository 实例
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

// FindByUuid 根据用户 ID 查找资料
func (r *profileRepository) FindByUuid(ctx context.Context, uuid string) (*model.UserProfile, error) {
	var profile model.UserProfile
	if err := r.db.WithContext(ctx).Where("uuid = ?", uuid).First(&profile).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询用户资料 uuid=%s", uuid)
	}
	return &profile, nil
}

// FindByUuids 批量查找资料
func (r *profileRepository) FindByUuids(ctx context.Context, uuids []string) ([]model.UserProfile, error) {
	var profiles []model.UserProfile
	if len(uuids) == 0 {
		return profiles, nil
	}
	if err := r.db.WithContext(ctx).Where("uuid IN ?", uuids).Find(&profiles).Error; err != nil {
		return nil, wrapDBError(err, "批量查询用户资料")
	}
	return profiles, nil
}
