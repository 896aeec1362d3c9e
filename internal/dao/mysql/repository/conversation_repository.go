// Package repository 提供数据访问层的具体实现
// 本文件实现 ConversationRepository 接口，处理会话相关的数据库操作
package repository

import (
	"context"
	"time"

	"spark_chat_server/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// conversationRepository ConversationRepository 接口的实现
type conversationRepository struct {
	db *gorm.DB
}

// NewConversationRepository 创建 ConversationRepository 实例
func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

// FindByUuid 根据会话键查找会话
func (r *conversationRepository) FindByUuid(ctx context.Context, uuid string) (*model.Conversation, error) {
	var conversation model.Conversation
	if err := r.db.WithContext(ctx).Where("uuid = ?", uuid).First(&conversation).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询会话 uuid=%s", uuid)
	}
	return &conversation, nil
}

// FindByUuidForUpdate 加行锁读取会话（SELECT ... FOR UPDATE），必须在事务内调用
func (r *conversationRepository) FindByUuidForUpdate(ctx context.Context, uuid string) (*model.Conversation, error) {
	var conversation model.Conversation
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("uuid = ?", uuid).
		First(&conversation).Error
	if err != nil {
		return nil, wrapDBErrorf(err, "锁定会话 uuid=%s", uuid)
	}
	return &conversation, nil
}

// CreateIfAbsent 插入会话，唯一键冲突时什么都不做
// MySQL 下为 ON DUPLICATE KEY UPDATE id=id，冲突时影响行数为 0
func (r *conversationRepository) CreateIfAbsent(ctx context.Context, conversation *model.Conversation) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(conversation)
	if res.Error != nil {
		return false, wrapDBErrorf(res.Error, "创建会话 uuid=%s", conversation.Uuid)
	}
	return res.RowsAffected == 1, nil
}

// FindByUserId 查找用户参与的会话，最近更新的在前
func (r *conversationRepository) FindByUserId(ctx context.Context, userId string) ([]model.Conversation, error) {
	var conversations []model.Conversation
	err := r.db.WithContext(ctx).
		Where("user_one_id = ? OR user_two_id = ?", userId, userId).
		Order("updated_at DESC").
		Order("id DESC").
		Find(&conversations).Error
	if err != nil {
		return nil, wrapDBErrorf(err, "查询会话列表 user_id=%s", userId)
	}
	return conversations, nil
}

// UpdateSummary 更新最新消息摘要，updated_at 使用消息时间而不是数据库当前时间
func (r *conversationRepository) UpdateSummary(ctx context.Context, uuid, lastMessage, lastSenderId string, at time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&model.Conversation{}).
		Where("uuid = ?", uuid).
		Updates(map[string]interface{}{
			"last_message":    lastMessage,
			"last_sender_id":  lastSenderId,
			"last_message_at": at,
			"updated_at":      at,
		}).Error
	if err != nil {
		return wrapDBErrorf(err, "更新会话摘要 uuid=%s", uuid)
	}
	return nil
}
