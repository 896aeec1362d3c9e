// Package repository 提供数据访问层的具体实现
// 本文件实现 MessageRepository 接口，处理消息相关的数据库操作
package repository

import (
	"context"

	"spark_chat_server/internal/model"

	"gorm.io/gorm"
)

// messageRepository MessageRepository 接口的实现
type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository 创建 MessageRepository 实例
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

// Create 追加一条消息
func (r *messageRepository) Create(ctx context.Context, message *model.Message) error {
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		return wrapDBErrorf(err, "创建消息 conversation_id=%s", message.ConversationId)
	}
	return nil
}

// FindByConversationId 获取会话消息，时间相同的按写入顺序
func (r *messageRepository) FindByConversationId(ctx context.Context, conversationId string) ([]model.Message, error) {
	var messages []model.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationId).
		Order("send_at ASC").
		Order("id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, wrapDBErrorf(err, "查询消息列表 conversation_id=%s", conversationId)
	}
	return messages, nil
}

// MarkRead 标记已读
// 条件里同时排除了自己发送的消息和已读消息，重复调用不会产生任何更新
func (r *messageRepository) MarkRead(ctx context.Context, conversationId string, uuids []string, readerId string) (int64, error) {
	if len(uuids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Model(&model.Message{}).
		Where("conversation_id = ? AND uuid IN ? AND send_id <> ? AND is_read = ?", conversationId, uuids, readerId, false).
		Update("is_read", true)
	if res.Error != nil {
		return 0, wrapDBErrorf(res.Error, "标记已读 conversation_id=%s", conversationId)
	}
	return res.RowsAffected, nil
}

// unreadRow 未读数聚合结果
type unreadRow struct {
	ConversationId string
	Cnt            int64
}

// CountUnread 按会话分组统计未读消息
func (r *messageRepository) CountUnread(ctx context.Context, conversationIds []string, readerId string) (map[string]int64, error) {
	result := make(map[string]int64, len(conversationIds))
	if len(conversationIds) == 0 {
		return result, nil
	}
	var rows []unreadRow
	err := r.db.WithContext(ctx).
		Model(&model.Message{}).
		Select("conversation_id, COUNT(*) AS cnt").
		Where("conversation_id IN ? AND send_id <> ? AND is_read = ?", conversationIds, readerId, false).
		Group("conversation_id").
		Scan(&rows).Error
	if err != nil {
		return nil, wrapDBErrorf(err, "统计未读 reader_id=%s", readerId)
	}
	for _, row := range rows {
		result[row.ConversationId] = row.Cnt
	}
	return result, nil
}
