// Package repository 定义数据访问层接口和聚合结构
// 采用 Repository 模式将数据访问逻辑与业务逻辑分离
// 所有 Repository 接口在此文件定义，具体实现在各自的文件中
package repository

import (
	"context"
	"time"

	"spark_chat_server/internal/model"
)

// ConversationRepository 会话数据访问接口
type ConversationRepository interface {
	// FindByUuid 根据会话键查找会话
	FindByUuid(ctx context.Context, uuid string) (*model.Conversation, error)
	// FindByUuidForUpdate 在事务中加行锁读取会话，同一会话的发送与拉黑在此串行化
	FindByUuidForUpdate(ctx context.Context, uuid string) (*model.Conversation, error)
	// CreateIfAbsent 会话键不存在时插入，已存在时不做任何修改
	// created 表示本次调用是否真正写入了新记录
	CreateIfAbsent(ctx context.Context, conversation *model.Conversation) (created bool, err error)
	// FindByUserId 查找用户参与的全部会话，按更新时间倒序
	FindByUserId(ctx context.Context, userId string) ([]model.Conversation, error)
	// UpdateSummary 更新最新消息摘要和更新时间
	UpdateSummary(ctx context.Context, uuid, lastMessage, lastSenderId string, at time.Time) error
}

// MessageRepository 消息数据访问接口
type MessageRepository interface {
	// Create 追加一条消息
	Create(ctx context.Context, message *model.Message) error
	// FindByConversationId 获取会话全部消息，按 (send_at, id) 升序
	FindByConversationId(ctx context.Context, conversationId string) ([]model.Message, error)
	// MarkRead 把指定消息标记为已读，跳过 readerId 自己发送的和已读的消息，返回实际更新条数
	MarkRead(ctx context.Context, conversationId string, uuids []string, readerId string) (int64, error)
	// CountUnread 按会话统计 readerId 的未读数
	CountUnread(ctx context.Context, conversationIds []string, readerId string) (map[string]int64, error)
}

// BlockRepository 拉黑关系数据访问接口
type BlockRepository interface {
	// Exists 判断 blockerId 是否拉黑了 blockedId
	Exists(ctx context.Context, blockerId, blockedId string) (bool, error)
	// Create 建立拉黑关系，已存在时返回 false
	Create(ctx context.Context, blockerId, blockedId string, at time.Time) (bool, error)
	// Delete 解除拉黑关系，不存在时返回 false
	Delete(ctx context.Context, blockerId, blockedId string) (bool, error)
	// FindByBlockerId 获取用户的拉黑列表，按时间倒序
	FindByBlockerId(ctx context.Context, blockerId string) ([]model.BlockRelation, error)
}

// ReportRepository 举报数据访问接口
type ReportRepository interface {
	// Create 创建举报记录
	Create(ctx context.Context, report *model.UserReport) error
	// CountByReportedId 统计某用户被举报次数
	CountByReportedId(ctx context.Context, reportedId string) (int64, error)
}

// ProfileRepository 用户资料数据访问接口（只读）
type ProfileRepository interface {
	// FindByUuid 根据用户 ID 查找资料
	FindByUuid(ctx context.Context, uuid string) (*model.UserProfile, error)
	// FindByUuids 批量查找资料
	FindByUuids(ctx context.Context, uuids []string) ([]model.UserProfile, error)
}

// CoinRepository 金币账本数据访问接口
type CoinRepository interface {
	// Debit 扣减金币，余额不足时返回 false 且不产生流水
	Debit(ctx context.Context, userId string, amount int64, reason string) (bool, error)
	// Credit 增加金币，账户不存在时自动开户
	Credit(ctx context.Context, userId string, amount int64, reason string) error
	// Balance 查询余额，账户不存在视为 0
	Balance(ctx context.Context, userId string) (int64, error)
}

// PresenceRepository 最后在线时间持久化接口
type PresenceRepository interface {
	// SaveLastSeen 写入或覆盖最后在线时间
	SaveLastSeen(ctx context.Context, userId string, at time.Time) error
	// FindByUserId 查询最后在线时间，不存在时返回 CodeNotFound
	FindByUserId(ctx context.Context, userId string) (*model.UserPresence, error)
}
