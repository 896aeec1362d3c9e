// Package model 定义数据库实体模型
// 本文件定义消息模型，用于存储聊天消息
package model

import (
	"time"
)

// Message 消息模型
// 对应数据库 message 表
// 同一会话内按 (send_at, id) 全序排列，id 为存储分配的到达顺序
type Message struct {
	ID uint `gorm:"primaryKey"`

	// Uuid 消息唯一标识，雪花算法生成，以字符串形式对外暴露
	Uuid string `gorm:"column:uuid;uniqueIndex;type:varchar(32);not null;comment:消息雪花ID"`

	// ConversationId 所属会话键
	ConversationId string `gorm:"column:conversation_id;index:idx_conversation_send_at,priority:1;type:varchar(400);not null;comment:会话键"`

	// SendId 发送者
	SendId string `gorm:"column:send_id;index;type:varchar(64);not null;comment:发送者uuid"`

	// Content 消息文本内容
	Content string `gorm:"column:content;type:TEXT;comment:消息内容"`

	// SendAt 服务端写入时间，毫秒精度，同一会话内单调不减
	SendAt time.Time `gorm:"column:send_at;index:idx_conversation_send_at,priority:2;precision:3;not null;comment:发送时间"`

	// Delivered 写入即视为已送达
	Delivered bool `gorm:"column:delivered;not null;default:false;comment:是否已送达"`

	// IsRead 已读为终态，不可回退
	IsRead bool `gorm:"column:is_read;not null;default:false;comment:是否已读"`

	CreatedAt time.Time `gorm:"column:created_at;precision:3"`
}

// TableName 指定表名
func (Message) TableName() string {
	return "message"
}
