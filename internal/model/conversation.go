// Package model 定义数据库实体模型
// 本文件定义单聊会话模型
package model

import "time"

// Conversation 单聊会话模型
// 对应数据库 conversation 表，一对用户有且只有一条记录
type Conversation struct {
	ID uint `gorm:"primaryKey"`

	// Uuid 会话键，由两个参与者 ID 排序后拼接得到，唯一索引保证并发首次创建不会重复
	Uuid string `gorm:"column:uuid;uniqueIndex;type:varchar(400);not null;comment:会话键"`

	// UserOneId/UserTwoId 参与者，按字典序存放，UserOneId < UserTwoId
	UserOneId string `gorm:"column:user_one_id;index;type:varchar(64);not null;comment:参与者一"`
	UserTwoId string `gorm:"column:user_two_id;index;type:varchar(64);not null;comment:参与者二"`

	// 最新消息摘要，仅用于展示，后写覆盖
	LastMessage   string     `gorm:"column:last_message;type:TEXT;comment:最新的消息"`
	LastSenderId  string     `gorm:"column:last_sender_id;type:varchar(64);comment:最新消息发送者"`
	LastMessageAt *time.Time `gorm:"column:last_message_at;precision:3;comment:最新消息时间"`

	CreatedAt time.Time `gorm:"column:created_at;precision:3;not null"`
	// UpdatedAt 会话列表按该字段倒序
	UpdatedAt time.Time `gorm:"column:updated_at;index;precision:3;not null"`
}

// TableName 指定表名
func (Conversation) TableName() string {
	return "conversation"
}

// Counterpart 返回 userId 在会话中的对方，userId 不是参与者或参与者不足两人时 ok 为 false
func (c *Conversation) Counterpart(userId string) (string, bool) {
	if c.UserOneId == "" || c.UserTwoId == "" || c.UserOneId == c.UserTwoId {
		return "", false
	}
	switch userId {
	case c.UserOneId:
		return c.UserTwoId, true
	case c.UserTwoId:
		return c.UserOneId, true
	}
	return "", false
}

// HasParticipant 判断用户是否为会话参与者
func (c *Conversation) HasParticipant(userId string) bool {
	return userId != "" && (c.UserOneId == userId || c.UserTwoId == userId)
}
