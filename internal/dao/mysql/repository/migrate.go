package repository

import (
	"spark_chat_server/internal/model"

	"gorm.io/gorm"
)

// AutoMigrate 自动迁移全部表结构
// 表不存在则创建，字段变更则追加，不会删除已有字段或数据
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Conversation{},  // 会话表
		&model.Message{},       // 消息表
		&model.BlockRelation{}, // 拉黑关系表
		&model.UserReport{},    // 举报表
		&model.UserProfile{},   // 用户资料表
		&model.CoinAccount{},   // 金币账户表
		&model.CoinFlow{},      // 金币流水表
		&model.UserPresence{},  // 最后在线时间表
	)
}
