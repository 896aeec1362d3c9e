package repository

import (
	"gorm.io/gorm"
)

// Repositories 聚合所有 Repository 实例
// 作为依赖注入的入口，Service 层通过此结构访问数据层
type Repositories struct {
	db           *gorm.DB
	Conversation ConversationRepository
	Message      MessageRepository
	Block        BlockRepository
	Report       ReportRepository
	Profile      ProfileRepository
	Coin         CoinRepository
	Presence     PresenceRepository
}

// NewRepositories 创建所有 Repository 实例
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		db:           db,
		Conversation: NewConversationRepository(db),
		Message:      NewMessageRepository(db),
		Block:        NewBlockRepository(db),
		Report:       NewReportRepository(db),
		Profile:      NewProfileRepository(db),
		Coin:         NewCoinRepository(db),
		Presence:     NewPresenceRepository(db),
	}
}

// Transaction 在数据库事务中执行函数
// 事务内的所有操作要么全部成功，要么全部回滚
// fn 只能使用传入的 txRepos，不能再使用外层的 Repositories
func (r *Repositories) Transaction(fn func(txRepos *Repositories) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}
