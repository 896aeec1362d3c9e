package model

import "time"

// BlockRelation 拉黑关系，方向性：BlockerId 拉黑了 BlockedId
// 存在时 BlockedId 发给 BlockerId 的消息会被拦截，历史消息不受影响
type BlockRelation struct {
	ID        uint      `gorm:"primaryKey"`
	BlockerId string    `gorm:"column:blocker_id;uniqueIndex:idx_blocker_blocked,priority:1;type:varchar(64);not null;comment:拉黑方"`
	BlockedId string    `gorm:"column:blocked_id;uniqueIndex:idx_blocker_blocked,priority:2;index;type:varchar(64);not null;comment:被拉黑方"`
	CreatedAt time.Time `gorm:"column:created_at;precision:3;comment:拉黑时间"`
}

func (BlockRelation) TableName() string {
	return "block_relation"
}
