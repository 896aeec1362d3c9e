package model

import "time"

// Presence 在线状态视图
// Online 为 true 时 LastSeen 取当前时间；为 false 时是最后一次下线的时间
type Presence struct {
	UserId   string    `json:"user_id"`
	Online   bool      `json:"online"`
	LastSeen time.Time `json:"last_seen"`
	ConnId   string    `json:"-"`
	// HeartbeatAt 最近一次心跳，用于判断租约是否过期
	HeartbeatAt time.Time `json:"-"`
}

// UserPresence 持久化的最后在线时间，Redis 中的实时记录丢失后以此兜底
type UserPresence struct {
	UserId     string    `gorm:"column:user_id;primaryKey;type:varchar(64);comment:用户id"`
	LastSeenAt time.Time `gorm:"column:last_seen_at;precision:3;not null;comment:最后在线时间"`
	UpdatedAt  time.Time `gorm:"column:updated_at;precision:3"`
}

func (UserPresence) TableName() string {
	return "user_presence"
}
