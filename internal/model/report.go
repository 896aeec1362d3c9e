package model

import (
	"gorm.io/gorm"
)

// UserReport 举报记录，处理流程由外部审核系统负责
type UserReport struct {
	gorm.Model
	Uuid           string `gorm:"column:uuid;uniqueIndex;type:char(36);not null;comment:举报uuid"`
	ReporterId     string `gorm:"column:reporter_id;index;type:varchar(64);not null;comment:举报人"`
	ReportedId     string `gorm:"column:reported_id;index;type:varchar(64);not null;comment:被举报人"`
	ConversationId string `gorm:"column:conversation_id;type:varchar(400);comment:相关会话"`
	Reason         string `gorm:"column:reason;type:varchar(500);not null;comment:举报原因"`
	Status         int8   `gorm:"column:status;not null;default:0;comment:状态，0.待处理，1.已处理"`
}

func (UserReport) TableName() string {
	return "user_report"
}
