package model

import "time"

// CoinAccount 金币账户，余额不能为负
type CoinAccount struct {
	ID        uint      `gorm:"primaryKey"`
	UserId    string    `gorm:"column:user_id;uniqueIndex;type:varchar(64);not null;comment:用户id"`
	Balance   int64     `gorm:"column:balance;not null;default:0;comment:余额"`
	UpdatedAt time.Time `gorm:"column:updated_at;precision:3"`
}

func (CoinAccount) TableName() string {
	return "coin_account"
}

// CoinFlow 金币流水，Amount 为负表示扣减
type CoinFlow struct {
	ID        uint      `gorm:"primaryKey"`
	UserId    string    `gorm:"column:user_id;index;type:varchar(64);not null;comment:用户id"`
	Amount    int64     `gorm:"column:amount;not null;comment:变动数量"`
	Reason    string    `gorm:"column:reason;type:varchar(64);not null;comment:变动原因"`
	CreatedAt time.Time `gorm:"column:created_at;precision:3"`
}

func (CoinFlow) TableName() string {
	return "coin_flow"
}
