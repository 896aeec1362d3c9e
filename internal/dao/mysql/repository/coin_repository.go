// Package repository 提供数据访问层的具体实现
// 本文件实现 CoinRepository 接口，余额变动与流水在同一事务中写入
package repository

import (
	"context"
	"errors"

	"spark_chat_server/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type coinRepository struct {
	db *gorm.DB
}

// NewCoinRepository 创建 CoinRepository 实例
func NewCoinRepository(db *gorm.DB) CoinRepository {
	return &coinRepository{db: db}
}

// Debit 条件扣减：UPDATE ... WHERE balance >= amount，影响行数为 0 即余额不足
func (r *coinRepository) Debit(ctx context.Context, userId string, amount int64, reason string) (bool, error) {
	if amount <= 0 {
		return true, nil
	}
	var ok bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.CoinAccount{}).
			Where("user_id = ? AND balance >= ?", userId, amount).
			Update("balance", gorm.Expr("balance - ?", amount))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		ok = true
		return tx.Create(&model.CoinFlow{UserId: userId, Amount: -amount, Reason: reason}).Error
	})
	if err != nil {
		return false, wrapDBErrorf(err, "扣减金币 user_id=%s amount=%d", userId, amount)
	}
	return ok, nil
}

// Credit 增加金币，账户不存在时以 amount 开户
func (r *coinRepository) Credit(ctx context.Context, userId string, amount int64, reason string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		account := model.CoinAccount{UserId: userId, Balance: amount}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"balance": gorm.Expr("balance + ?", amount)}),
		}).Create(&account).Error
		if err != nil {
			return err
		}
		return tx.Create(&model.CoinFlow{UserId: userId, Amount: amount, Reason: reason}).Error
	})
	if err != nil {
		return wrapDBErrorf(err, "增加金币 user_id=%s amount=%d", userId, amount)
	}
	return nil
}

// Balance 查询余额
func (r *coinRepository) Balance(ctx context.Context, userId string) (int64, error) {
	var account model.CoinAccount
	err := r.db.WithContext(ctx).Where("user_id = ?", userId).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, wrapDBErrorf(err, "查询余额 user_id=%s", userId)
	}
	return account.Balance, nil
}
