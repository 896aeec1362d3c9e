// Package model 定义数据库实体模型
// 本文件定义用户资料模型，资料的增删改由外部资料服务负责，这里只读
package model

import (
	"gorm.io/gorm"
)

// UserProfile 用户资料
// 对应数据库 user_profile 表
type UserProfile struct {
	gorm.Model

	// Uuid 用户唯一标识，与认证服务下发的 user_id 一致
	Uuid string `gorm:"column:uuid;uniqueIndex;type:varchar(64);not null;comment:用户唯一id"`

	Nickname string `gorm:"column:nickname;type:varchar(40);not null;comment:昵称"`

	// Avatar 头像 URL
	Avatar string `gorm:"column:avatar;type:varchar(255);comment:头像"`

	// Gender 性别，0=男, 1=女, 2=其他
	Gender int8 `gorm:"column:gender;comment:性别"`

	// Birthday 生日，格式 YYYY-MM-DD
	Birthday string `gorm:"column:birthday;type:char(10);comment:生日"`

	Bio string `gorm:"column:bio;type:varchar(255);comment:个人简介"`
}

// TableName 指定表名
func (UserProfile) TableName() string {
	return "user_profile"
}
