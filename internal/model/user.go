package model

import (
	"time"

	"gorm.io/gorm"
)

// User 用户模型
// 索引与唯一约束：用户名（pseudo）唯一、邮箱唯一
// 说明：密码仅存储哈希（PasswordHash），不存储明文，也不参与JSON序列化

type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Username     string         `gorm:"type:varchar(64);not null;uniqueIndex;comment:用户名" json:"username"`
	Email        string         `gorm:"type:varchar(128);not null;uniqueIndex;comment:邮箱" json:"email"`
	PasswordHash string         `gorm:"type:varchar(255);not null;comment:密码哈希" json:"-"`
	CreatedAt    time.Time      `gorm:"comment:创建时间" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"comment:更新时间" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName 全局使用单数表名
func (User) TableName() string { return "user" }

// Sanitized 返回去掉密码哈希的副本
func (u User) Sanitized() *User {
	u.PasswordHash = ""
	return &u
}
