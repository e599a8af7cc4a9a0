package model

import (
	"time"

	"gorm.io/gorm"
)

// Competence 技能
type Competence struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"type:varchar(128);not null;comment:名称" json:"name"`
	Description string         `gorm:"type:text;comment:描述" json:"description"`
	CreatedAt   time.Time      `gorm:"comment:创建时间" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"comment:更新时间" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Competence) TableName() string { return "competence" }

// All 返回需要自动迁移的模型
func All() []interface{} {
	return []interface{}{&User{}, &Friendship{}, &Competence{}}
}
