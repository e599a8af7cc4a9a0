package model

import (
	"time"
)

// Friendship 好友关系（有向）
// UserID 为发起方，FriendID 为被请求方
// 互为好友由两行表示：(A->B, accepted) 与 (B->A, accepted)
// 删除为物理删除，行不存在即表示关系已解除
// (user_id, friend_id) 唯一，同一方向最多一行

type Friendship struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_friendship_pair,priority:1;comment:发起方用户ID" json:"user_id"`
	FriendID  uint      `gorm:"not null;uniqueIndex:idx_friendship_pair,priority:2;index;comment:被请求方用户ID" json:"friend_id"`
	Accepted  bool      `gorm:"not null;default:false;comment:是否已接受" json:"accepted"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Friend    *User     `gorm:"foreignKey:FriendID" json:"friend,omitempty"`
	CreatedAt time.Time `gorm:"comment:创建时间" json:"created_at"`
	UpdatedAt time.Time `gorm:"comment:更新时间" json:"updated_at"`
}

func (Friendship) TableName() string { return "friendship" }

// IsParty 判断用户是否为该关系的任一方
func (f *Friendship) IsParty(userID uint) bool {
	return f.UserID == userID || f.FriendID == userID
}

// Counterpart 返回关系中另一方的用户ID
func (f *Friendship) Counterpart(userID uint) uint {
	if f.UserID == userID {
		return f.FriendID
	}
	return f.UserID
}
