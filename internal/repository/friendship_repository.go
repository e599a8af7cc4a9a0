package repository

import (
	"context"

	"skillnet/internal/model"

	"gorm.io/gorm"
)

// FriendshipRepository 好友关系数据仓储
type FriendshipRepository struct {
	db *gorm.DB
}

// NewFriendshipRepository 创建FriendshipRepository实例
func NewFriendshipRepository(db *gorm.DB) *FriendshipRepository {
	return &FriendshipRepository{db: db}
}

// Transaction 在同一事务中执行 fn，fn 返回错误时整体回滚
func (r *FriendshipRepository) Transaction(ctx context.Context, fn func(tx *FriendshipRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&FriendshipRepository{db: tx})
	})
}

// Create 创建关系行
func (r *FriendshipRepository) Create(ctx context.Context, f *model.Friendship) error {
	return translate(r.db.WithContext(ctx).Create(f).Error)
}

// GetByID 根据ID获取关系，附带双方用户信息
func (r *FriendshipRepository) GetByID(ctx context.Context, id uint) (*model.Friendship, error) {
	var f model.Friendship
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Friend").
		First(&f, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &f, nil
}

// GetByUserAndFriend 按方向查找关系行（userID -> friendID）
func (r *FriendshipRepository) GetByUserAndFriend(ctx context.Context, userID, friendID uint) (*model.Friendship, error) {
	var f model.Friendship
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND friend_id = ?", userID, friendID).
		First(&f).Error
	if err != nil {
		return nil, translate(err)
	}
	return &f, nil
}

// ExistsBetween 判断两人之间是否已有任一方向的关系行
func (r *FriendshipRepository) ExistsBetween(ctx context.Context, a, b uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Friendship{}).
		Where("(user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)", a, b, b, a).
		Count(&count).Error
	return count > 0, err
}

// MarkAccepted 将待处理的关系置为已接受
// 仅当当前仍为待处理时才会更新，返回是否发生了状态变化
func (r *FriendshipRepository) MarkAccepted(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Friendship{}).
		Where("id = ? AND accepted = ?", id, false).
		Update("accepted", true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// Delete 物理删除关系行，返回是否删除了记录
func (r *FriendshipRepository) Delete(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&model.Friendship{}, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ListFriends 获取用户已接受的好友关系（以用户为发起方的那一行）
func (r *FriendshipRepository) ListFriends(ctx context.Context, userID uint) ([]*model.Friendship, error) {
	var list []*model.Friendship
	err := r.db.WithContext(ctx).
		Preload("Friend").
		Where("user_id = ? AND accepted = ?", userID, true).
		Order("updated_at DESC").
		Find(&list).Error
	return list, err
}

// ListPending 获取等待用户处理的好友请求
func (r *FriendshipRepository) ListPending(ctx context.Context, userID uint) ([]*model.Friendship, error) {
	var list []*model.Friendship
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("friend_id = ? AND accepted = ?", userID, false).
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}

// CountPending 统计等待用户处理的好友请求数量
func (r *FriendshipRepository) CountPending(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Friendship{}).
		Where("friend_id = ? AND accepted = ?", userID, false).
		Count(&count).Error
	return count, err
}
