package repository

import (
	"context"

	"skillnet/internal/model"

	"gorm.io/gorm"
)

// UserRepository 用户数据仓储
type UserRepository struct {
	orm *gorm.DB
}

// NewUserRepository 创建UserRepository实例
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{orm: db}
}

// Create 创建用户
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return translate(r.orm.WithContext(ctx).Create(user).Error)
}

// GetByID 根据ID获取用户
func (r *UserRepository) GetByID(ctx context.Context, id uint) (*model.User, error) {
	var u model.User
	if err := r.orm.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// GetByUsername 根据用户名（pseudo）获取用户
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.getBy(ctx, "username = ?", username)
}

// GetByEmail 根据邮箱获取用户
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getBy(ctx, "email = ?", email)
}

// GetByUsernameOrEmail 登录时按用户名或邮箱查找
func (r *UserRepository) GetByUsernameOrEmail(ctx context.Context, identifier string) (*model.User, error) {
	return r.getBy(ctx, "username = ? OR email = ?", identifier, identifier)
}

func (r *UserRepository) getBy(ctx context.Context, query string, args ...interface{}) (*model.User, error) {
	var u model.User
	if err := r.orm.WithContext(ctx).Where(query, args...).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}
