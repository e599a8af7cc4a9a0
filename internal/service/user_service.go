package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"skillnet/internal/model"
	"skillnet/internal/repository"
	"skillnet/pkg/jwt"
	"skillnet/pkg/logger"
	"skillnet/pkg/password"

	"go.uber.org/zap"
)

// UserService 用户目录、凭证校验与令牌签发
type UserService struct {
	repo       *repository.UserRepository
	jwtService *jwt.JWTService
	hash       func(string) (string, error)
}

// NewUserService 创建UserService实例
func NewUserService(repo *repository.UserRepository, jwtService *jwt.JWTService) *UserService {
	return &UserService{repo: repo, jwtService: jwtService, hash: password.Hash}
}

// WithHasher 替换密码哈希函数（测试中使用低代价哈希）
func (s *UserService) WithHasher(hash func(string) (string, error)) *UserService {
	s.hash = hash
	return s
}

// Register 注册，返回脱敏后的用户与访问令牌
func (s *UserService) Register(ctx context.Context, username, email, plainPassword string) (*model.User, string, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || plainPassword == "" {
		return nil, "", invalid("username, email and password are required")
	}
	if strings.Contains(username, "@") {
		return nil, "", invalid("username must not contain '@'")
	}

	hash, err := s.hash(plainPassword)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}
	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, "", fmt.Errorf("%w: username or email already taken", ErrConflict)
		}
		return nil, "", err
	}
	logger.Info("用户注册成功", zap.Uint("user_id", user.ID), zap.String("username", user.Username))

	token, err := s.IssueToken(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}
	return user.Sanitized(), token, nil
}

// Verify 校验凭证
// 用户不存在或密码错误时返回 (nil, nil)，只有基础设施故障才返回错误
func (s *UserService) Verify(ctx context.Context, identifier, plainPassword string) (*model.User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || plainPassword == "" {
		return nil, nil
	}
	u, err := s.repo.GetByUsernameOrEmail(ctx, identifier)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if !password.Verify(plainPassword, u.PasswordHash) {
		return nil, nil
	}
	return u.Sanitized(), nil
}

// IssueToken 为用户签发访问令牌
// 重新从用户目录读取用户，subject 为用户ID，展示字段按配置取用户名或邮箱
func (s *UserService) IssueToken(ctx context.Context, userID uint) (string, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return "", notFound(err, "user")
	}
	display := u.Username
	if s.jwtService.DisplayClaim() == "email" {
		display = u.Email
	}
	return s.jwtService.GenerateToken(
		strconv.FormatUint(uint64(u.ID), 10),
		map[string]interface{}{s.jwtService.DisplayClaim(): display},
	)
}

// Login 登录：校验凭证并签发令牌
func (s *UserService) Login(ctx context.Context, identifier, plainPassword string) (*model.User, string, error) {
	u, err := s.Verify(ctx, identifier, plainPassword)
	if err != nil {
		return nil, "", err
	}
	if u == nil {
		logger.Warn("登录失败", zap.String("identifier", identifier))
		return nil, "", ErrInvalidCredentials
	}
	token, err := s.IssueToken(ctx, u.ID)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// GetByID 按ID查找用户
func (s *UserService) GetByID(ctx context.Context, id uint) (*model.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "user")
	}
	return u.Sanitized(), nil
}

// GetByUsername 按用户名（pseudo）查找用户
func (s *UserService) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	u, err := s.repo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, notFound(err, "user")
	}
	return u.Sanitized(), nil
}

// GetByEmail 按邮箱查找用户
func (s *UserService) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, notFound(err, "user")
	}
	return u.Sanitized(), nil
}
