package service

import (
	"errors"
	"fmt"

	"skillnet/internal/repository"
)

// 业务错误分类，handler 层据此映射HTTP状态码
var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("conflict")
	ErrAlreadyAccepted    = fmt.Errorf("%w: friendship already accepted", ErrConflict)
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// notFound 将仓储层的记录不存在转换为业务错误，其余错误原样包装
func notFound(err error, what string) error {
	if errors.Is(err, repository.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("load %s: %w", what, err)
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, msg)
}
