package response

import (
	"net/http"

	"skillnet/internal/model"

	"github.com/gin-gonic/gin"
)

// Response 统一响应结构
// Code：0表示成功，错误时与HTTP状态码一致
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"` // 错误详情（仅在开发环境显示）
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	SuccessWithMessage(c, "success", data)
}

// SuccessWithMessage 带自定义消息的成功响应
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: message,
		Data:    data,
	})
}

// Created 201 创建成功
func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    0,
		Message: message,
		Data:    data,
	})
}

// NoContent 204 无内容
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error 错误响应，HTTP状态码与 code 一致
func Error(c *gin.Context, status int, message string) {
	c.JSON(status, Response{
		Code:    status,
		Message: message,
	})
}

// ErrorWithDetails 带错误详情的错误响应
func ErrorWithDetails(c *gin.Context, status int, message string, err error) {
	resp := Response{
		Code:    status,
		Message: message,
	}

	// 在开发环境下显示错误详情
	if gin.Mode() == gin.DebugMode && err != nil {
		resp.Error = err.Error()
	}

	c.JSON(status, resp)
}

// BadRequest 400错误
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// Unauthorized 401错误
func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message)
}

// Forbidden 403错误
func Forbidden(c *gin.Context, message string) {
	Error(c, http.StatusForbidden, message)
}

// NotFound 404错误
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

// Conflict 409错误
func Conflict(c *gin.Context, message string) {
	Error(c, http.StatusConflict, message)
}

// TooManyRequests 429错误
func TooManyRequests(c *gin.Context, message string) {
	Error(c, http.StatusTooManyRequests, message)
}

// InternalError 500错误
func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message)
}

const timeLayout = "2006-01-02 15:04:05"

// UserInfo 用户信息（隐藏敏感字段）
type UserInfo struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}

// FilterUserInfo 过滤用户信息，隐藏敏感字段
func FilterUserInfo(user *model.User) *UserInfo {
	if user == nil {
		return nil
	}

	return &UserInfo{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt.Format(timeLayout),
	}
}

// LoginResponse 登录/注册响应
type LoginResponse struct {
	User        *UserInfo `json:"user"`
	AccessToken string    `json:"access_token"`
}

// FriendshipInfo 好友关系响应
type FriendshipInfo struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"user_id"`
	FriendID  uint      `json:"friend_id"`
	Accepted  bool      `json:"accepted"`
	User      *UserInfo `json:"user,omitempty"`
	Friend    *UserInfo `json:"friend,omitempty"`
	CreatedAt string    `json:"created_at"`
	UpdatedAt string    `json:"updated_at"`
}

// FilterFriendshipInfo 转换好友关系，关联用户去掉敏感字段
func FilterFriendshipInfo(f *model.Friendship) *FriendshipInfo {
	if f == nil {
		return nil
	}
	return &FriendshipInfo{
		ID:        f.ID,
		UserID:    f.UserID,
		FriendID:  f.FriendID,
		Accepted:  f.Accepted,
		User:      FilterUserInfo(f.User),
		Friend:    FilterUserInfo(f.Friend),
		CreatedAt: f.CreatedAt.Format(timeLayout),
		UpdatedAt: f.UpdatedAt.Format(timeLayout),
	}
}

// FilterFriendshipList 批量转换
func FilterFriendshipList(list []*model.Friendship) []*FriendshipInfo {
	out := make([]*FriendshipInfo, 0, len(list))
	for _, f := range list {
		out = append(out, FilterFriendshipInfo(f))
	}
	return out
}
