package handler

import (
	"skillnet/internal/service"
	"skillnet/pkg/jwt"
	"skillnet/pkg/response"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	service *service.UserService
}

func NewUserHandler(s *service.UserService) *UserHandler {
	return &UserHandler{service: s}
}

// Register 用户注册
func (h *UserHandler) Register(c *gin.Context) {
	type req struct {
		Username string `json:"username" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	user, token, err := h.service.Register(c.Request.Context(), r.Username, r.Email, r.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Created(c, "registered", &response.LoginResponse{
		User:        response.FilterUserInfo(user),
		AccessToken: token,
	})
}

// Login 用户登录
func (h *UserHandler) Login(c *gin.Context) {
	type req struct {
		UsernameOrEmail string `json:"usernameOrEmail"`
		Email           string `json:"email"`
		Password        string `json:"password" binding:"required"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	identifier := r.UsernameOrEmail
	if identifier == "" {
		identifier = r.Email
	}
	if identifier == "" {
		response.BadRequest(c, "usernameOrEmail is required")
		return
	}

	user, token, err := h.service.Login(c.Request.Context(), identifier, r.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	response.SuccessWithMessage(c, "logged in", &response.LoginResponse{
		User:        response.FilterUserInfo(user),
		AccessToken: token,
	})
}

// Me 获取当前用户资料（需要JWT认证）
func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.service.GetByID(c.Request.Context(), jwt.GetUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, response.FilterUserInfo(user))
}
