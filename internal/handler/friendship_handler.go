package handler

import (
	"skillnet/internal/model"
	"skillnet/internal/service"
	"skillnet/pkg/jwt"
	"skillnet/pkg/response"

	"github.com/gin-gonic/gin"
)

// FriendshipHandler 好友关系接口
// 操作人身份一律取自token，不信任请求体中的用户标识
type FriendshipHandler struct {
	service *service.FriendshipService
}

// NewFriendshipHandler 创建FriendshipHandler实例
func NewFriendshipHandler(s *service.FriendshipService) *FriendshipHandler {
	return &FriendshipHandler{service: s}
}

// Create 发起好友请求：{"pseudo": "..."} 或 {"friend_id": n}
func (h *FriendshipHandler) Create(c *gin.Context) {
	type req struct {
		Pseudo   string `json:"pseudo"`
		FriendID uint   `json:"friend_id"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	userID := jwt.GetUserID(c)
	var (
		f   *model.Friendship
		err error
	)
	switch {
	case r.Pseudo != "":
		f, err = h.service.RequestByUsername(ctx, userID, r.Pseudo)
	case r.FriendID != 0:
		f, err = h.service.Request(ctx, userID, r.FriendID)
	default:
		response.BadRequest(c, "pseudo or friend_id is required")
		return
	}
	if err != nil {
		writeError(c, err)
		return
	}
	response.Created(c, "friendship requested", response.FilterFriendshipInfo(f))
}

// Get 按ID获取关系
func (h *FriendshipHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	f, err := h.service.FindOne(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, response.FilterFriendshipInfo(f))
}

// Accept 接受好友请求
func (h *FriendshipHandler) Accept(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	f, err := h.service.Accept(c.Request.Context(), id, jwt.GetUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.SuccessWithMessage(c, "friendship accepted", response.FilterFriendshipInfo(f))
}

// Remove 删除好友关系
func (h *FriendshipHandler) Remove(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Remove(c.Request.Context(), id, jwt.GetUserID(c)); err != nil {
		writeError(c, err)
		return
	}
	response.NoContent(c)
}

// ListFriends 当前用户的好友
func (h *FriendshipHandler) ListFriends(c *gin.Context) {
	list, err := h.service.ListFriends(c.Request.Context(), jwt.GetUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, response.FilterFriendshipList(list))
}

// ListPending 等待当前用户处理的请求
func (h *FriendshipHandler) ListPending(c *gin.Context) {
	list, err := h.service.ListPending(c.Request.Context(), jwt.GetUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, response.FilterFriendshipList(list))
}

// PendingCount 待处理请求数量
func (h *FriendshipHandler) PendingCount(c *gin.Context) {
	count, err := h.service.PendingCount(c.Request.Context(), jwt.GetUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, gin.H{"count": count})
}
