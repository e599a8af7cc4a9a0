package handler

import (
	"skillnet/internal/service"
	"skillnet/pkg/response"

	"github.com/gin-gonic/gin"
)

// CompetenceHandler 技能接口
type CompetenceHandler struct {
	service *service.CompetenceService
}

// NewCompetenceHandler 创建CompetenceHandler实例
func NewCompetenceHandler(s *service.CompetenceService) *CompetenceHandler {
	return &CompetenceHandler{service: s}
}

func (h *CompetenceHandler) Create(c *gin.Context) {
	type req struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	comp, err := h.service.Create(c.Request.Context(), r.Name, r.Description)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Created(c, "competence created", comp)
}

func (h *CompetenceHandler) List(c *gin.Context) {
	list, err := h.service.FindAll(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, list)
}

func (h *CompetenceHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	comp, err := h.service.FindOne(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, comp)
}

// Update 部分更新，未出现的字段保持不变
func (h *CompetenceHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	type req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	comp, err := h.service.Update(c.Request.Context(), id, service.CompetenceUpdate{
		Name:        r.Name,
		Description: r.Description,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, comp)
}

func (h *CompetenceHandler) Remove(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Remove(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	response.NoContent(c)
}
