package handler

import (
	"errors"
	"net/http"
	"strconv"

	"skillnet/internal/service"
	"skillnet/pkg/logger"
	"skillnet/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// writeError 将业务错误映射为HTTP状态码
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrForbidden):
		response.Forbidden(c, err.Error())
	case errors.Is(err, service.ErrAlreadyAccepted):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrConflict):
		response.Conflict(c, err.Error())
	case errors.Is(err, service.ErrInvalidInput):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Unauthorized(c, err.Error())
	default:
		_ = c.Error(err)
		logger.Error("请求处理失败",
			zap.String("request_id", logger.GetRequestID(c)),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		response.ErrorWithDetails(c, http.StatusInternalServerError, "internal server error", err)
	}
}

// parseID 解析路径中的数字ID
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.BadRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}
