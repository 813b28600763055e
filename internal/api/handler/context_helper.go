package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/LanceHuang1/course-web-app/internal/service"
	apperrors "github.com/LanceHuang1/course-web-app/pkg/errors"
	"github.com/LanceHuang1/course-web-app/pkg/response"
)

// MustGetCourseID 从路径参数中解析课程 ID。
// 非正整数时写入 400 响应并返回 false，调用方应直接 return。
func MustGetCourseID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		response.BadRequest(c, response.CodeInvalidParams, "课程ID必须为正整数")
		return 0, false
	}
	return id, true
}

// handleDomainError 将领域错误映射为统一响应
func handleDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrCourseNotFound):
		response.ErrorWithDetails(c, http.StatusNotFound, response.CodeCourseNotFound, "课程不存在", err.Error())
	case errors.Is(err, apperrors.ErrInvalidTimeFormat):
		response.ErrorWithDetails(c, http.StatusBadRequest, response.CodeTimeFormat,
			"时间格式错误，应为 YYYY/MM/DD HH:MM 或 YYYY-MM-DD HH:MM", err.Error())
	case errors.Is(err, apperrors.ErrInvalidRange):
		response.ErrorWithDetails(c, http.StatusBadRequest, response.CodeTimeRange, "结束时间必须晚于开始时间", err.Error())
	case errors.Is(err, service.ErrICSParseFailed),
		errors.Is(err, service.ErrICSEmpty),
		errors.Is(err, service.ErrICSTooLarge):
		response.ErrorWithDetails(c, http.StatusBadRequest, response.CodeICSInvalid, "ICS 文件无效", err.Error())
	case errors.Is(err, service.ErrRepeatInvalidRule):
		response.ErrorWithDetails(c, http.StatusBadRequest, response.CodeRepeatRule, "重复规则无效", err.Error())
	default:
		_ = c.Error(err)
		response.InternalError(c)
	}
}
