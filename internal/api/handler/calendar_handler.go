package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/LanceHuang1/course-web-app/internal/dto"
	"github.com/LanceHuang1/course-web-app/internal/service"
	"github.com/LanceHuang1/course-web-app/pkg/response"
)

// CalendarHandler 日历模块 HTTP 处理器
type CalendarHandler struct {
	calendarSvc service.CalendarService
}

// NewCalendarHandler 创建 CalendarHandler
func NewCalendarHandler(calendarSvc service.CalendarService) *CalendarHandler {
	return &CalendarHandler{calendarSvc: calendarSvc}
}

// ListEvents 日历事件
// GET /api/v1/calendar/events?from=&to=&course=
func (h *CalendarHandler) ListEvents(c *gin.Context) {
	var req dto.CourseListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, response.CodeInvalidParams, "参数校验失败")
		return
	}

	events, err := h.calendarSvc.Events(c.Request.Context(), &req)
	if err != nil {
		handleDomainError(c, err)
		return
	}

	response.OK(c, events)
}

// ExportICS 导出 iCalendar
// GET /api/v1/calendar/export.ics
func (h *CalendarHandler) ExportICS(c *gin.Context) {
	data, filename, err := h.calendarSvc.ExportICS(c.Request.Context())
	if err != nil {
		handleDomainError(c, err)
		return
	}

	response.Attachment(c, "text/calendar; charset=utf-8", filename, data)
}

// ImportICS 上传 ICS 文件导入课程
// POST /api/v1/calendar/import (multipart, 字段 file)
func (h *CalendarHandler) ImportICS(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		response.BadRequest(c, response.CodeInvalidParams, "请上传 ICS 文件")
		return
	}
	defer file.Close()

	result, err := h.calendarSvc.ImportICS(c.Request.Context(), file)
	if err != nil {
		handleDomainError(c, err)
		return
	}

	response.Created(c, result)
}
