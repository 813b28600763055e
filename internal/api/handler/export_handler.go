package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/LanceHuang1/course-web-app/internal/dto"
	"github.com/LanceHuang1/course-web-app/internal/service"
	"github.com/LanceHuang1/course-web-app/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportCourses 导出课程与时数统计
// GET /api/v1/export/courses?from=&to=&course=
func (h *ExportHandler) ExportCourses(c *gin.Context) {
	var req dto.CourseListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, response.CodeInvalidParams, "参数校验失败")
		return
	}

	buf, filename, err := h.exportSvc.ExportCourses(c.Request.Context(), &req)
	if err != nil {
		handleDomainError(c, err)
		return
	}

	c.Header("Content-Description", "File Transfer")
	response.Attachment(c, xlsxContentType, filename, buf.Bytes())
}
