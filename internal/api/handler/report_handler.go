package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/LanceHuang1/course-web-app/internal/dto"
	"github.com/LanceHuang1/course-web-app/internal/service"
	"github.com/LanceHuang1/course-web-app/pkg/response"
)

// ReportHandler 时数统计 HTTP 处理器
type ReportHandler struct {
	reportSvc service.ReportService
}

// NewReportHandler 创建 ReportHandler
func NewReportHandler(reportSvc service.ReportService) *ReportHandler {
	return &ReportHandler{reportSvc: reportSvc}
}

// GetHours 时数统计
// GET /api/v1/reports/hours?from=&to=&course=
func (h *ReportHandler) GetHours(c *gin.Context) {
	var req dto.HoursReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, response.CodeInvalidParams, "参数校验失败")
		return
	}

	report, err := h.reportSvc.Hours(c.Request.Context(), &req)
	if err != nil {
		handleDomainError(c, err)
		return
	}

	response.OK(c, report)
}

// GetSuggestions 输入联想候选
// GET /api/v1/suggestions
func (h *ReportHandler) GetSuggestions(c *gin.Context) {
	result, err := h.reportSvc.Suggestions(c.Request.Context())
	if err != nil {
		handleDomainError(c, err)
		return
	}

	response.OK(c, result)
}
