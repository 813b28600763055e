package handler

import "github.com/LanceHuang1/course-web-app/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Course   *CourseHandler
	Report   *ReportHandler
	Calendar *CalendarHandler
	Export   *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Course:   NewCourseHandler(svc.Course),
		Report:   NewReportHandler(svc.Report),
		Calendar: NewCalendarHandler(svc.Calendar),
		Export:   NewExportHandler(svc.Export),
	}
}
