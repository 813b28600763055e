package service

import (
	"go.uber.org/zap"

	"github.com/LanceHuang1/course-web-app/config"
	"github.com/LanceHuang1/course-web-app/internal/repository"
	"github.com/LanceHuang1/course-web-app/pkg/timefmt"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Course   CourseService
	Report   ReportService
	Calendar CalendarService
	Export   ExportService
}

// NewService 创建 Service 聚合；各服务共享同一个 CourseStore
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	logger *zap.Logger,
) *Service {
	store := NewCourseStore(repo.Course)
	formatter := timefmt.NewFormatter(cfg.Store.Layout())

	return &Service{
		Course: NewCourseService(store, formatter, cfg.Calendar.RepeatLimit, logger),
		Report: NewReportService(store, logger),
		Calendar: NewCalendarService(store, formatter, CalendarOptions{
			Name:      cfg.Calendar.Name,
			ProductID: cfg.Calendar.ProductID,
		}, logger),
		Export: NewExportService(store, logger),
	}
}
