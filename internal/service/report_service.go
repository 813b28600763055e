package service

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/LanceHuang1/course-web-app/internal/dto"
	"github.com/LanceHuang1/course-web-app/internal/model"
)

// ReportService 时数统计与输入联想
type ReportService interface {
	Hours(ctx context.Context, req *dto.HoursReportRequest) (*dto.HoursReportResponse, error)
	Suggestions(ctx context.Context) (*dto.SuggestionsResponse, error)
}

type reportService struct {
	store  *CourseStore
	logger *zap.Logger
}

// NewReportService 创建 ReportService 实例
func NewReportService(store *CourseStore, logger *zap.Logger) ReportService {
	return &reportService{store: store, logger: logger}
}

// ────────────────────── Hours ──────────────────────

func (s *reportService) Hours(ctx context.Context, req *dto.HoursReportRequest) (*dto.HoursReportResponse, error) {
	dr, course, err := parseListFilter(req)
	if err != nil {
		return nil, err
	}

	records, err := s.store.load(ctx)
	if err != nil {
		s.logger.Error("读取课程失败", zap.Error(err))
		return nil, err
	}

	selected := Filter(records, dr, course)
	skipped := countUnparseable(records, course)
	if skipped > 0 {
		s.logger.Debug("统计时跳过时间无法解析的课程", zap.Int("count", skipped))
	}

	total := TotalHours(selected)
	return &dto.HoursReportResponse{
		TotalHours:     total,
		TotalHoursText: fmt.Sprintf("%.2f", total),
		CourseCount:    len(selected) - countUnparseable(selected, AllCourses),
		SkippedCount:   skipped,
		ByTeacher:      sortedTotals(GroupSum(selected, ByTeacher)),
		ByCourse:       sortedTotals(GroupSum(selected, ByCourse)),
		ByStudent:      sortedTotals(GroupSum(selected, ByStudent)),
	}, nil
}

// ────────────────────── Suggestions ──────────────────────

func (s *reportService) Suggestions(ctx context.Context) (*dto.SuggestionsResponse, error) {
	records, err := s.store.load(ctx)
	if err != nil {
		s.logger.Error("读取课程失败", zap.Error(err))
		return nil, err
	}

	return &dto.SuggestionsResponse{
		CourseNames:  DistinctCourseNames(records),
		StudentNames: DistinctStudentNames(records),
		TeacherNames: DistinctTeacherNames(records),
	}, nil
}

// ── 辅助函数 ──

// countUnparseable 统计课程名匹配但起止时间无法解析的记录数
func countUnparseable(records []model.CourseRecord, course string) int {
	n := 0
	for _, rec := range records {
		if course != AllCourses && rec.CourseName != course {
			continue
		}
		if _, err := DurationHours(rec); err != nil {
			n++
		}
	}
	return n
}

// sortedTotals 按键排序，保证响应稳定
func sortedTotals(sums map[string]float64) []dto.GroupTotal {
	out := make([]dto.GroupTotal, 0, len(sums))
	for k, v := range sums {
		out = append(out, dto.GroupTotal{Key: k, Hours: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
