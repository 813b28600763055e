package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
	"go.uber.org/zap"

	"github.com/LanceHuang1/course-web-app/internal/dto"
	"github.com/LanceHuang1/course-web-app/internal/model"
	apperrors "github.com/LanceHuang1/course-web-app/pkg/errors"
	"github.com/LanceHuang1/course-web-app/pkg/timefmt"
)

// ── 课程模块业务错误 ──

var (
	ErrRepeatInvalidRule = errors.New("重复规则无效")
)

// CourseService 课程业务接口
type CourseService interface {
	List(ctx context.Context, req *dto.CourseListRequest) ([]dto.CourseResponse, error)
	GetByID(ctx context.Context, id int) (*dto.CourseResponse, error)
	Create(ctx context.Context, req *dto.CreateCourseRequest) (*dto.CourseResponse, error)
	Update(ctx context.Context, id int, req *dto.UpdateCourseRequest) (*dto.CourseResponse, error)
	Reschedule(ctx context.Context, id int, req *dto.RescheduleCourseRequest) (*dto.CourseResponse, error)
	Delete(ctx context.Context, id int) error
	PrepareCopy(ctx context.Context, id int) (*dto.PendingAction, error)
	Repeat(ctx context.Context, id int, req *dto.RepeatCourseRequest) (*dto.RepeatCourseResponse, error)
}

type courseService struct {
	store       *CourseStore
	formatter   timefmt.Formatter
	repeatLimit int
	logger      *zap.Logger
}

// NewCourseService 创建 CourseService 实例
func NewCourseService(store *CourseStore, formatter timefmt.Formatter, repeatLimit int, logger *zap.Logger) CourseService {
	return &courseService{
		store:       store,
		formatter:   formatter,
		repeatLimit: repeatLimit,
		logger:      logger,
	}
}

// ────────────────────── List ──────────────────────

func (s *courseService) List(ctx context.Context, req *dto.CourseListRequest) ([]dto.CourseResponse, error) {
	dr, course, err := parseListFilter(req)
	if err != nil {
		return nil, err
	}

	records, err := s.store.load(ctx)
	if err != nil {
		s.logger.Error("读取课程失败", zap.Error(err))
		return nil, err
	}

	// 无筛选条件时保留时间无法解析的记录，由前端标记为无效
	if !isFiltered(dr, course) {
		return s.toCourseResponses(records), nil
	}
	return s.toCourseResponses(Filter(records, dr, course)), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *courseService) GetByID(ctx context.Context, id int) (*dto.CourseResponse, error) {
	records, err := s.store.load(ctx)
	if err != nil {
		s.logger.Error("读取课程失败", zap.Error(err))
		return nil, err
	}

	idx := indexOfCourse(records, id)
	if idx < 0 {
		return nil, &apperrors.NotFoundError{ID: id}
	}
	resp := s.toCourseResponse(records[idx])
	return &resp, nil
}

// ────────────────────── Create ──────────────────────

func (s *courseService) Create(ctx context.Context, req *dto.CreateCourseRequest) (*dto.CourseResponse, error) {
	fields, err := normalizeFields(s.formatter, req.Fields())
	if err != nil {
		return nil, err
	}

	var created model.CourseRecord
	err = s.store.mutate(ctx, func(records []model.CourseRecord) ([]model.CourseRecord, error) {
		created = NewCourse(fields, records)
		return append(records, created), nil
	})
	if err != nil {
		s.logger.Error("创建课程失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("课程已创建",
		zap.Int("id", created.ID),
		zap.String("course_name", created.CourseName))
	resp := s.toCourseResponse(created)
	return &resp, nil
}

// ────────────────────── Update ──────────────────────

func (s *courseService) Update(ctx context.Context, id int, req *dto.UpdateCourseRequest) (*dto.CourseResponse, error) {
	fields, err := normalizeFields(s.formatter, req.Fields())
	if err != nil {
		return nil, err
	}
	return s.replace(ctx, id, func(model.CourseRecord) model.CourseFields { return fields })
}

// ────────────────────── Reschedule ──────────────────────

// Reschedule 日历拖拽/缩放：仅替换起止时间，名称沿用原记录
func (s *courseService) Reschedule(ctx context.Context, id int, req *dto.RescheduleCourseRequest) (*dto.CourseResponse, error) {
	times, err := normalizeFields(s.formatter, model.CourseFields{
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	})
	if err != nil {
		return nil, err
	}
	return s.replace(ctx, id, func(old model.CourseRecord) model.CourseFields {
		f := old.Fields()
		f.StartTime = times.StartTime
		f.EndTime = times.EndTime
		return f
	})
}

// replace 在写锁内定位记录并整体替换字段；记录不存在时不写回
func (s *courseService) replace(ctx context.Context, id int, build func(model.CourseRecord) model.CourseFields) (*dto.CourseResponse, error) {
	var updated model.CourseRecord
	err := s.store.mutate(ctx, func(records []model.CourseRecord) ([]model.CourseRecord, error) {
		idx := indexOfCourse(records, id)
		if idx < 0 {
			return nil, &apperrors.NotFoundError{ID: id}
		}
		updated = ApplyUpdate(records[idx], build(records[idx]))
		records[idx] = updated
		return records, nil
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrCourseNotFound) {
			s.logger.Error("更新课程失败", zap.Int("id", id), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("课程已更新", zap.Int("id", id))
	resp := s.toCourseResponse(updated)
	return &resp, nil
}

// ────────────────────── Delete ──────────────────────

// Delete 删除课程；id 不存在时视为成功，且不写回文件
func (s *courseService) Delete(ctx context.Context, id int) error {
	removed := false
	err := s.store.mutate(ctx, func(records []model.CourseRecord) ([]model.CourseRecord, error) {
		next := RemoveCourse(records, id)
		if len(next) == len(records) {
			return nil, errNothingToSave
		}
		removed = true
		return next, nil
	})
	if err != nil && !errors.Is(err, errNothingToSave) {
		s.logger.Error("删除课程失败", zap.Int("id", id), zap.Error(err))
		return err
	}

	if removed {
		s.logger.Info("课程已删除", zap.Int("id", id))
	}
	return nil
}

// errNothingToSave 变更为空操作时中止写回
var errNothingToSave = errors.New("nothing to save")

// ────────────────────── PrepareCopy ──────────────────────

// PrepareCopy 返回预填源记录字段的表单，不改变存储
func (s *courseService) PrepareCopy(ctx context.Context, id int) (*dto.PendingAction, error) {
	src, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.PendingAction{
		Kind:     "copy",
		SourceID: src.ID,
		Fields: dto.CourseFormFields{
			CourseName:  src.CourseName,
			StudentName: src.StudentName,
			TeacherName: src.TeacherName,
			StartTime:   src.StartTime,
			EndTime:     src.EndTime,
		},
	}, nil
}

// ────────────────────── Repeat ──────────────────────

// Repeat 按 RRULE 将课程复制到后续各次发生时间，时长与名称保持不变
//
// 规则以源记录的开始时间为 DTSTART，与源记录重合的首次发生被跳过；
// 最多生成 repeatLimit 条，超出部分截断。
func (s *courseService) Repeat(ctx context.Context, id int, req *dto.RepeatCourseRequest) (*dto.RepeatCourseResponse, error) {
	rule, err := rrule.StrToRRule(strings.TrimSpace(req.RRule))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepeatInvalidRule, err)
	}
	// 课程时间精确到分钟，按秒重复没有意义
	if rule.OrigOptions.Freq == rrule.SECONDLY {
		return nil, fmt.Errorf("%w: 不支持 FREQ=SECONDLY", ErrRepeatInvalidRule)
	}

	var created []model.CourseRecord
	truncated := false
	err = s.store.mutate(ctx, func(records []model.CourseRecord) ([]model.CourseRecord, error) {
		idx := indexOfCourse(records, id)
		if idx < 0 {
			return nil, &apperrors.NotFoundError{ID: id}
		}
		src := records[idx]
		start, end, err := recordSpan(src)
		if err != nil {
			return nil, err
		}
		if err := ValidateRange(start, end); err != nil {
			return nil, err
		}

		var starts []time.Time
		starts, truncated = s.occurrences(rule, start)
		duration := end.Sub(start)
		for _, occ := range starts {
			rec := NewCourse(model.CourseFields{
				CourseName:  src.CourseName,
				StudentName: src.StudentName,
				TeacherName: src.TeacherName,
				StartTime:   s.formatter.Format(occ),
				EndTime:     s.formatter.Format(occ.Add(duration)),
			}, records)
			records = append(records, rec)
			created = append(created, rec)
		}
		if len(created) == 0 {
			return nil, errNothingToSave
		}
		return records, nil
	})
	if err != nil && !errors.Is(err, errNothingToSave) {
		if !errors.Is(err, apperrors.ErrCourseNotFound) {
			s.logger.Error("按规则复制课程失败", zap.Int("id", id), zap.Error(err))
		}
		return nil, err
	}

	if truncated {
		s.logger.Warn("按规则复制达到上限，已截断",
			zap.Int("id", id),
			zap.Int("limit", s.repeatLimit))
	}
	s.logger.Info("课程已按规则复制", zap.Int("id", id), zap.Int("count", len(created)))

	return &dto.RepeatCourseResponse{
		SourceID:  id,
		Created:   s.toCourseResponses(created),
		Truncated: truncated,
	}, nil
}

// occurrences 取 start 之后的发生时间（截断到分钟），最多 repeatLimit 个
//
// 落在同一分钟内的发生时间只保留第一个，与源记录同一分钟的被跳过。
func (s *courseService) occurrences(rule *rrule.RRule, start time.Time) ([]time.Time, bool) {
	rule.DTStart(start)
	next := rule.Iterator()

	out := make([]time.Time, 0)
	last := start.Truncate(time.Minute)
	for {
		occ, ok := next()
		if !ok {
			return out, false
		}
		occ = occ.Truncate(time.Minute)
		if !occ.After(last) {
			continue
		}
		last = occ
		if len(out) == s.repeatLimit {
			return out, true
		}
		out = append(out, occ)
	}
}

// ────────────────────── 辅助函数 ──────────────────────

// parseListFilter 将查询参数转为日期范围与课程名
//
// 空课程名视为全部（AllCourses），不会匹配 course_name 为空的记录本身。
func parseListFilter(req *dto.CourseListRequest) (DateRange, string, error) {
	var dr DateRange
	if strings.TrimSpace(req.From) != "" {
		t, err := timefmt.ParseDate(req.From)
		if err != nil {
			return dr, "", err
		}
		dr.From = t
	}
	if strings.TrimSpace(req.To) != "" {
		t, err := timefmt.ParseDate(req.To)
		if err != nil {
			return dr, "", err
		}
		dr.To = t
	}

	course := req.Course
	if course == "" {
		course = AllCourses
	}
	return dr, course, nil
}

func isFiltered(dr DateRange, course string) bool {
	return !dr.From.IsZero() || !dr.To.IsZero() || course != AllCourses
}

func (s *courseService) toCourseResponse(rec model.CourseRecord) dto.CourseResponse {
	resp := courseResponseOf(rec)
	if !resp.Valid {
		s.logger.Debug("课程时间无法解析", zap.Int("id", rec.ID),
			zap.String("start_time", rec.StartTime),
			zap.String("end_time", rec.EndTime))
	}
	return resp
}

// courseResponseOf 时间无法解析时 Valid=false、Hours=0
func courseResponseOf(rec model.CourseRecord) dto.CourseResponse {
	hours, err := DurationHours(rec)
	return dto.CourseResponse{
		ID:          rec.ID,
		Label:       fmt.Sprintf("%d: %s", rec.ID, rec.CourseName),
		CourseName:  rec.CourseName,
		StudentName: rec.StudentName,
		TeacherName: rec.TeacherName,
		StartTime:   rec.StartTime,
		EndTime:     rec.EndTime,
		Hours:       hours,
		Valid:       err == nil,
	}
}

func (s *courseService) toCourseResponses(records []model.CourseRecord) []dto.CourseResponse {
	out := make([]dto.CourseResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, s.toCourseResponse(rec))
	}
	return out
}
