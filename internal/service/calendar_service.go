package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/LanceHuang1/course-web-app/internal/dto"
	"github.com/LanceHuang1/course-web-app/internal/model"
	"github.com/LanceHuang1/course-web-app/pkg/timefmt"
)

// ── 日历模块业务错误 ──

var (
	ErrICSParseFailed = errors.New("ICS 文件解析失败")
	ErrICSEmpty       = errors.New("ICS 文件中没有事件")
	ErrICSTooLarge    = errors.New("ICS 文件超过 5MB")
)

// icsUIDNamespace 导出事件 UID 的命名空间；同一课程 ID 每次导出得到相同 UID
var icsUIDNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("course-web-app/courses"))

// icsFloatingLayout 不带时区的 DATE-TIME
const icsFloatingLayout = "20060102T150405"

// CalendarService 日历视图、ICS 导入导出
type CalendarService interface {
	Events(ctx context.Context, req *dto.CourseListRequest) ([]dto.CalendarEventResponse, error)
	ExportICS(ctx context.Context) ([]byte, string, error)
	ImportICS(ctx context.Context, r io.Reader) (*dto.ImportICSResponse, error)
}

// CalendarOptions 导出日历的元信息
type CalendarOptions struct {
	Name      string
	ProductID string
}

type calendarService struct {
	store     *CourseStore
	formatter timefmt.Formatter
	opts      CalendarOptions
	logger    *zap.Logger
	now       func() time.Time
}

// NewCalendarService 创建 CalendarService 实例
func NewCalendarService(store *CourseStore, formatter timefmt.Formatter, opts CalendarOptions, logger *zap.Logger) CalendarService {
	return &calendarService{
		store:     store,
		formatter: formatter,
		opts:      opts,
		logger:    logger,
		now:       time.Now,
	}
}

// ────────────────────── Events ──────────────────────

func (s *calendarService) Events(ctx context.Context, req *dto.CourseListRequest) ([]dto.CalendarEventResponse, error) {
	dr, course, err := parseListFilter(req)
	if err != nil {
		return nil, err
	}

	records, err := s.store.load(ctx)
	if err != nil {
		s.logger.Error("读取课程失败", zap.Error(err))
		return nil, err
	}
	if isFiltered(dr, course) {
		records = Filter(records, dr, course)
	}

	events := ToEvents(records)
	if dropped := len(records) - len(events); dropped > 0 {
		s.logger.Debug("日历视图跳过时间无法解析的课程", zap.Int("count", dropped))
	}

	out := make([]dto.CalendarEventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, toCalendarEventResponse(e))
	}
	return out, nil
}

// ═══════════════════════════════════════════════════════════
// ExportICS：导出全部课程为 iCalendar
// ═══════════════════════════════════════════════════════════
//
// 时间以浮动时间（无 TZID、无 Z）写出，与存储中的朴素时间一致。
// 返回值：内容, 建议文件名, error

func (s *calendarService) ExportICS(ctx context.Context) ([]byte, string, error) {
	records, err := s.store.load(ctx)
	if err != nil {
		s.logger.Error("读取课程失败", zap.Error(err))
		return nil, "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(s.opts.ProductID)
	cal.SetXWRCalName(s.opts.Name)

	stamp := s.now().UTC()
	exported := 0
	for _, rec := range records {
		start, end, err := recordSpan(rec)
		if err != nil {
			continue
		}
		evt := cal.AddEvent(courseUID(rec.ID))
		evt.SetDtStampTime(stamp)
		evt.SetProperty(ics.ComponentPropertyDtStart, start.Format(icsFloatingLayout))
		evt.SetProperty(ics.ComponentPropertyDtEnd, end.Format(icsFloatingLayout))
		evt.SetSummary(EventTitle(rec))
		evt.SetDescription(eventDescription(rec))
		evt.SetColor(DeterministicColor(rec.CourseName))
		exported++
	}

	s.logger.Info("导出 ICS", zap.Int("events", exported), zap.Int("skipped", len(records)-exported))

	filename := fmt.Sprintf("%s_%s.ics", s.opts.Name, s.now().Format("20060102"))
	return []byte(cal.Serialize()), filename, nil
}

// ═══════════════════════════════════════════════════════════
// ImportICS：将 ICS 事件导入为课程
// ═══════════════════════════════════════════════════════════
//
// 每个事件单独校验，无效事件跳过并附原因；有效事件一次性追加并保存。
// 文件本身无法解析或不含任何事件时返回错误，不写存储。

func (s *calendarService) ImportICS(ctx context.Context, r io.Reader) (*dto.ImportICSResponse, error) {
	cal, err := readICS(r)
	if err != nil {
		return nil, err
	}
	vevents := cal.Events()
	if len(vevents) == 0 {
		return nil, ErrICSEmpty
	}

	resp := &dto.ImportICSResponse{
		Courses: make([]dto.CourseResponse, 0),
		Skipped: make([]dto.SkippedEvent, 0),
	}

	valid := make([]model.CourseFields, 0, len(vevents))
	for _, ve := range vevents {
		parsed, reason := parseVEvent(ve)
		if reason == "" {
			// 存储精度为分钟，先截断再校验
			parsed.Start = parsed.Start.Truncate(time.Minute)
			parsed.End = parsed.End.Truncate(time.Minute)
			if err := ValidateRange(parsed.Start, parsed.End); err != nil {
				reason = err.Error()
			}
		}
		if reason != "" {
			resp.Skipped = append(resp.Skipped, dto.SkippedEvent{Summary: parsed.Summary, Reason: reason})
			continue
		}

		fields := parsed.Fields
		fields.StartTime = s.formatter.Format(parsed.Start)
		fields.EndTime = s.formatter.Format(parsed.End)
		valid = append(valid, fields)
	}
	resp.SkippedCount = len(resp.Skipped)

	if len(valid) == 0 {
		s.logger.Warn("ICS 中没有可导入的事件", zap.Int("skipped", resp.SkippedCount))
		return resp, nil
	}

	var created []model.CourseRecord
	err = s.store.mutate(ctx, func(records []model.CourseRecord) ([]model.CourseRecord, error) {
		for _, f := range valid {
			rec := NewCourse(f, records)
			records = append(records, rec)
			created = append(created, rec)
		}
		return records, nil
	})
	if err != nil {
		s.logger.Error("保存导入课程失败", zap.Error(err))
		return nil, err
	}

	for _, rec := range created {
		resp.Courses = append(resp.Courses, courseResponseOf(rec))
	}
	resp.ImportedCount = len(created)

	s.logger.Info("ICS 导入完成",
		zap.Int("imported", resp.ImportedCount),
		zap.Int("skipped", resp.SkippedCount))
	return resp, nil
}

// ── 辅助函数 ──

func courseUID(id int) string {
	return uuid.NewSHA1(icsUIDNamespace, []byte(strconv.Itoa(id))).String()
}

func toCalendarEventResponse(e model.CalendarEvent) dto.CalendarEventResponse {
	return dto.CalendarEventResponse{
		ID:    e.ID,
		Title: e.Title,
		Start: e.Start,
		End:   e.End,
		Color: e.Color,
		ExtendedProps: dto.CalendarEventProps{
			Teacher: e.Teacher,
			Student: e.Student,
		},
	}
}
