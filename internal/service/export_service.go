package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/LanceHuang1/course-web-app/internal/dto"
	"github.com/LanceHuang1/course-web-app/internal/model"
)

// ── 导出模块业务错误 ──

var (
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

const (
	courseSheet = "课程"
	hoursSheet  = "时数统计"
)

// ExportService 导出业务接口
//
// 导出以 bytes.Buffer 返回，由 Handler 层设置响应头后写出。
type ExportService interface {
	// ExportCourses 按筛选条件导出课程列表与时数统计
	ExportCourses(ctx context.Context, req *dto.CourseListRequest) (*bytes.Buffer, string, error)
}

type exportService struct {
	store  *CourseStore
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService 创建 ExportService 实例
func NewExportService(store *CourseStore, logger *zap.Logger) ExportService {
	return &exportService{store: store, logger: logger, now: time.Now}
}

// ═══════════════════════════════════════════════════════════
// ExportCourses：导出为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - Sheet "课程"：ID | 课程 | 学生 | 老师 | 开始时间 | 结束时间 | 时数
//   - Sheet "时数统计"：合计，随后按老师、按课程分组
//
// 时间无法解析的记录在课程表中时数列留空，不计入统计。

func (s *exportService) ExportCourses(ctx context.Context, req *dto.CourseListRequest) (*bytes.Buffer, string, error) {
	dr, course, err := parseListFilter(req)
	if err != nil {
		return nil, "", err
	}

	records, err := s.store.load(ctx)
	if err != nil {
		s.logger.Error("读取课程失败", zap.Error(err))
		return nil, "", err
	}
	if isFiltered(dr, course) {
		records = Filter(records, dr, course)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := writeCourseSheet(f, records); err != nil {
		s.logger.Error("写入课程表失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	if err := writeHoursSheet(f, records); err != nil {
		s.logger.Error("写入时数统计失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	// 删除默认 Sheet1
	if err := f.DeleteSheet("Sheet1"); err != nil {
		s.logger.Error("删除默认工作表失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	if idx, err := f.GetSheetIndex(courseSheet); err == nil {
		f.SetActiveSheet(idx)
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("课程_%s.xlsx", s.now().Format("20060102"))
	return buf, filename, nil
}

// ── 工作表 ──

func writeCourseSheet(f *excelize.File, records []model.CourseRecord) error {
	if _, err := f.NewSheet(courseSheet); err != nil {
		return err
	}

	headerStyle, err := newHeaderStyle(f)
	if err != nil {
		return err
	}

	headers := []string{"ID", "课程", "学生", "老师", "开始时间", "结束时间", "时数"}
	for i, h := range headers {
		if err := f.SetCellValue(courseSheet, cell(colName(i), 1), h); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(courseSheet, "A1", cell(colName(len(headers)-1), 1), headerStyle); err != nil {
		return err
	}
	_ = f.SetColWidth(courseSheet, "A", "A", 8)
	_ = f.SetColWidth(courseSheet, "B", "D", 16)
	_ = f.SetColWidth(courseSheet, "E", "F", 20)
	_ = f.SetColWidth(courseSheet, "G", "G", 10)

	for i, rec := range records {
		row := i + 2
		values := []interface{}{rec.ID, rec.CourseName, rec.StudentName, rec.TeacherName, rec.StartTime, rec.EndTime}
		if h, err := DurationHours(rec); err == nil {
			values = append(values, roundHours(h))
		}
		for c, v := range values {
			if err := f.SetCellValue(courseSheet, cell(colName(c), row), v); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeHoursSheet(f *excelize.File, records []model.CourseRecord) error {
	if _, err := f.NewSheet(hoursSheet); err != nil {
		return err
	}
	headerStyle, err := newHeaderStyle(f)
	if err != nil {
		return err
	}
	_ = f.SetColWidth(hoursSheet, "A", "A", 20)
	_ = f.SetColWidth(hoursSheet, "B", "B", 12)

	row := 1
	put := func(a, b interface{}, header bool) error {
		if err := f.SetCellValue(hoursSheet, cell("A", row), a); err != nil {
			return err
		}
		if err := f.SetCellValue(hoursSheet, cell("B", row), b); err != nil {
			return err
		}
		if header {
			if err := f.SetCellStyle(hoursSheet, cell("A", row), cell("B", row), headerStyle); err != nil {
				return err
			}
		}
		row++
		return nil
	}

	if err := put("合计时数", roundHours(TotalHours(records)), true); err != nil {
		return err
	}

	groups := []struct {
		title string
		key   KeyFunc
	}{
		{"老师", ByTeacher},
		{"课程", ByCourse},
	}
	for _, g := range groups {
		row++ // 空行分隔
		if err := put(g.title, "时数", true); err != nil {
			return err
		}
		for _, t := range sortedTotals(GroupSum(records, g.key)) {
			if err := put(t.Key, roundHours(t.Hours), false); err != nil {
				return err
			}
		}
	}
	return nil
}

func newHeaderStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
}

// ── 辅助函数 ──

// roundHours 保留两位小数
func roundHours(h float64) float64 {
	return float64(int64(h*100+0.5)) / 100
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
