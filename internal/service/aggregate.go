package service

import (
	"sort"
	"strings"
	"time"

	"github.com/LanceHuang1/course-web-app/internal/model"
	"github.com/LanceHuang1/course-web-app/pkg/timefmt"
)

// AllCourses 课程名筛选的"全部课程"哨兵值
const AllCourses = "*"

// DateRange 闭区间日期范围；零值的一端表示不限
type DateRange struct {
	From time.Time
	To   time.Time
}

// Contains 判断 t 所在日期是否落在区间内
func (r DateRange) Contains(t time.Time) bool {
	d := dateOf(t)
	if !r.From.IsZero() && d.Before(dateOf(r.From)) {
		return false
	}
	if !r.To.IsZero() && d.After(dateOf(r.To)) {
		return false
	}
	return true
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// recordSpan 解析记录的起止时间
func recordSpan(rec model.CourseRecord) (time.Time, time.Time, error) {
	start, err := timefmt.Parse(rec.StartTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := timefmt.Parse(rec.EndTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

// DurationHours 返回课程时长（小时）
//
// 时间无法解析时返回 FormatError；手工编辑导致 end <= start 时按 0 计。
func DurationHours(rec model.CourseRecord) (float64, error) {
	start, end, err := recordSpan(rec)
	if err != nil {
		return 0, err
	}
	if !end.After(start) {
		return 0, nil
	}
	return end.Sub(start).Seconds() / 3600, nil
}

// TotalHours 合计时数，跳过无法解析的记录
func TotalHours(records []model.CourseRecord) float64 {
	total := 0.0
	for _, rec := range records {
		h, err := DurationHours(rec)
		if err != nil {
			continue
		}
		total += h
	}
	return total
}

// Filter 按开始日期与课程名筛选，保持输入顺序
func Filter(records []model.CourseRecord, dr DateRange, course string) []model.CourseRecord {
	out := make([]model.CourseRecord, 0, len(records))
	for _, rec := range records {
		if course != AllCourses && rec.CourseName != course {
			continue
		}
		start, err := timefmt.Parse(rec.StartTime)
		if err != nil {
			continue
		}
		if !dr.Contains(start) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// KeyFunc 分组键
type KeyFunc func(model.CourseRecord) string

var (
	ByTeacher KeyFunc = func(r model.CourseRecord) string { return r.TeacherName }
	ByCourse  KeyFunc = func(r model.CourseRecord) string { return r.CourseName }
	ByStudent KeyFunc = func(r model.CourseRecord) string { return r.StudentName }
)

// GroupSum 按 key 汇总时数；无法解析的记录不计入
func GroupSum(records []model.CourseRecord, key KeyFunc) map[string]float64 {
	sums := make(map[string]float64)
	for _, rec := range records {
		h, err := DurationHours(rec)
		if err != nil {
			continue
		}
		sums[key(rec)] += h
	}
	return sums
}

// DistinctCourseNames 排序去重后的课程名
func DistinctCourseNames(records []model.CourseRecord) []string {
	return distinct(records, ByCourse)
}

// DistinctStudentNames 排序去重后的学生名
func DistinctStudentNames(records []model.CourseRecord) []string {
	return distinct(records, ByStudent)
}

// DistinctTeacherNames 排序去重后的老师名
func DistinctTeacherNames(records []model.CourseRecord) []string {
	return distinct(records, ByTeacher)
}

// distinct 空白值不作为候选
func distinct(records []model.CourseRecord, key KeyFunc) []string {
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, rec := range records {
		v := key(rec)
		if strings.TrimSpace(v) == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
