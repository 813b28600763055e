package service

import (
	"time"

	"github.com/LanceHuang1/course-web-app/internal/model"
	"github.com/LanceHuang1/course-web-app/internal/repository"
	apperrors "github.com/LanceHuang1/course-web-app/pkg/errors"
	"github.com/LanceHuang1/course-web-app/pkg/timefmt"
)

// ── 校验与变更规则 ──────────────────────────────────────────
//
// 均为纯函数：不读写存储。调用方负责先校验、再变更、最后保存。
// ─────────────────────────────────────────────────────────────

// ValidateRange start >= end 时返回 RangeError
func ValidateRange(start, end time.Time) error {
	if !start.Before(end) {
		return &apperrors.RangeError{
			Start: timefmt.Format(start, timefmt.LayoutSlash),
			End:   timefmt.Format(end, timefmt.LayoutSlash),
		}
	}
	return nil
}

// NewCourse 以 NextID 分配 ID 并构建记录；不追加、不保存
func NewCourse(fields model.CourseFields, records []model.CourseRecord) model.CourseRecord {
	return model.CourseRecord{
		ID:          repository.NextID(records),
		CourseName:  fields.CourseName,
		StudentName: fields.StudentName,
		TeacherName: fields.TeacherName,
		StartTime:   fields.StartTime,
		EndTime:     fields.EndTime,
	}
}

// ApplyUpdate 保留 ID，其余字段整体替换
func ApplyUpdate(record model.CourseRecord, fields model.CourseFields) model.CourseRecord {
	return model.CourseRecord{
		ID:          record.ID,
		CourseName:  fields.CourseName,
		StudentName: fields.StudentName,
		TeacherName: fields.TeacherName,
		StartTime:   fields.StartTime,
		EndTime:     fields.EndTime,
	}
}

// RemoveCourse 删除第一条匹配 id 的记录；不存在时原样返回
func RemoveCourse(records []model.CourseRecord, id int) []model.CourseRecord {
	idx := indexOfCourse(records, id)
	if idx < 0 {
		return records
	}
	out := make([]model.CourseRecord, 0, len(records)-1)
	out = append(out, records[:idx]...)
	return append(out, records[idx+1:]...)
}

func indexOfCourse(records []model.CourseRecord, id int) int {
	for i := range records {
		if records[i].ID == id {
			return i
		}
	}
	return -1
}

// normalizeFields 解析并校验起止时间，返回规范格式的字段
func normalizeFields(f timefmt.Formatter, fields model.CourseFields) (model.CourseFields, error) {
	start, startT, err := f.Normalize(fields.StartTime)
	if err != nil {
		return fields, err
	}
	end, endT, err := f.Normalize(fields.EndTime)
	if err != nil {
		return fields, err
	}
	if err := ValidateRange(startT, endT); err != nil {
		return fields, err
	}
	fields.StartTime = start
	fields.EndTime = end
	return fields, nil
}
