package errors

import (
	"errors"
	"fmt"
)

// ── 错误种类（供 errors.Is 判断） ──

var (
	// ErrInvalidTimeFormat 时间字符串不符合任何已知格式
	ErrInvalidTimeFormat = errors.New("时间格式错误")
	// ErrInvalidRange 结束时间不晚于开始时间
	ErrInvalidRange = errors.New("结束时间必须晚于开始时间")
	// ErrCourseNotFound 课程记录不存在
	ErrCourseNotFound = errors.New("课程不存在")
)

// FormatError 时间解析失败，Value 为原始输入
type FormatError struct {
	Value string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s: %q", ErrInvalidTimeFormat.Error(), e.Value)
}

// Is 使 errors.Is(err, ErrInvalidTimeFormat) 成立
func (e *FormatError) Is(target error) bool { return target == ErrInvalidTimeFormat }

// RangeError 时间区间无效（start >= end）
type RangeError struct {
	Start string
	End   string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s: %s ~ %s", ErrInvalidRange.Error(), e.Start, e.End)
}

func (e *RangeError) Is(target error) bool { return target == ErrInvalidRange }

// NotFoundError 按 ID 引用的课程不存在
type NotFoundError struct {
	ID int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: id=%d", ErrCourseNotFound.Error(), e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrCourseNotFound }
