package dto

import "github.com/LanceHuang1/course-web-app/internal/model"

// ── 课程模块 DTO ──

// CreateCourseRequest 新增课程请求
//
// 名称字段允许为空；时间接受 "YYYY/MM/DD HH:MM" 或 "YYYY-MM-DD HH:MM"。
type CreateCourseRequest struct {
	CourseName  string `json:"course_name"  binding:"max=100"`
	StudentName string `json:"student_name" binding:"max=100"`
	TeacherName string `json:"teacher_name" binding:"max=100"`
	StartTime   string `json:"start_time"   binding:"required"`
	EndTime     string `json:"end_time"     binding:"required"`
}

// Fields 转为模型字段
func (r *CreateCourseRequest) Fields() model.CourseFields {
	return model.CourseFields{
		CourseName:  r.CourseName,
		StudentName: r.StudentName,
		TeacherName: r.TeacherName,
		StartTime:   r.StartTime,
		EndTime:     r.EndTime,
	}
}

// UpdateCourseRequest 编辑课程请求：除 ID 外全部字段整体替换
type UpdateCourseRequest = CreateCourseRequest

// RescheduleCourseRequest 日历拖拽/缩放后仅更新起止时间
type RescheduleCourseRequest struct {
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time"   binding:"required"`
}

// RepeatCourseRequest 按 RRULE 复制课程
type RepeatCourseRequest struct {
	RRule string `json:"rrule" binding:"required,max=200"` // 如 FREQ=WEEKLY;COUNT=4
}

// CourseListRequest 课程列表/报表筛选参数
//
// From/To 为闭区间日期（YYYY/MM/DD 或 YYYY-MM-DD），留空表示不限；
// Course 留空或为 "*" 表示全部课程。因此课程名为空的记录无法单独筛选，
// 只会随"全部课程"一起返回。
type CourseListRequest struct {
	From   string `form:"from"`
	To     string `form:"to"`
	Course string `form:"course"`
}

// CourseResponse 课程信息响应
type CourseResponse struct {
	ID          int     `json:"id"`
	Label       string  `json:"label"` // 下拉选择显示用 "<id>: <course_name>"
	CourseName  string  `json:"course_name"`
	StudentName string  `json:"student_name"`
	TeacherName string  `json:"teacher_name"`
	StartTime   string  `json:"start_time"`
	EndTime     string  `json:"end_time"`
	Hours       float64 `json:"hours"`
	Valid       bool    `json:"valid"` // 时间无法解析时为 false
}

// CourseFormFields 表单字段
type CourseFormFields struct {
	CourseName  string `json:"course_name"`
	StudentName string `json:"student_name"`
	TeacherName string `json:"teacher_name"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
}

// PendingAction 调用方持有的待提交表单（如"复制模式"）
//
// 服务端不保存该值；前端提交时走普通的创建接口。
type PendingAction struct {
	Kind     string           `json:"kind"` // copy
	SourceID int              `json:"source_id"`
	Fields   CourseFormFields `json:"fields"`
}

// RepeatCourseResponse 按规则复制的结果
type RepeatCourseResponse struct {
	SourceID  int              `json:"source_id"`
	Created   []CourseResponse `json:"created"`
	Truncated bool             `json:"truncated"` // 达到复制上限被截断
}
