package dto

// ── 时数统计 ──

// HoursReportRequest 时数统计查询参数
type HoursReportRequest = CourseListRequest

// GroupTotal 分组合计
type GroupTotal struct {
	Key   string  `json:"key"`
	Hours float64 `json:"hours"`
}

// HoursReportResponse 时数统计响应
type HoursReportResponse struct {
	TotalHours     float64      `json:"total_hours"`
	TotalHoursText string       `json:"total_hours_text"` // 保留两位小数
	CourseCount    int          `json:"course_count"`
	SkippedCount   int          `json:"skipped_count"` // 时间无法解析而未计入的记录
	ByTeacher      []GroupTotal `json:"by_teacher"`
	ByCourse       []GroupTotal `json:"by_course"`
	ByStudent      []GroupTotal `json:"by_student"`
}

// SuggestionsResponse 输入联想候选
type SuggestionsResponse struct {
	CourseNames  []string `json:"course_names"`
	StudentNames []string `json:"student_names"`
	TeacherNames []string `json:"teacher_names"`
}
