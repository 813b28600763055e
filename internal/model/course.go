package model

// CourseRecord 课程记录：对应 courses.json 数组中的一个对象
//
// 字段顺序即 JSON 输出顺序；时间为规范格式的文本（分钟精度，无时区）。
type CourseRecord struct {
	ID          int    `json:"id"`
	CourseName  string `json:"course_name"`
	StudentName string `json:"student_name"`
	TeacherName string `json:"teacher_name"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
}

// CourseFields 创建/编辑时由调用方提供的字段（不含 ID）
type CourseFields struct {
	CourseName  string
	StudentName string
	TeacherName string
	StartTime   string
	EndTime     string
}

// Fields 取出记录中除 ID 外的字段
func (c CourseRecord) Fields() CourseFields {
	return CourseFields{
		CourseName:  c.CourseName,
		StudentName: c.StudentName,
		TeacherName: c.TeacherName,
		StartTime:   c.StartTime,
		EndTime:     c.EndTime,
	}
}
