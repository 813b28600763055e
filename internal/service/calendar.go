package service

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/LanceHuang1/course-web-app/internal/model"
	"github.com/LanceHuang1/course-web-app/pkg/timefmt"
)

// coursePalette 浅色背景下可读的低饱和度配色
var coursePalette = []string{
	"#A3C4F3", // 雾蓝
	"#90DBF4", // 浅青
	"#8EECF5", // 水色
	"#98F5E1", // 薄荷
	"#B9FBC0", // 嫩绿
	"#FBF8CC", // 奶黄
	"#FDE4CF", // 杏色
	"#FFCFD2", // 浅粉
	"#F1C0E8", // 丁香
	"#CFBAF0", // 淡紫
	"#D8E2DC", // 灰绿
	"#E2CFC4", // 米褐
}

// DeterministicColor 由课程名的 SHA-256 决定颜色，同名课程颜色恒定
func DeterministicColor(name string) string {
	sum := sha256.Sum256([]byte(name))
	idx := binary.BigEndian.Uint32(sum[:4]) % uint32(len(coursePalette))
	return coursePalette[idx]
}

// EventTitle 日历事件标题 "<课程>(<学生>)"
func EventTitle(rec model.CourseRecord) string {
	return rec.CourseName + "(" + rec.StudentName + ")"
}

// ToEvents 将课程记录映射为日历事件；时间无法解析的记录被丢弃
func ToEvents(records []model.CourseRecord) []model.CalendarEvent {
	events := make([]model.CalendarEvent, 0, len(records))
	for _, rec := range records {
		start, end, err := recordSpan(rec)
		if err != nil {
			continue
		}
		events = append(events, model.CalendarEvent{
			ID:      rec.ID,
			Title:   EventTitle(rec),
			Start:   timefmt.ISO(start),
			End:     timefmt.ISO(end),
			Color:   DeterministicColor(rec.CourseName),
			Teacher: rec.TeacherName,
			Student: rec.StudentName,
		})
	}
	return events
}
