package service

import (
	"fmt"
	"io"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/LanceHuang1/course-web-app/internal/model"
)

// ── ICS 解析 ────────────────────────────────────────────────
//
// 将 iCalendar (RFC 5545) 中的 VEVENT 转为课程字段：
//   - SUMMARY 形如 "课程(学生)" 时拆出课程名与学生名，否则整体作为课程名
//   - DESCRIPTION 中的 "Student:/学生:"、"Teacher:/老师:" 行优先于标题
//   - DTSTART/DTEND 按墙上时间读取，不做时区换算（含 Z 后缀的时间同样处理）
//   - RRULE 不展开：每个 VEVENT 只对应一条课程
// ─────────────────────────────────────────────────────────────

const icsMaxFileSize = 5 * 1024 * 1024 // 5MB

// icsDateTimeFormats DTSTART/DTEND 可接受的格式
var icsDateTimeFormats = []string{
	"20060102T150405Z",
	"20060102T150405",
	"20060102",
}

// parsedICSEvent 解析后的单个事件
type parsedICSEvent struct {
	Summary string
	Fields  model.CourseFields
	Start   time.Time
	End     time.Time
}

// readICS 读取上传内容，超过 icsMaxFileSize 视为错误
func readICS(r io.Reader) (*ics.Calendar, error) {
	data, err := io.ReadAll(io.LimitReader(r, icsMaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrICSParseFailed, err)
	}
	if len(data) > icsMaxFileSize {
		return nil, ErrICSTooLarge
	}

	cal, err := ics.ParseCalendar(strings.NewReader(string(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrICSParseFailed, err)
	}
	return cal, nil
}

// parseVEvent 解析单个 VEVENT；返回的 reason 非空时表示应跳过
func parseVEvent(evt *ics.VEvent) (parsedICSEvent, string) {
	var out parsedICSEvent

	if p := evt.GetProperty(ics.ComponentPropertySummary); p != nil {
		out.Summary = strings.TrimSpace(p.Value)
	}
	out.Fields.CourseName, out.Fields.StudentName = splitEventTitle(out.Summary)

	if p := evt.GetProperty(ics.ComponentPropertyDescription); p != nil {
		student, teacher := parseEventDescription(p.Value)
		if student != "" {
			out.Fields.StudentName = student
		}
		out.Fields.TeacherName = teacher
	}

	start, err := parseICSDateTime(evt, ics.ComponentPropertyDtStart)
	if err != nil {
		return out, "DTSTART 缺失或格式无效"
	}
	end, err := parseICSDateTime(evt, ics.ComponentPropertyDtEnd)
	if err != nil {
		return out, "DTEND 缺失或格式无效"
	}
	out.Start, out.End = start, end
	return out, ""
}

// parseICSDateTime 按 icsDateTimeFormats 顺序解析时间属性
func parseICSDateTime(evt *ics.VEvent, prop ics.ComponentProperty) (time.Time, error) {
	p := evt.GetProperty(prop)
	if p == nil {
		return time.Time{}, fmt.Errorf("缺少 %s", prop)
	}
	v := strings.TrimSpace(p.Value)
	for _, layout := range icsDateTimeFormats {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("无法解析 %s: %q", prop, v)
}

// splitEventTitle 拆分 "课程(学生)"；不符合该形式时整体作为课程名
func splitEventTitle(title string) (course, student string) {
	if !strings.HasSuffix(title, ")") {
		return title, ""
	}
	open := strings.LastIndex(title, "(")
	if open < 0 {
		return title, ""
	}
	return title[:open], title[open+1 : len(title)-1]
}

// parseEventDescription 读取描述中的学生与老师
func parseEventDescription(desc string) (student, teacher string) {
	for _, line := range strings.Split(desc, "\n") {
		key, value, ok := cutDescriptionLine(line)
		if !ok {
			continue
		}
		switch strings.ToLower(key) {
		case "student", "学生":
			student = value
		case "teacher", "老师":
			teacher = value
		}
	}
	return student, teacher
}

// cutDescriptionLine 支持半角与全角冒号
func cutDescriptionLine(line string) (string, string, bool) {
	line = strings.TrimSpace(line)
	for _, sep := range []string{":", "："} {
		if k, v, ok := strings.Cut(line, sep); ok {
			return strings.TrimSpace(k), strings.TrimSpace(v), true
		}
	}
	return "", "", false
}

// eventDescription 导出时写入的描述，与 parseEventDescription 对应
func eventDescription(rec model.CourseRecord) string {
	return "Student: " + rec.StudentName + "\nTeacher: " + rec.TeacherName
}
