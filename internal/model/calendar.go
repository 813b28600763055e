package model

// CalendarEvent 由课程记录派生的只读日历事件
//
// Start/End 为 "2006-01-02T15:04:05" 形式的朴素时间戳。
type CalendarEvent struct {
	ID      int
	Title   string
	Start   string
	End     string
	Color   string
	Teacher string
	Student string
}
