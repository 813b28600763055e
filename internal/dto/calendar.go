package dto

// ── 日历模块 DTO ──

// CalendarEventResponse 日历事件（前端日历组件直接使用）
type CalendarEventResponse struct {
	ID            int                `json:"id"`
	Title         string             `json:"title"`
	Start         string             `json:"start"`
	End           string             `json:"end"`
	Color         string             `json:"color"`
	ExtendedProps CalendarEventProps `json:"extendedProps"`
}

// CalendarEventProps 事件附加信息
type CalendarEventProps struct {
	Teacher string `json:"teacher"`
	Student string `json:"student"`
}

// ImportICSResponse ICS 导入响应
type ImportICSResponse struct {
	ImportedCount int              `json:"imported_count"`
	SkippedCount  int              `json:"skipped_count"`
	Courses       []CourseResponse `json:"courses"`
	Skipped       []SkippedEvent   `json:"skipped,omitempty"`
}

// SkippedEvent 未能导入的事件及原因
type SkippedEvent struct {
	Summary string `json:"summary"`
	Reason  string `json:"reason"`
}
