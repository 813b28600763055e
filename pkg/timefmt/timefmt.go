package timefmt

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/LanceHuang1/course-web-app/pkg/errors"
)

// ── 课程时间格式 ──────────────────────────────────────────────
//
// 存储中的时间为分钟精度的朴素时间（无时区），历史上存在两种分隔符。
// 解析时按 Layouts 的固定顺序逐个尝试，第一个成功即返回；
// 因此 "2024/01/01 09:00" 与 "2024-01-01 09:00" 都能读入。
// ─────────────────────────────────────────────────────────────

const (
	LayoutSlash = "2006/01/02 15:04"
	LayoutDash  = "2006-01-02 15:04"

	DateSlash = "2006/01/02"
	DateDash  = "2006-01-02"

	// ISOLayout 日历事件使用的交换格式
	ISOLayout = "2006-01-02T15:04:05"
)

// Layouts 解析时尝试的顺序
var Layouts = []string{LayoutSlash, LayoutDash}

// DateLayouts 日期筛选参数的解析顺序
var DateLayouts = []string{DateSlash, DateDash}

// Parse 按 Layouts 顺序解析时间字符串
func Parse(s string) (time.Time, error) {
	return parseWith(Layouts, s)
}

// ParseDate 解析仅包含日期的字符串
func ParseDate(s string) (time.Time, error) {
	return parseWith(DateLayouts, s)
}

func parseWith(layouts []string, s string) (time.Time, error) {
	v := strings.TrimSpace(s)
	for _, layout := range layouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &apperrors.FormatError{Value: s}
}

// Format 以分钟精度输出，秒及以下截断
func Format(t time.Time, layout string) string {
	return t.Truncate(time.Minute).Format(layout)
}

// ISO 输出日历组件可直接使用的时间戳
func ISO(t time.Time) string {
	return t.Format(ISOLayout)
}

// LayoutByName 将配置中的名称映射为布局
func LayoutByName(name string) (string, error) {
	switch strings.ToLower(name) {
	case "", "slash":
		return LayoutSlash, nil
	case "dash":
		return LayoutDash, nil
	default:
		return "", fmt.Errorf("未知的时间格式名称 %q（可选 slash | dash）", name)
	}
}

// Formatter 绑定存储的规范布局
type Formatter struct {
	layout string
}

// NewFormatter 创建 Formatter；layout 为空时使用 LayoutSlash
func NewFormatter(layout string) Formatter {
	if layout == "" {
		layout = LayoutSlash
	}
	return Formatter{layout: layout}
}

// Layout 返回规范布局
func (f Formatter) Layout() string { return f.layout }

// Format 以规范布局输出
func (f Formatter) Format(t time.Time) string {
	return Format(t, f.layout)
}

// Normalize 解析任意已知格式后以规范布局重新输出
func (f Formatter) Normalize(s string) (string, time.Time, error) {
	t, err := Parse(s)
	if err != nil {
		return "", time.Time{}, err
	}
	t = t.Truncate(time.Minute)
	return f.Format(t), t, nil
}
