package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/LanceHuang1/course-web-app/pkg/timefmt"
)

// Config 应用全局配置结构体
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Store     StoreConfig     `mapstructure:"store"`
	Redis     RedisConfig     `mapstructure:"redis"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Log       LogConfig       `mapstructure:"log"`
	Calendar  CalendarConfig  `mapstructure:"calendar"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port           int        `mapstructure:"port"`
	BodyLimitBytes int64      `mapstructure:"body_limit_bytes"`
	CORS           CORSConfig `mapstructure:"cors"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// StoreConfig 课程记录文件配置
type StoreConfig struct {
	Path       string `mapstructure:"path"`
	TimeLayout string `mapstructure:"time_layout"` // slash | dash，写入时使用的规范格式
}

// Layout 返回写入时使用的时间布局（Validate 已保证名称合法）
func (c *StoreConfig) Layout() string {
	layout, err := timefmt.LayoutByName(c.TimeLayout)
	if err != nil {
		return timefmt.LayoutSlash
	}
	return layout
}

// RedisConfig Redis 配置；仅用于限流，未启用或不可用时限流放行
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// RateLimitConfig 写操作滑动窗口限流
type RateLimitConfig struct {
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CalendarConfig 日历导出与重复规则配置
type CalendarConfig struct {
	Name        string `mapstructure:"name"`
	ProductID   string `mapstructure:"product_id"`
	RepeatLimit int    `mapstructure:"repeat_limit"` // 单次按规则复制的最大条数
}

// Load 从配置文件与环境变量加载配置
// 优先级：环境变量 > 配置文件 > 默认值
func Load(path string) (*Config, error) {
	v := viper.New()

	// ── 默认值 ──
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.body_limit_bytes", 10<<20)
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})

	v.SetDefault("store.path", "courses.json")
	v.SetDefault("store.time_layout", "slash")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("rate_limit.requests", 60)
	v.SetDefault("rate_limit.window", "1m")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("calendar.name", "课程表")
	v.SetDefault("calendar.product_id", "-//course-web-app//课程表//ZH")
	v.SetDefault("calendar.repeat_limit", 52)

	// ── 配置文件 ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── 环境变量 ──
	v.SetEnvPrefix("COURSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		// 配置文件不存在时仅依赖默认值和环境变量
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate 校验关键配置项
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("配置校验失败: server.port 必须在 1-65535 之间")
	}
	if strings.TrimSpace(c.Store.Path) == "" {
		return fmt.Errorf("配置校验失败: store.path 不能为空")
	}
	if _, err := timefmt.LayoutByName(c.Store.TimeLayout); err != nil {
		return fmt.Errorf("配置校验失败: store.time_layout: %w", err)
	}
	if c.Calendar.RepeatLimit <= 0 {
		return fmt.Errorf("配置校验失败: calendar.repeat_limit 必须大于 0")
	}
	if c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0 {
		return fmt.Errorf("配置校验失败: rate_limit.requests 与 rate_limit.window 必须大于 0")
	}
	return nil
}
