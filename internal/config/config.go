// Package config 负责加载和管理应用程序的配置
// 使用 viper 库支持 YAML 配置文件和环境变量覆盖
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// 运行环境常量
const (
	EnvDev  = "dev"  // 开发环境
	EnvProd = "prod" // 生产环境
)

// Config 是应用程序的根配置结构
// 包含所有子配置模块
type Config struct {
	Env       string          `mapstructure:"env"`        // 运行环境: dev / prod
	Server    ServerConfig    `mapstructure:"server"`     // 服务器配置
	Database  DatabaseConfig  `mapstructure:"database"`   // 数据库配置
	Redis     RedisConfig     `mapstructure:"redis"`      // Redis 配置
	Share     ShareConfig     `mapstructure:"share"`      // 分享链接配置
	AI        AIConfig        `mapstructure:"ai"`         // AI 服务配置
	Reader    ReaderConfig    `mapstructure:"reader"`     // 网页读取配置
	Webhook   WebhookConfig   `mapstructure:"webhook"`    // Webhook 投递配置
	RateLimit RateLimitConfig `mapstructure:"rate_limit"` // 限流配置
	CORS      CORSConfig      `mapstructure:"cors"`       // 跨域配置
	Log       LogConfig       `mapstructure:"log"`        // 日志配置
}

// ServerConfig 服务器相关配置
type ServerConfig struct {
	Port         int           `mapstructure:"port"`          // 监听端口，默认 3001
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`  // 读超时
	WriteTimeout time.Duration `mapstructure:"write_timeout"` // 写超时，分析请求会调用 LLM，需要留足时间
}

// DatabaseConfig 数据库连接配置
type DatabaseConfig struct {
	URL          string `mapstructure:"url"`            // 连接串，来自 DATABASE_URL
	MaxIdleConns int    `mapstructure:"max_idle_conns"` // 最大空闲连接数
	MaxOpenConns int    `mapstructure:"max_open_conns"` // 最大打开连接数
	MaxLifetime  int    `mapstructure:"max_lifetime"`   // 连接最大生命周期（秒）
}

// RedisConfig Redis 连接配置
type RedisConfig struct {
	Host     string `mapstructure:"host"`      // Redis 主机地址
	Port     int    `mapstructure:"port"`      // Redis 端口
	Username string `mapstructure:"username"`  // Redis 用户名
	Password string `mapstructure:"password"`  // Redis 密码
	DB       int    `mapstructure:"db"`        // 数据库索引 (0-15)
	PoolSize int    `mapstructure:"pool_size"` // 连接池大小
}

// ShareConfig 分享链接配置
type ShareConfig struct {
	Secret string        `mapstructure:"secret"` // 签名密钥，至少32字符
	Expire time.Duration `mapstructure:"expire"` // 分享链接有效期
}

// AIConfig AI 服务配置
type AIConfig struct {
	APIKey  string        `mapstructure:"api_key"`  // OpenAI API Key
	BaseURL string        `mapstructure:"base_url"` // 兼容 OpenAI 协议的服务地址（可选）
	Model   string        `mapstructure:"model"`    // 模型名称
	Timeout time.Duration `mapstructure:"timeout"`  // 单次调用超时
}

// ReaderConfig 网页读取配置
type ReaderConfig struct {
	BaseURL         string        `mapstructure:"base_url"`          // 阅读代理地址，目标 URL 直接拼接在后面
	Timeout         time.Duration `mapstructure:"timeout"`           // 抓取超时
	MaxContentChars int           `mapstructure:"max_content_chars"` // 送入模型的最大字符数
}

// WebhookConfig Webhook 投递配置
type WebhookConfig struct {
	Timeout time.Duration `mapstructure:"timeout"` // 单次投递超时
}

// RateLimitConfig 限流配置
// 仅作用于会调用 LLM 的接口
type RateLimitConfig struct {
	Requests int           `mapstructure:"requests"` // 窗口内允许的请求数，0 表示不限流
	Window   time.Duration `mapstructure:"window"`   // 窗口长度
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"` // 允许的来源，"*" 表示全部
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`  // 日志级别: debug/info/warn/error
	Format string `mapstructure:"format"` // 日志格式: json/text
}

// IsProd 是否为生产环境
func (c *Config) IsProd() bool {
	return c.Env == EnvProd
}

// Validate 校验必填配置
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return errors.New("database.url (DATABASE_URL) is required")
	}
	if c.Env != EnvDev && c.Env != EnvProd {
		return fmt.Errorf("env must be %q or %q, got %q", EnvDev, EnvProd, c.Env)
	}
	if c.IsProd() && len(c.Share.Secret) < 32 {
		return errors.New("share.secret must be at least 32 characters in prod")
	}
	return nil
}

// Load 从指定路径加载配置文件
// 支持环境变量覆盖配置项，工作目录下的 .env 文件会先被加载
// 参数:
//   - configPath: 配置文件目录路径 (如 "./configs")
//
// 返回:
//   - *Config: 配置对象
//   - error: 如果加载失败则返回错误
func Load(configPath string) (*Config, error) {
	// .env 不存在时忽略
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)

	// 将环境变量中的 _ 映射到配置的 .
	// 例如: REDIS_HOST -> redis.host
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	bindEnvVariables(v)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// 如果配置文件不存在，继续使用默认值和环境变量
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.Env = strings.ToLower(strings.TrimSpace(cfg.Env))

	return &cfg, nil
}

// bindEnvVariables 绑定环境变量到配置项
func bindEnvVariables(v *viper.Viper) {
	v.BindEnv("env", "ENV")

	// 服务器配置
	v.BindEnv("server.port", "PORT", "SERVER_PORT")

	// 数据库配置
	v.BindEnv("database.url", "DATABASE_URL")

	// Redis 配置
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.username", "REDIS_USERNAME")
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	// 分享配置
	v.BindEnv("share.secret", "SHARE_SECRET")

	// AI 配置
	v.BindEnv("ai.api_key", "OPENAI_API_KEY")
	v.BindEnv("ai.base_url", "OPENAI_BASE_URL")
	v.BindEnv("ai.model", "OPENAI_MODEL")

	v.BindEnv("reader.base_url", "READER_BASE_URL")

	v.BindEnv("cors.allowed_origins", "CORS_ALLOWED_ORIGINS")

	v.BindEnv("log.level", "LOG_LEVEL")
	v.BindEnv("log.format", "LOG_FORMAT")
}

// setDefaults 设置配置项的默认值
func setDefaults(v *viper.Viper) {
	v.SetDefault("env", EnvDev)

	v.SetDefault("server.port", 3001)
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "120s")

	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.max_lifetime", 3600)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 100)

	// 开发环境默认密钥，生产环境必须覆盖（Validate 会检查）
	v.SetDefault("share.secret", "insight-dev-share-secret")
	v.SetDefault("share.expire", "720h")

	v.SetDefault("ai.model", "gpt-4o-mini")
	v.SetDefault("ai.timeout", "90s")

	v.SetDefault("reader.base_url", "https://r.jina.ai/")
	v.SetDefault("reader.timeout", "30s")
	v.SetDefault("reader.max_content_chars", 20000)

	v.SetDefault("webhook.timeout", "10s")

	v.SetDefault("rate_limit.requests", 20)
	v.SetDefault("rate_limit.window", "1m")

	v.SetDefault("cors.allowed_origins", []string{"*"})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}
