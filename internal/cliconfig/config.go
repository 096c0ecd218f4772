// Package cliconfig 管理 CLI 客户端配置
// 配置保存在 ~/.insight/config.yaml
package cliconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// DefaultServerURL 默认服务器地址
const DefaultServerURL = "http://localhost:3001"

// Config CLI 配置结构
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	State  StateConfig  `mapstructure:"state"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	URL string `mapstructure:"url"` // HTTP API 地址
}

// StateConfig 本地状态
type StateConfig struct {
	LastConversation string `mapstructure:"last_conversation"` // 最近一次使用的对话 ID
}

var (
	file       *viper.Viper // 只包含配置文件中的内容，写回时使用
	cfg        *Config      // 文件内容加上本次运行的覆盖
	configPath string
)

// Init 初始化配置，配置目录为 ~/.insight
func Init() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("获取用户目录失败: %w", err)
	}
	return InitAt(filepath.Join(home, ".insight"))
}

// InitAt 使用指定目录初始化配置
// 配置文件不存在时写入默认配置
func InitAt(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("创建配置目录失败: %w", err)
	}
	configPath = filepath.Join(dir, "config.yaml")

	file = viper.New()
	file.SetConfigFile(configPath)
	file.SetConfigType("yaml")

	file.SetDefault("server.url", DefaultServerURL)
	file.SetDefault("state.last_conversation", "")

	if err := file.ReadInConfig(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return fmt.Errorf("读取配置失败: %w", err)
			}
		}
		if err := file.WriteConfigAs(configPath); err != nil {
			return fmt.Errorf("写入默认配置失败: %w", err)
		}
	}

	cfg = &Config{}
	if err := file.Unmarshal(cfg); err != nil {
		return fmt.Errorf("解析配置失败: %w", err)
	}

	// INSIGHT_SERVER_URL 只覆盖本次运行，不写回文件
	env := viper.New()
	env.SetEnvPrefix("insight")
	env.BindEnv("server_url")
	if u := env.GetString("server_url"); u != "" {
		SetServerURL(u)
	}
	return nil
}

// Get 获取配置
func Get() *Config {
	return cfg
}

// Path 配置文件路径
func Path() string {
	return configPath
}

// GetServerURL 获取服务器地址
func GetServerURL() string {
	if cfg == nil || cfg.Server.URL == "" {
		return DefaultServerURL
	}
	return cfg.Server.URL
}

// SetServerURL 设置服务器地址，只在本次运行生效
func SetServerURL(url string) {
	if cfg != nil {
		cfg.Server.URL = strings.TrimRight(url, "/")
	}
}

// GetLastConversation 最近一次使用的对话 ID
func GetLastConversation() string {
	if cfg == nil {
		return ""
	}
	return cfg.State.LastConversation
}

// SaveLastConversation 记录最近一次使用的对话
func SaveLastConversation(id string) error {
	if file == nil {
		return errors.New("配置未初始化")
	}
	file.Set("state.last_conversation", id)
	if cfg != nil {
		cfg.State.LastConversation = id
	}
	return file.WriteConfig()
}
