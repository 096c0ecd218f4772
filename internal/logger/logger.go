// Package logger 根据配置初始化全局日志
// 标准库 log 的输出也会经过这里设置的 slog handler
package logger

import (
	"io"
	"log"
	"log/slog"
	"os"
	"strings"

	"insight/internal/config"
)

// Setup 按 log.level / log.format 初始化默认 logger
// 返回创建好的 *slog.Logger，同时设置为 slog 与 log 的默认输出
func Setup(cfg config.LogConfig) *slog.Logger {
	return setup(cfg, os.Stdout)
}

func setup(cfg config.LogConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var h slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}

	l := slog.New(h)
	slog.SetDefault(l)
	// slog.SetDefault 之后 log.Printf 走 slog，去掉 log 自带的时间前缀
	log.SetFlags(0)
	return l
}

// ParseLevel 解析日志级别，无法识别时返回 info
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
