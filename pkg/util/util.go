// Package util 提供通用工具函数
package util

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"unicode/utf8"
)

// HashToken 计算 Token 的 SHA256 哈希值
// 撤销列表只保存哈希，避免存储原始 Token
// 参数:
//   - token: 原始 Token
//
// 返回:
//   - string: 十六进制哈希值
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

// GenerateSecret 生成 Webhook 密钥
// 32 字节随机数，编码为 64 个十六进制字符，带 "whsec_" 前缀
// 返回:
//   - string: 密钥
func GenerateSecret() string {
	bytes := make([]byte, 32)
	rand.Read(bytes)
	return "whsec_" + hex.EncodeToString(bytes)
}

// TruncateString 截断字符串到指定长度（按字符计）
// 如果字符串超过指定长度，截断并添加 "..."
// 参数:
//   - s: 原字符串
//   - maxLen: 最大长度
//
// 返回:
//   - string: 截断后的字符串
func TruncateString(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// StringPtr 返回字符串的指针
// 用于可选字段的赋值
func StringPtr(s string) *string {
	return &s
}

// StringValue 返回指针指向的字符串，nil 返回空串
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
