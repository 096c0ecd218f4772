// Package repository 提供数据访问层的实现
// 封装所有与数据库的交互操作
package repository

import (
	"errors"

	"gorm.io/gorm"
)

// ErrConversationMissing 写入消息时引用的会话不存在（外键约束失败）
var ErrConversationMissing = errors.New("referenced conversation does not exist")

// translateFK 将外键冲突转换为 ErrConversationMissing
// 依赖 gorm.Config.TranslateError 打开
func translateFK(err error) error {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return ErrConversationMissing
	}
	return err
}
