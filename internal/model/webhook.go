// Package model 定义了与数据库表对应的数据结构
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Webhook 外部回调登记
// 对应数据库表 webhooks，与会话、消息没有关联
type Webhook struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	// URL 回调地址
	URL string `gorm:"not null" json:"url"`

	// Secret 共享密钥，投递时放在请求头里，不对外暴露
	Secret string `gorm:"not null" json:"-"`

	// Events 订阅的事件名
	Events datatypes.JSONSlice[string] `gorm:"not null" json:"events"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName 指定表名
func (Webhook) TableName() string {
	return "webhooks"
}

// Subscribes 是否订阅了指定事件
func (w *Webhook) Subscribes(eventType string) bool {
	for _, e := range w.Events {
		if e == eventType {
			return true
		}
	}
	return false
}
