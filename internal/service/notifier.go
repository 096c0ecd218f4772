// Package service 提供业务逻辑层的实现
package service

import (
	"context"
	"errors"
	"log"

	"insight/internal/model"
)

// EventNotifier 事件通知接口
// Webhook 投递和 Redis 广播都实现了这个接口
type EventNotifier interface {
	Notify(ctx context.Context, event model.Event) error
}

// Notifiers 把事件依次交给多个通知器
type Notifiers []EventNotifier

// Notify 通知所有通知器，单个失败不影响其他通知器
func (ns Notifiers) Notify(ctx context.Context, event model.Event) error {
	var errs []error
	for _, n := range ns {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// emit 发送事件，失败只记录日志，不影响业务结果
func emit(ctx context.Context, n EventNotifier, event model.Event) {
	if n == nil {
		return
	}
	if err := n.Notify(ctx, event); err != nil {
		log.Printf("Failed to notify %s for conversation %s: %v", event.Type, event.ConversationID, err)
	}
}
