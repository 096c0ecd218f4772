// Package webhook 把业务事件投递给登记的外部回调地址
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"insight/internal/config"
	"insight/internal/model"
)

// 请求头
const (
	HeaderEvent    = "X-Insight-Event"    // 事件类型
	HeaderDelivery = "X-Insight-Delivery" // 事件 ID，接收方可用来去重
	HeaderToken    = "X-Insight-Token"    // 登记时的共享密钥
)

const userAgent = "insight-webhook/1.0"

// WebhookLister 按事件查询订阅者
type WebhookLister interface {
	ListByEvent(ctx context.Context, eventType string) ([]model.Webhook, error)
}

// Dispatcher 事件投递器
// 每个订阅者单独一个 goroutine，只投递一次，失败记录日志
type Dispatcher struct {
	webhooks WebhookLister
	client   *http.Client
	wg       sync.WaitGroup
}

// NewDispatcher 创建 Dispatcher
func NewDispatcher(webhooks WebhookLister, cfg config.WebhookConfig) *Dispatcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{
		webhooks: webhooks,
		client:   &http.Client{Timeout: timeout},
	}
}

// Notify 实现事件通知接口
// 查询订阅者是同步的，投递是异步的，不受请求上下文取消影响
func (d *Dispatcher) Notify(ctx context.Context, event model.Event) error {
	hooks, err := d.webhooks.ListByEvent(ctx, event.Type)
	if err != nil {
		return fmt.Errorf("failed to list webhooks: %w", err)
	}
	if len(hooks) == 0 {
		return nil
	}

	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	deliveryCtx := context.WithoutCancel(ctx)
	for i := range hooks {
		hook := hooks[i]
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			if err := d.deliver(deliveryCtx, &hook, event, body); err != nil {
				log.Printf("Webhook delivery failed: webhook=%s event=%s: %v", hook.ID, event.Type, err)
			}
		}()
	}
	return nil
}

// Wait 等待所有进行中的投递完成
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Deliver 同步投递单个事件
func (d *Dispatcher) Deliver(ctx context.Context, hook *model.Webhook, event model.Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return d.deliver(ctx, hook, event, body)
}

func (d *Dispatcher) deliver(ctx context.Context, hook *model.Webhook, event model.Event, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, hook.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set(HeaderEvent, event.Type)
	req.Header.Set(HeaderDelivery, event.ID.String())
	if hook.Secret != "" {
		req.Header.Set(HeaderToken, hook.Secret)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	// 读完响应体以便复用连接
	io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("receiver returned status %d", resp.StatusCode)
	}
	return nil
}
