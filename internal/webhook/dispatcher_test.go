package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"insight/internal/config"
	"insight/internal/model"
)

type staticLister struct {
	hooks []model.Webhook
	err   error
}

func (s staticLister) ListByEvent(ctx context.Context, eventType string) ([]model.Webhook, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []model.Webhook
	for _, h := range s.hooks {
		if h.Subscribes(eventType) {
			out = append(out, h)
		}
	}
	return out, nil
}

type received struct {
	header http.Header
	event  model.Event
}

func newReceiver(t *testing.T, status int) (*httptest.Server, func() []received) {
	t.Helper()
	var mu sync.Mutex
	var got []received
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var ev model.Event
		json.NewDecoder(r.Body).Decode(&ev)
		mu.Lock()
		got = append(got, received{header: r.Header.Clone(), event: ev})
		mu.Unlock()
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, func() []received {
		mu.Lock()
		defer mu.Unlock()
		return append([]received(nil), got...)
	}
}

func TestNotify_DeliversToSubscribers(t *testing.T) {
	srv, got := newReceiver(t, http.StatusNoContent)
	lister := staticLister{hooks: []model.Webhook{
		{ID: uuid.New(), URL: srv.URL + "/a", Secret: "tok-a", Events: []string{model.EventMessageCreated}},
		{ID: uuid.New(), URL: srv.URL + "/b", Secret: "tok-b", Events: []string{model.EventConversationShared}},
	}}
	d := NewDispatcher(lister, config.WebhookConfig{Timeout: time.Second})

	ctx, cancel := context.WithCancel(context.Background())
	ev := model.NewEvent(model.EventMessageCreated, uuid.New(), map[string]string{"content": "hi"})
	if err := d.Notify(ctx, ev); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	// 请求结束后上下文被取消，投递仍然完成
	cancel()
	d.Wait()

	deliveries := got()
	if len(deliveries) != 1 {
		t.Fatalf("deliveries = %d, want 1", len(deliveries))
	}
	r := deliveries[0]
	if r.header.Get(HeaderEvent) != model.EventMessageCreated ||
		r.header.Get(HeaderToken) != "tok-a" ||
		r.header.Get(HeaderDelivery) != ev.ID.String() ||
		r.header.Get("Content-Type") != "application/json" {
		t.Fatalf("headers = %v", r.header)
	}
	if r.event.ID != ev.ID || r.event.ConversationID != ev.ConversationID {
		t.Fatalf("event = %+v", r.event)
	}
}

func TestNotify_NoRetryOnFailure(t *testing.T) {
	srv, got := newReceiver(t, http.StatusInternalServerError)
	lister := staticLister{hooks: []model.Webhook{
		{ID: uuid.New(), URL: srv.URL, Events: []string{model.EventConversationCreated}},
	}}
	d := NewDispatcher(lister, config.WebhookConfig{})

	if err := d.Notify(context.Background(), model.NewEvent(model.EventConversationCreated, uuid.New(), nil)); err != nil {
		t.Fatalf("receiver failures are not surfaced: %v", err)
	}
	d.Wait()
	if n := len(got()); n != 1 {
		t.Fatalf("attempts = %d, want exactly 1", n)
	}
}

func TestDeliver_ReportsStatus(t *testing.T) {
	srv, _ := newReceiver(t, http.StatusBadRequest)
	d := NewDispatcher(staticLister{}, config.WebhookConfig{})

	err := d.Deliver(context.Background(), &model.Webhook{URL: srv.URL}, model.NewEvent(model.EventMessageCreated, uuid.New(), nil))
	if err == nil || !strings.Contains(err.Error(), "400") {
		t.Fatalf("err = %v", err)
	}
}

func TestNotify_ListError(t *testing.T) {
	boom := errors.New("db down")
	d := NewDispatcher(staticLister{err: boom}, config.WebhookConfig{})
	if err := d.Notify(context.Background(), model.NewEvent(model.EventMessageCreated, uuid.New(), nil)); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
}
