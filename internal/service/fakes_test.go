package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"insight/internal/analyzer"
	"insight/internal/model"
	"insight/internal/reader"
)

type fakeReader struct {
	content map[string]*reader.Content
	err     error
	calls   []string
}

func (f *fakeReader) Process(ctx context.Context, url string) (*reader.Content, error) {
	f.calls = append(f.calls, url)
	if f.err != nil {
		return nil, f.err
	}
	if c, ok := f.content[url]; ok {
		return c, nil
	}
	return &reader.Content{Type: model.MediaTypeWebpage, Content: "page text for " + url}, nil
}

type fakeAnalyzer struct {
	err error

	gotContent    string
	gotThought    string
	gotWorldModel model.WorldModel
	gotHistory    []analyzer.Turn
	gotNewContent string
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, content, initialThought string) (*analyzer.Analysis, error) {
	f.gotContent, f.gotThought = content, initialThought
	if f.err != nil {
		return nil, f.err
	}
	return &analyzer.Analysis{
		WorldModel: model.WorldModel{
			Context: map[string]string{"thesis": "stated"},
			Topics:  []string{"topic-1"},
			Summary: "first pass",
		},
		Response: "Initial response.",
		FollowUp: "Initial follow-up?",
	}, nil
}

func (f *fakeAnalyzer) Continue(ctx context.Context, wm model.WorldModel, history []analyzer.Turn, newContent string) (*analyzer.Update, error) {
	f.gotWorldModel, f.gotHistory, f.gotNewContent = wm, history, newContent
	if f.err != nil {
		return nil, f.err
	}
	return &analyzer.Update{
		UpdatedWorldModel: model.WorldModel{
			Topics:  append(wm.Topics, "topic-2"),
			Summary: "second pass",
		},
		Response: "Next response.",
		FollowUp: "Next follow-up?",
	}, nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []model.Event
	err    error
}

func (r *recordingNotifier) Notify(ctx context.Context, event model.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return r.err
}

func (r *recordingNotifier) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

type memoryRevocations struct {
	revoked map[string]time.Time
	err     error
}

func newMemoryRevocations() *memoryRevocations {
	return &memoryRevocations{revoked: map[string]time.Time{}}
}

func (m *memoryRevocations) RevokeShare(ctx context.Context, hash string, expireAt time.Time) error {
	m.revoked[hash] = expireAt
	return nil
}

func (m *memoryRevocations) IsShareRevoked(ctx context.Context, hash string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	_, ok := m.revoked[hash]
	return ok, nil
}

var errBoom = errors.New("boom")
