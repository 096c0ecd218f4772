package analyzer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"insight/internal/config"
	"insight/internal/model"
)

// fakeOpenAI 模拟 /v1/chat/completions，返回固定 content，并记录收到的请求
func fakeOpenAI(t *testing.T, content string) (*httptest.Server, *map[string]interface{}) {
	t.Helper()
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"created": time.Now().Unix(),
			"model":   "gpt-4o-mini",
			"choices": []map[string]interface{}{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]interface{}{"role": "assistant", "content": content},
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &got
}

func newTestAnalyzer(url string) *Analyzer {
	return New(config.AIConfig{APIKey: "sk-test", BaseURL: url + "/v1", Model: "gpt-4o-mini", Timeout: 5 * time.Second})
}

func TestAnalyze_DecodesStructuredOutput(t *testing.T) {
	srv, req := fakeOpenAI(t, `{
		"world_model": {
			"context": [{"concept": "claim", "understanding": "disputed"}],
			"topics": ["economy"],
			"questions": ["what is the source?"],
			"summary": "An article about the economy"
		},
		"response": "Interesting take.",
		"follow_up": "What made you doubt it?"
	}`)

	a := newTestAnalyzer(srv.URL)
	got, err := a.Analyze(context.Background(), "article text", "I doubt this")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if got.Response != "Interesting take." || got.FollowUp != "What made you doubt it?" {
		t.Fatalf("unexpected analysis: %+v", got)
	}
	if got.WorldModel.Context["claim"] != "disputed" || got.WorldModel.Summary == "" {
		t.Fatalf("unexpected world model: %+v", got.WorldModel)
	}

	body := *req
	if body["model"] != "gpt-4o-mini" {
		t.Fatalf("model = %v", body["model"])
	}
	rf, _ := body["response_format"].(map[string]interface{})
	if rf["type"] != "json_schema" {
		t.Fatalf("response_format = %v", body["response_format"])
	}
	msgs, _ := body["messages"].([]interface{})
	if len(msgs) != 2 {
		t.Fatalf("messages = %d", len(msgs))
	}
	userMsg, _ := msgs[1].(map[string]interface{})
	if c, _ := userMsg["content"].(string); !strings.Contains(c, "article text") || !strings.Contains(c, "I doubt this") {
		t.Fatalf("user prompt = %q", c)
	}
}

func TestContinue_IncludesHistoryAndNewContent(t *testing.T) {
	srv, req := fakeOpenAI(t, `{
		"updated_world_model": {"context": [], "topics": ["economy", "sources"], "questions": [], "summary": "refined"},
		"response": "Good point.",
		"follow_up": "Anything else?",
		"referenced_content": ""
	}`)

	a := newTestAnalyzer(srv.URL)
	got, err := a.Continue(context.Background(),
		model.WorldModel{Summary: "initial"},
		[]Turn{{Role: "user", Content: "hello"}, {Role: "assistant", Content: "hi"}},
		"extra page text",
	)
	if err != nil {
		t.Fatalf("Continue: %v", err)
	}
	if got.UpdatedWorldModel.Summary != "refined" || len(got.UpdatedWorldModel.Topics) != 2 {
		t.Fatalf("unexpected update: %+v", got)
	}
	if got.UpdatedWorldModel.Context == nil {
		t.Fatal("context should be normalized")
	}

	msgs, _ := (*req)["messages"].([]interface{})
	if len(msgs) != 3 {
		t.Fatalf("expected system + history + new content, got %d messages", len(msgs))
	}
	history, _ := msgs[1].(map[string]interface{})["content"].(string)
	if !strings.Contains(history, "user: hello\nassistant: hi") || !strings.Contains(history, `"summary": "initial"`) {
		t.Fatalf("history prompt = %q", history)
	}
	extra, _ := msgs[2].(map[string]interface{})["content"].(string)
	if !strings.Contains(extra, "extra page text") {
		t.Fatalf("new content prompt = %q", extra)
	}
}

func TestAnalyze_InvalidJSON(t *testing.T) {
	srv, _ := fakeOpenAI(t, "not json")
	_, err := newTestAnalyzer(srv.URL).Analyze(context.Background(), "c", "t")
	if err == nil || !strings.Contains(err.Error(), "parse AI response") {
		t.Fatalf("err = %v", err)
	}
}

func TestAnalyze_NotConfigured(t *testing.T) {
	a := New(config.AIConfig{Model: "gpt-4o-mini"})
	if _, err := a.Analyze(context.Background(), "c", "t"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}
}
