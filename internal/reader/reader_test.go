package reader

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"insight/internal/config"
	"insight/internal/model"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.youtube.com/watch?v=abc", model.MediaTypeVideo},
		{"https://youtu.be/abc", model.MediaTypeVideo},
		{"https://cdn.example.com/ep12.MP3", model.MediaTypePodcast},
		{"https://cdn.example.com/ep12.mp3?token=1", model.MediaTypePodcast},
		{"https://example.com/article", model.MediaTypeWebpage},
		{"https://feeds.example.com/show.rss", model.MediaTypePodcast},
		{"https://example.com/podcast/feed/", model.MediaTypePodcast},
		{"https://example.com/feedback", model.MediaTypeWebpage},
	}
	for _, tt := range tests {
		if got := Classify(tt.url); got != tt.want {
			t.Errorf("Classify(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestValidateURL(t *testing.T) {
	for _, ok := range []string{"https://example.com", "http://example.com/a?b=c"} {
		if err := ValidateURL(ok); err != nil {
			t.Errorf("ValidateURL(%q) = %v", ok, err)
		}
	}
	for _, bad := range []string{"", "example.com", "ftp://example.com/x", "https://", "not a url"} {
		if err := ValidateURL(bad); !errors.Is(err, ErrInvalidURL) {
			t.Errorf("ValidateURL(%q) = %v, want ErrInvalidURL", bad, err)
		}
	}
}

func TestProcess_WebpageThroughReaderProxy(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><head><style>p{}</style><script>var x=1</script></head>
<body><h1>Title</h1>
<p>First   paragraph.</p>
<p>Second</p></body></html>`))
	}))
	t.Cleanup(srv.Close)

	r := New(config.ReaderConfig{BaseURL: srv.URL + "/", Timeout: time.Second})
	got, err := r.Process(context.Background(), "https://example.com/article")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if got.Type != model.MediaTypeWebpage {
		t.Fatalf("type = %q", got.Type)
	}
	if got.Content != "Title First paragraph. Second" {
		t.Fatalf("content = %q", got.Content)
	}
	if gotPath != "/https://example.com/article" {
		t.Fatalf("proxy path = %q", gotPath)
	}
}

func TestProcess_TruncatesContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("é", 50)))
	}))
	t.Cleanup(srv.Close)

	r := New(config.ReaderConfig{BaseURL: srv.URL + "/", MaxContentChars: 10})
	got, err := r.Process(context.Background(), "https://example.com/long")
	if err != nil {
		t.Fatal(err)
	}
	if got.Content != strings.Repeat("é", 10) {
		t.Fatalf("content = %q", got.Content)
	}
}

func TestProcess_ProxyErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream blocked", http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	r := New(config.ReaderConfig{BaseURL: srv.URL + "/"})
	_, err := r.Process(context.Background(), "https://example.com/x")
	if err == nil || !strings.Contains(err.Error(), "502") {
		t.Fatalf("err = %v, want status 502 error", err)
	}
}

func TestProcess_VideoAndPodcastSkipFetch(t *testing.T) {
	r := New(config.ReaderConfig{BaseURL: "http://127.0.0.1:0/"})

	v, err := r.Process(context.Background(), "https://youtu.be/xyz")
	if err != nil || v.Type != model.MediaTypeVideo || !strings.Contains(v.Content, "youtu.be/xyz") {
		t.Fatalf("video = %+v, %v", v, err)
	}
	p, err := r.Process(context.Background(), "https://example.com/show.mp3")
	if err != nil || p.Type != model.MediaTypePodcast {
		t.Fatalf("podcast = %+v, %v", p, err)
	}
}

const testFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Deep Dives</title>
  <description>A show about &lt;b&gt;systems&lt;/b&gt;.</description>
  <item><title>Episode 2</title><description>Queues and backpressure.</description><enclosure url="https://cdn.example.com/ep2.mp3" length="1024" type="audio/mpeg"/></item>
  <item><title>Episode 1</title><description><![CDATA[<p>Why <em>caches</em> lie.</p>]]></description></item>
</channel>
</rss>`

func TestProcess_PodcastFeed(t *testing.T) {
	var proxied bool
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		proxied = true
	}))
	t.Cleanup(proxy.Close)

	feed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(testFeed))
	}))
	t.Cleanup(feed.Close)

	r := New(config.ReaderConfig{BaseURL: proxy.URL + "/"})
	got, err := r.Process(context.Background(), feed.URL+"/show.rss")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if proxied {
		t.Fatal("feeds should be fetched directly")
	}
	if got.Type != model.MediaTypePodcast {
		t.Fatalf("type = %q", got.Type)
	}
	for _, want := range []string{"Podcast: Deep Dives", "A show about systems.", "Episode: Episode 2", "Queues and backpressure.", "Why caches lie."} {
		if !strings.Contains(got.Content, want) {
			t.Errorf("content missing %q:\n%s", want, got.Content)
		}
	}
}

const blogFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Engineering Notes</title>
  <item><title>Retries considered harmful</title><description>Backoff with jitter.</description></item>
</channel>
</rss>`

func TestProcess_PlainFeedIsWebpage(t *testing.T) {
	feed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(blogFeed))
	}))
	t.Cleanup(feed.Close)

	r := New(config.ReaderConfig{BaseURL: "http://127.0.0.1:1/"})
	got, err := r.Process(context.Background(), feed.URL+"/blog/feed")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if got.Type != model.MediaTypeWebpage {
		t.Fatalf("type = %q, want webpage", got.Type)
	}
	if strings.Contains(got.Content, "Podcast:") || !strings.Contains(got.Content, "Feed: Engineering Notes") ||
		!strings.Contains(got.Content, "Entry: Retries considered harmful") {
		t.Fatalf("content = %q", got.Content)
	}
}
