// Package reader 负责把用户提交的链接转换成可供模型分析的文本
package reader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"insight/internal/config"
	"insight/internal/model"
)

// ErrInvalidURL 链接不是合法的 http/https 地址
var ErrInvalidURL = errors.New("invalid url")

var youtubePattern = regexp.MustCompile(`(youtube\.com|youtu\.be)`)

// Content 处理后的内容
type Content struct {
	Type    string // webpage / video / podcast
	Content string // 纯文本
}

// Reader 内容读取器
type Reader struct {
	baseURL  string
	maxChars int
	client   *http.Client
	parser   *gofeed.Parser
}

// New 创建 Reader
func New(cfg config.ReaderConfig) *Reader {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Reader{
		baseURL:  cfg.BaseURL,
		maxChars: cfg.MaxContentChars,
		client:   &http.Client{Timeout: timeout},
		parser:   gofeed.NewParser(),
	}
}

// ValidateURL 检查是否为带主机名的 http/https 绝对地址
func ValidateURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return ErrInvalidURL
	}
	return nil
}

// Classify 根据链接判断内容类型
func Classify(raw string) string {
	if youtubePattern.MatchString(raw) {
		return model.MediaTypeVideo
	}
	if u, err := url.Parse(raw); err == nil {
		p := strings.ToLower(u.Path)
		if strings.HasSuffix(p, ".mp3") || isFeedPath(p) {
			return model.MediaTypePodcast
		}
	}
	return model.MediaTypeWebpage
}

// Process 读取链接内容
// 网页经阅读代理抓取后提取纯文本；订阅源读取条目简介，
// 没有音频附件的订阅源按网页返回；视频和单集音频暂不转写，返回说明文字
func (r *Reader) Process(ctx context.Context, raw string) (*Content, error) {
	if err := ValidateURL(raw); err != nil {
		return nil, err
	}

	switch mediaType := Classify(raw); mediaType {
	case model.MediaTypeVideo:
		return &Content{Type: mediaType, Content: fmt.Sprintf("Transcript unavailable: video at %s", raw)}, nil
	case model.MediaTypePodcast:
		if IsFeed(raw) {
			feed, err := r.fetchFeed(ctx, raw)
			if err != nil {
				return nil, err
			}
			if !IsPodcastFeed(feed) {
				mediaType = model.MediaTypeWebpage
			}
			return &Content{Type: mediaType, Content: truncate(FormatFeed(feed), r.maxChars)}, nil
		}
		return &Content{Type: mediaType, Content: fmt.Sprintf("Transcript unavailable: podcast episode at %s", raw)}, nil
	default:
		text, err := r.fetchWebpage(ctx, raw)
		if err != nil {
			return nil, err
		}
		return &Content{Type: mediaType, Content: text}, nil
	}
}

// fetchWebpage 通过阅读代理抓取网页并提取文本
func (r *Reader) fetchWebpage(ctx context.Context, raw string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+raw, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build reader request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to process webpage: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("failed to process webpage: reader returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	text, err := ExtractText(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to process webpage: %w", err)
	}
	return truncate(text, r.maxChars), nil
}

// ExtractText 从 HTML（或代理返回的纯文本）中提取可读文本
// script/style/noscript 会被丢弃，空白折叠为单个空格
func ExtractText(body io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return "", err
	}
	doc.Find("script, style, noscript").Remove()
	return strings.Join(strings.Fields(doc.Text()), " "), nil
}

// truncate 按字符数截断，max <= 0 表示不限制
func truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
