package reader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/mmcdole/gofeed"
)

// 订阅源最多读取的节目数
const maxFeedEpisodes = 5

// 订阅源最大读取字节数
const maxFeedBytes = 5 * 1024 * 1024

// IsFeed 判断链接是否为订阅源（RSS / Atom）
func IsFeed(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return isFeedPath(strings.ToLower(u.Path))
}

func isFeedPath(p string) bool {
	p = strings.TrimSuffix(p, "/")
	return strings.HasSuffix(p, ".rss") ||
		strings.HasSuffix(p, ".xml") ||
		strings.HasSuffix(p, "/feed") ||
		strings.HasSuffix(p, "/rss")
}

// fetchFeed 直接抓取并解析订阅源
// 订阅源本身就是结构化文本，不经过阅读代理
func (r *Reader) fetchFeed(ctx context.Context, raw string) (*gofeed.Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, raw, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build feed request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to process feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("failed to process feed: status %d", resp.StatusCode)
	}

	feed, err := r.parser.Parse(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to process feed: %w", err)
	}
	return feed, nil
}

// IsPodcastFeed 带 iTunes 扩展或音频附件的订阅源才算播客
// 普通博客的 /feed 只按网页文本处理
func IsPodcastFeed(feed *gofeed.Feed) bool {
	if feed.ITunesExt != nil {
		return true
	}
	for _, it := range feed.Items {
		if it.ITunesExt != nil {
			return true
		}
		for _, enc := range it.Enclosures {
			if enc != nil && strings.HasPrefix(strings.ToLower(enc.Type), "audio/") {
				return true
			}
		}
	}
	return false
}

// FormatFeed 把订阅源转换为纯文本
// 节目简介中的 HTML 会被去掉
func FormatFeed(feed *gofeed.Feed) string {
	feedLabel, itemLabel := "Feed: ", "\nEntry: "
	if IsPodcastFeed(feed) {
		feedLabel, itemLabel = "Podcast: ", "\nEpisode: "
	}

	var sb strings.Builder
	sb.WriteString(feedLabel)
	sb.WriteString(strings.TrimSpace(feed.Title))
	sb.WriteString("\n")
	if d := cleanHTML(feed.Description); d != "" {
		sb.WriteString(d)
		sb.WriteString("\n")
	}

	for i, it := range feed.Items {
		if i >= maxFeedEpisodes {
			break
		}
		sb.WriteString(itemLabel)
		sb.WriteString(strings.TrimSpace(it.Title))
		sb.WriteString("\n")
		desc := it.Description
		if desc == "" {
			desc = it.Content
		}
		if d := cleanHTML(desc); d != "" {
			sb.WriteString(d)
			sb.WriteString("\n")
		}
	}
	return strings.TrimSpace(sb.String())
}

func cleanHTML(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	text, err := ExtractText(strings.NewReader(s))
	if err != nil {
		return strings.Join(strings.Fields(s), " ")
	}
	return text
}
