// Package fetch 抓取网页正文，供按 URL 提交的分析请求使用
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"

	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/logger"
	tu "github.com/iWorld-y/truth_radar/app/truth_radar/pkg/textutil"
)

const maxBody = 4 << 20

// ErrNoContent 页面中没有可用正文
var ErrNoContent = errors.New("no readable content")

// Article 抓取结果
type Article struct {
	Title string
	Text  string
	URL   string
}

// Fetcher 网页正文抓取
type Fetcher struct {
	client *http.Client
	// minText 低于该长度时改用 goquery 提取
	minText int
}

// New 创建抓取器
func New(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Fetcher{client: &http.Client{Timeout: timeout}, minText: 100}
}

// Fetch 先用 readability 提取正文，内容过短时回退到 goquery
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Article, error) {
	pageURL, err := url.Parse(rawURL)
	if err != nil || (pageURL.Scheme != "http" && pageURL.Scheme != "https") {
		return nil, fmt.Errorf("invalid url: %s", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; TruthRadar/1.0)")

	res, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", rawURL, res.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("read body failed: %w", err)
	}

	art := &Article{URL: rawURL}
	if parsed, err := readability.FromReader(bytes.NewReader(body), pageURL); err == nil {
		art.Title = strings.TrimSpace(parsed.Title)
		art.Text = tu.CollapseSpace(parsed.TextContent)
	} else {
		logger.Log.Debugf("readability 解析失败 [%s]: %v", rawURL, err)
	}

	if tu.RuneLen(art.Text) < f.minText {
		title, text, err := extractWithGoquery(body)
		if err == nil && tu.RuneLen(text) > tu.RuneLen(art.Text) {
			art.Text = text
			if art.Title == "" {
				art.Title = title
			}
		}
	}
	if art.Text == "" {
		return nil, ErrNoContent
	}
	return art, nil
}

func extractWithGoquery(body []byte) (string, string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", "", err
	}
	doc.Find("script, style, noscript, nav, header, footer, aside").Remove()

	title := strings.TrimSpace(doc.Find("title").First().Text())
	for _, sel := range []string{"article", "main", "body"} {
		if text := tu.CollapseSpace(doc.Find(sel).First().Text()); text != "" {
			return title, text, nil
		}
	}
	return title, "", nil
}
