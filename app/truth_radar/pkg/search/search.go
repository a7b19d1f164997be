package search

import (
	"context"
	"errors"
)

// ErrNotConfigured 未配置任何搜索服务
var ErrNotConfigured = errors.New("search provider not configured")

// Searcher 定义通用的搜索接口
type Searcher interface {
	Search(ctx context.Context, req *Request) (*Response, error)
}

// Request 通用搜索请求
type Request struct {
	Query      string
	Topic      string // "news" or "general"
	MaxResults int
	Language   string
	// IncludeDomains 限定结果来源，例如事实核查站点
	IncludeDomains []string
}

// Response 通用搜索响应
type Response struct {
	Results []Result
}

// Result 单条搜索结果
type Result struct {
	Title         string
	URL           string
	Content       string
	Score         float64
	PublishedDate string
}
