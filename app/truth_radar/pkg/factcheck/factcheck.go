// Package factcheck 检索第三方事实核查结论
package factcheck

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/cache"
	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/logger"
	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/model"
)

// ErrNotConfigured 缺少密钥或地址
var ErrNotConfigured = errors.New("fact check not configured")

// Searcher 按文本检索已有的核查结论
type Searcher interface {
	SearchClaims(ctx context.Context, query string) ([]model.FactCheck, error)
}

// Chain 依次尝试各个来源，返回第一个没有出错的结果
type Chain []Searcher

func (c Chain) SearchClaims(ctx context.Context, query string) ([]model.FactCheck, error) {
	var errs []error
	for _, s := range c {
		out, err := s.SearchClaims(ctx, query)
		if err == nil {
			return out, nil
		}
		if !errors.Is(err, ErrNotConfigured) {
			logger.Log.Warnf("事实核查来源失败，尝试下一个: %v", err)
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil, ErrNotConfigured
	}
	return nil, errors.Join(errs...)
}

// Cached 为检索结果加缓存，只缓存成功结果
type Cached struct {
	next  Searcher
	store cache.Store
	ttl   time.Duration
}

// NewCached 包装一个 Searcher
func NewCached(next Searcher, store cache.Store, ttl time.Duration) *Cached {
	return &Cached{next: next, store: store, ttl: ttl}
}

func (c *Cached) SearchClaims(ctx context.Context, query string) ([]model.FactCheck, error) {
	key := cacheKey(query)
	if hit, ok := cache.GetJSON[[]model.FactCheck](ctx, c.store, key); ok {
		return hit, nil
	}
	out, err := c.next.SearchClaims(ctx, query)
	if err != nil {
		return nil, err
	}
	if err := cache.SetJSON(ctx, c.store, key, out, c.ttl); err != nil {
		logger.Log.Debugf("写入核查缓存失败: %v", err)
	}
	return out, nil
}

func cacheKey(query string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(query))))
	return "factcheck:" + hex.EncodeToString(sum[:16])
}
