// Package oracle 封装外部大模型调用，所有调用都返回显式的结果状态而不是抛出
package oracle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/config"
)

// Status 外部调用结果状态
type Status int

const (
	StatusOK Status = iota
	StatusUnavailable
	StatusTimedOut
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusTimedOut:
		return "timed_out"
	default:
		return "unavailable"
	}
}

// Outcome 外部调用结果，Status 非 OK 时 Value 为零值或占位
type Outcome[T any] struct {
	Value  T
	Status Status
	Err    error
}

// OK 调用是否成功
func (o Outcome[T]) OK() bool { return o.Status == StatusOK }

// Ok 构造成功结果
func Ok[T any](v T) Outcome[T] { return Outcome[T]{Value: v, Status: StatusOK} }

// Fail 根据错误类型构造失败结果，超时单独区分
func Fail[T any](fallback T, err error) Outcome[T] {
	st := StatusUnavailable
	if errors.Is(err, context.DeadlineExceeded) {
		st = StatusTimedOut
	}
	return Outcome[T]{Value: fallback, Status: st, Err: err}
}

// ErrNotConfigured 未配置模型
var ErrNotConfigured = errors.New("oracle not configured")

// Image 送入视觉模型的图片
type Image struct {
	Data []byte
	MIME string
}

// Provider 大模型后端
type Provider interface {
	Name() string
	// Complete 纯文本生成
	Complete(ctx context.Context, system, prompt string) (string, error)
	// CompleteWithImage 带一张图片的生成
	CompleteWithImage(ctx context.Context, prompt string, img Image) (string, error)
}

// NewProvider 按配置创建后端，未配置模型或密钥时返回 ErrNotConfigured
func NewProvider(ctx context.Context, cfg config.LLMConfig, conc config.ConcurrencyConfig) (Provider, error) {
	if cfg.APIKey == "" || cfg.Model == "" {
		return nil, ErrNotConfigured
	}
	limiter := rate.NewLimiter(rate.Limit(float64(conc.RPM)/60.0), conc.QPS)

	switch strings.ToLower(cfg.Provider) {
	case "", "eino":
		return NewEinoProvider(ctx, cfg, limiter)
	case "openai":
		return NewOpenAIProvider(cfg, limiter), nil
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.Provider)
	}
}

const maxRetries = 3

// baseDelay 429 退避基准，测试中可调小
var baseDelay = 2 * time.Second

func isRateLimited(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") || strings.Contains(msg, "too many requests")
}

// withRetry 限流等待后调用，遇到 429 指数退避重试
func withRetry(ctx context.Context, limiter *rate.Limiter, call func() (string, error)) (string, error) {
	var lastErr error
	for i := 0; i <= maxRetries; i++ {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return "", err
			}
		}

		out, err := call()
		if err == nil {
			return out, nil
		}
		if !isRateLimited(err) || i == maxRetries {
			return "", err
		}
		lastErr = err

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(baseDelay * time.Duration(1<<i)):
		}
	}
	return "", lastErr
}

// StripFence 去掉模型返回中的 markdown 代码块标记
func StripFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
