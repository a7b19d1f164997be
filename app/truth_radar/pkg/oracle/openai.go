package oracle

import (
	"context"
	"encoding/base64"
	"fmt"

	goopenai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/config"
)

// OpenAIProvider 直接使用 go-openai 客户端的后端
type OpenAIProvider struct {
	client  *goopenai.Client
	model   string
	limiter *rate.Limiter
}

var _ Provider = (*OpenAIProvider)(nil)

// NewOpenAIProvider 创建客户端，BaseURL 为空时使用官方地址
func NewOpenAIProvider(cfg config.LLMConfig, limiter *rate.Limiter) *OpenAIProvider {
	oc := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	return &OpenAIProvider{
		client:  goopenai.NewClientWithConfig(oc),
		model:   cfg.Model,
		limiter: limiter,
	}
}

func (p *OpenAIProvider) Name() string { return "openai" }

func (p *OpenAIProvider) Complete(ctx context.Context, system, prompt string) (string, error) {
	req := goopenai.ChatCompletionRequest{
		Model: p.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: system},
			{Role: goopenai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.1,
	}
	return withRetry(ctx, p.limiter, func() (string, error) {
		return p.create(ctx, req)
	})
}

func (p *OpenAIProvider) CompleteWithImage(ctx context.Context, prompt string, img Image) (string, error) {
	dataURL := fmt.Sprintf("data:%s;base64,%s", img.MIME, base64.StdEncoding.EncodeToString(img.Data))
	req := goopenai.ChatCompletionRequest{
		Model: p.model,
		Messages: []goopenai.ChatCompletionMessage{
			{
				Role: goopenai.ChatMessageRoleUser,
				MultiContent: []goopenai.ChatMessagePart{
					{Type: goopenai.ChatMessagePartTypeText, Text: prompt},
					{Type: goopenai.ChatMessagePartTypeImageURL, ImageURL: &goopenai.ChatMessageImageURL{
						URL:    dataURL,
						Detail: goopenai.ImageURLDetailAuto,
					}},
				},
			},
		},
	}
	return withRetry(ctx, p.limiter, func() (string, error) {
		return p.create(ctx, req)
	})
}

func (p *OpenAIProvider) create(ctx context.Context, req goopenai.ChatCompletionRequest) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion")
	}
	return resp.Choices[0].Message.Content, nil
}
