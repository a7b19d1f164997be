package oracle

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"golang.org/x/time/rate"

	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/config"
)

// EinoProvider 基于 eino ChatModel 的后端
type EinoProvider struct {
	cm      model.ChatModel
	limiter *rate.Limiter
}

var _ Provider = (*EinoProvider)(nil)

// NewEinoProvider 初始化 OpenAI 兼容的 eino 模型
func NewEinoProvider(ctx context.Context, cfg config.LLMConfig, limiter *rate.Limiter) (*EinoProvider, error) {
	cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM 初始化失败: %w", err)
	}
	return &EinoProvider{cm: cm, limiter: limiter}, nil
}

// NewEinoProviderWithModel 直接使用已有 ChatModel
func NewEinoProviderWithModel(cm model.ChatModel, limiter *rate.Limiter) *EinoProvider {
	return &EinoProvider{cm: cm, limiter: limiter}
}

func (p *EinoProvider) Name() string { return "eino" }

func (p *EinoProvider) Complete(ctx context.Context, system, prompt string) (string, error) {
	messages := []*schema.Message{
		{Role: schema.System, Content: system},
		{Role: schema.User, Content: prompt},
	}
	return withRetry(ctx, p.limiter, func() (string, error) {
		resp, err := p.cm.Generate(ctx, messages)
		if err != nil {
			return "", err
		}
		return resp.Content, nil
	})
}

func (p *EinoProvider) CompleteWithImage(ctx context.Context, prompt string, img Image) (string, error) {
	dataURL := fmt.Sprintf("data:%s;base64,%s", img.MIME, base64.StdEncoding.EncodeToString(img.Data))
	messages := []*schema.Message{
		{
			Role: schema.User,
			MultiContent: []schema.ChatMessagePart{
				{Type: schema.ChatMessagePartTypeText, Text: prompt},
				{Type: schema.ChatMessagePartTypeImageURL, ImageURL: &schema.ChatMessageImageURL{URL: dataURL}},
			},
		},
	}
	return withRetry(ctx, p.limiter, func() (string, error) {
		resp, err := p.cm.Generate(ctx, messages)
		if err != nil {
			return "", err
		}
		return resp.Content, nil
	})
}
