package oracle

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/logger"
	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/model"
)

// Unavailable 模型不可用时的占位叙述
const Unavailable = "AI analysis temporarily unavailable"

// Narrative 取证叙述及从中抽取的结构化信息
type Narrative struct {
	Text     string
	Sources  []model.SourceLink
	Contacts []model.ReportingContact
}

// Client 面向业务的模型客户端，Provider 为 nil 时所有调用返回 Unavailable
type Client struct {
	p       Provider
	timeout time.Duration
}

// NewClient 创建客户端，timeout 为单次调用上限
func NewClient(p Provider, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{p: p, timeout: timeout}
}

// Available 是否配置了后端
func (c *Client) Available() bool { return c != nil && c.p != nil }

func (c *Client) call(ctx context.Context, fn func(context.Context) (string, error)) (string, error) {
	if !c.Available() {
		return "", ErrNotConfigured
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	out, err := fn(ctx)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(out) == "" {
		return "", fmt.Errorf("empty response from %s", c.p.Name())
	}
	return out, nil
}

// ForensicNarrative 生成取证叙述，失败时 Value 为占位叙述
func (c *Client) ForensicNarrative(ctx context.Context, text, language string) Outcome[Narrative] {
	placeholder := Narrative{Text: Unavailable, Sources: []model.SourceLink{}, Contacts: []model.ReportingContact{}}

	out, err := c.call(ctx, func(ctx context.Context) (string, error) {
		return c.p.Complete(ctx, forensicSystem, fmt.Sprintf(forensicPrompt, text, language))
	})
	if err != nil {
		logger.Log.Warnf("取证叙述生成失败: %v", err)
		return Fail(placeholder, err)
	}

	sources, contacts := ExtractSourcesAndContacts(out)
	return Ok(Narrative{Text: out, Sources: sources, Contacts: contacts})
}

// Summarize 通用文本生成，供上下文分析使用
func (c *Client) Summarize(ctx context.Context, prompt string) (string, error) {
	return c.call(ctx, func(ctx context.Context) (string, error) {
		return c.p.Complete(ctx, "You are a concise analyst. Respond with JSON only.", prompt)
	})
}

// Describe 视觉模型分析图片
func (c *Client) Describe(ctx context.Context, prompt string, img Image) (string, error) {
	return c.call(ctx, func(ctx context.Context) (string, error) {
		return c.p.CompleteWithImage(ctx, prompt, img)
	})
}

// Ping 健康检查
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.call(ctx, func(ctx context.Context) (string, error) {
		return c.p.Complete(ctx, "Reply with OK.", "Hello")
	})
	return err
}

const forensicSystem = "You are a digital forensics expert specialising in misinformation analysis."

const forensicPrompt = `As a digital forensics expert, analyze this content for misinformation:

CONTENT: "%s"

IMPORTANT: Start your VERACITY ASSESSMENT with one of these clear statements:
- "FALSE INFORMATION" if the content is factually incorrect
- "MISLEADING" if the content is partially true but deceptive
- "TRUE" if the content is factually accurate
- "UNVERIFIED" if you cannot determine accuracy

Provide analysis in this format:

🔍 VERACITY ASSESSMENT:
[Start with FALSE INFORMATION/MISLEADING/TRUE/UNVERIFIED, then explain why]

🧬 MANIPULATION TACTICS:
[What psychological tricks are used?]

📊 EVIDENCE EVALUATION:
[What evidence supports/contradicts this? Include specific sources, studies, or articles]

🎯 TARGET ANALYSIS:
[Who is this meant to influence and how?]

⚠️ HARM POTENTIAL:
[What damage could this cause if it spreads?]

🛡️ COUNTER-NARRATIVE:
[What's the accurate information? Include links to credible sources]

📋 VERIFICATION STEPS:
[How can users verify this themselves? Include specific websites and search terms]

🔗 SOURCE LINKS & ARTICLES:
[Provide 3-5 credible source links that refute or support this claim. Format as:
- Source Name: [Brief description] - [URL or searchable reference]]

📧 REPORTING INFORMATION:
[If this is false/misleading content, provide relevant reporting emails:
- Platform Reporting: [email addresses for social media platforms]
- Fact-Check Organizations: [emails for fact-checking bodies]
- Government Agencies: [relevant authorities for this type of content]]

Language: %s
Be specific, cite sources with links, use emojis for readability.`
