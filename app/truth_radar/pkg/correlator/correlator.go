package correlator

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/logger"
	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/model"
	tu "github.com/iWorld-y/truth_radar/app/truth_radar/pkg/textutil"
)

// Summarizer 可选的上下文摘要服务
type Summarizer interface {
	Summarize(ctx context.Context, prompt string) (string, error)
}

// Config 上下文分析配置
type Config struct {
	Enabled     bool
	UseOracle   bool
	MaxKeywords int
	RecencyDays int
}

// Correlator 上下文与事件关联分析
type Correlator struct {
	cfg    Config
	lex    *Lexicon
	oracle Summarizer
	now    func() time.Time
}

var (
	tokenRe      = regexp.MustCompile(`[a-zA-Z][a-zA-Z\-]{2,}`)
	numericDate  = regexp.MustCompile(`\b(\d{1,2})[/\-](\d{1,2})[/\-](\d{2,4})\b`)
	dayMonthYear = regexp.MustCompile(`\b(\d{1,2})\s+([a-z]+)\s+(\d{4})\b`)
	monthDayYear = regexp.MustCompile(`\b([a-z]+)\s+(\d{1,2}),\s*(\d{4})\b`)
	jsonBlock    = regexp.MustCompile(`(?s)\{.*\}`)
)

// New 创建分析器，oracle 可以为 nil
func New(cfg Config, lex *Lexicon, oracle Summarizer) *Correlator {
	if cfg.MaxKeywords <= 0 {
		cfg.MaxKeywords = 12
	}
	if cfg.RecencyDays <= 0 {
		cfg.RecencyDays = 14
	}
	if lex == nil {
		lex = DefaultLexicon()
	}
	return &Correlator{cfg: cfg, lex: lex, oracle: oracle, now: time.Now}
}

// Analyze 生成上下文报告。外部摘要失败只记录日志，不影响其余结果
func (c *Correlator) Analyze(ctx context.Context, text string) (*model.ContextReport, error) {
	if !c.cfg.Enabled {
		return &model.ContextReport{Enabled: false, Confidence: 0}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	norm := strings.ToLower(tu.CollapseSpace(text))
	keywords := c.keywords(norm)
	dates, relative := c.temporal(norm)
	hits := c.sensitive(norm)
	corr := c.correlate(dates, relative, hits)

	var oracleCtx map[string]any
	if c.cfg.UseOracle && c.oracle != nil {
		summary, err := c.summarize(ctx, text, keywords, dates, hits)
		if err != nil {
			logger.Log.Warnf("上下文摘要失败: %v", err)
		} else {
			oracleCtx = summary
		}
	}

	isoDates := make([]string, 0, len(dates))
	for _, d := range dates {
		isoDates = append(isoDates, d.Format("2006-01-02T15:04:05"))
	}

	return &model.ContextReport{
		Enabled: true,
		Topics:  keywords,
		Temporal: model.TemporalIndicators{
			DatesFound:       isoDates,
			RelativeTerms:    relative,
			RecentWithinDays: c.cfg.RecencyDays,
		},
		SensitiveHits: hits,
		Correlation:   corr,
		OracleContext: oracleCtx,
		Confidence:    confidence(keywords, dates, relative, hits, corr, oracleCtx != nil),
	}, nil
}

func (c *Correlator) keywords(norm string) []string {
	counts := map[string]int{}
	var order []string
	for _, tok := range tokenRe.FindAllString(norm, -1) {
		if _, stop := c.lex.Stopwords[tok]; stop {
			continue
		}
		if counts[tok] == 0 {
			order = append(order, tok)
		}
		counts[tok]++
	}
	// 频次相同按首次出现顺序
	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })
	return tu.Head(order, c.cfg.MaxKeywords)
}

func (c *Correlator) temporal(norm string) ([]time.Time, []string) {
	relative := tu.ContainsAny(norm, c.lex.RelativeTerms)

	var dates []time.Time
	for _, m := range numericDate.FindAllStringSubmatch(norm, -1) {
		d, mon, y := atoi(m[1]), atoi(m[2]), atoi(m[3])
		if y < 100 {
			y += 2000
		}
		if t, ok := makeDate(y, mon, d); ok {
			dates = append(dates, t)
		}
	}
	for _, m := range dayMonthYear.FindAllStringSubmatch(norm, -1) {
		if mon, ok := c.lex.Months[m[2]]; ok {
			if t, ok := makeDate(atoi(m[3]), mon, atoi(m[1])); ok {
				dates = append(dates, t)
			}
		}
	}
	for _, m := range monthDayYear.FindAllStringSubmatch(norm, -1) {
		if mon, ok := c.lex.Months[m[1]]; ok {
			if t, ok := makeDate(atoi(m[3]), mon, atoi(m[2])); ok {
				dates = append(dates, t)
			}
		}
	}
	return dates, relative
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// makeDate 拒绝 2 月 30 日这类会被 time.Date 自动进位的日期
func makeDate(y, m, d int) (time.Time, bool) {
	if y < 1 || y > 9999 || m < 1 || m > 12 || d < 1 {
		return time.Time{}, false
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Day() != d || int(t.Month()) != m {
		return time.Time{}, false
	}
	return t, true
}

func (c *Correlator) sensitive(norm string) []string {
	return tu.Dedup(tu.ContainsAny(norm, c.lex.Sensitive))
}

func (c *Correlator) correlate(dates []time.Time, relative, hits []string) model.EventsCorrelation {
	cutoff := c.now().UTC().AddDate(0, 0, -c.cfg.RecencyDays)
	recent := 0
	for _, d := range dates {
		if !d.Before(cutoff) {
			recent++
		}
	}

	score := 0
	if len(hits) > 0 {
		score += 2
	}
	if len(relative) > 0 {
		score++
	}
	if recent > 0 {
		score++
	}

	var level string
	switch {
	case score >= 3:
		level = "high"
	case score == 2:
		level = "elevated"
	case score == 1:
		level = "low"
	default:
		level = "minimal"
	}

	return model.EventsCorrelation{
		RiskLevel: level,
		Signals: model.CorrelationSignals{
			SensitiveHitsCount: len(hits),
			RelativeTermsCount: len(relative),
			RecentDatesCount:   recent,
		},
	}
}

func confidence(keywords []string, dates []time.Time, relative, hits []string, corr model.EventsCorrelation, oracle bool) float64 {
	score := 0.3
	if len(keywords) > 0 {
		score += 0.2
	}
	if len(dates) > 0 || len(relative) > 0 {
		score += 0.15
	}
	if len(hits) > 0 {
		score += 0.2
	}
	if corr.RiskLevel == "elevated" || corr.RiskLevel == "high" {
		score += 0.1
	}
	if oracle {
		score += 0.05
	}
	return math.Min(1.0, math.Round(score*100)/100)
}

func (c *Correlator) summarize(ctx context.Context, text string, keywords []string, dates []time.Time, hits []string) (map[string]any, error) {
	isoDates := make([]string, 0, len(dates))
	for _, d := range tu.Head(dates, 5) {
		isoDates = append(isoDates, d.Format("2006-01-02T15:04:05"))
	}
	prompt := fmt.Sprintf(summaryPrompt,
		tu.Truncate(text, 6000),
		quoteList(tu.Head(keywords, 10)),
		quoteList(isoDates),
		quoteList(tu.Head(hits, 10)),
	)

	raw, err := c.oracle.Summarize(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return ParseSummary(raw), nil
}

// ParseSummary 提取回复中的 JSON 对象，失败时保留截断后的原文
func ParseSummary(raw string) map[string]any {
	fallback := map[string]any{"raw": tu.Truncate(strings.TrimSpace(raw), 1000)}
	block := jsonBlock.FindString(raw)
	if block == "" {
		return fallback
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(block), &out); err != nil {
		return fallback
	}
	return out
}

func quoteList(items []string) string {
	quoted := make([]string, 0, len(items))
	for _, it := range items {
		quoted = append(quoted, strconv.Quote(it))
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

const summaryPrompt = `You are assisting a misinformation forensics system in India.
Given the input content, provide a concise JSON with:
  - key_topics: top concepts (<=5)
  - likely_domain: one of ["political","communal","health","finance","public_safety","other"]
  - risk_triggers: brief bullet points explaining why timing/context might be sensitive
  - recommended_checks: 3 short next verification steps for analysts in India

Keep it brief and strictly return JSON.
Content:
"""%s"""

Extracted keywords: %s
Extracted dates (UTC): %s
Sensitive hits: %s
`
