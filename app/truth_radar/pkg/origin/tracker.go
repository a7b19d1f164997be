package origin

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/logger"
	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/model"
	tu "github.com/iWorld-y/truth_radar/app/truth_radar/pkg/textutil"
)

// NoPatterns 所有子分析都没有发现时的叙述
const NoPatterns = "Origin analysis completed - no specific patterns detected"

// Tracker 内容溯源与时间线
type Tracker struct {
	p   *Patterns
	now func() time.Time
}

// NewTracker 创建溯源器，p 为 nil 时使用默认规则
func NewTracker(p *Patterns) *Tracker {
	if p == nil {
		p = DefaultPatterns()
	}
	return &Tracker{p: p, now: time.Now}
}

type section struct {
	header string
	run    func(string) string
}

// TraceOrigin 依次执行各项子分析，拼接有发现的部分
func (t *Tracker) TraceOrigin(ctx context.Context, content string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	sections := []section{
		{"🔍 PLATFORM ANALYSIS:", t.platforms},
		{"🗣️ LINGUISTIC FORENSICS:", t.linguistic},
		{"⏰ TEMPORAL ANALYSIS:", t.temporal},
		{"🌐 DOMAIN ANALYSIS:", t.domains},
		{"📈 PROPAGATION ANALYSIS:", t.propagation},
		{"🔐 CONTENT FINGERPRINT:", fingerprint},
	}

	var parts []string
	for _, s := range sections {
		if body := guard(s.header, s.run, content); body != "" {
			parts = append(parts, s.header+"\n"+body)
		}
	}
	if len(parts) == 0 {
		return NoPatterns, nil
	}
	return strings.Join(parts, "\n\n"), nil
}

// guard 单个子分析异常时跳过该部分
func guard(name string, fn func(string) string, content string) (out string) {
	defer func() {
		if r := recover(); r != nil {
			logger.Log.Warnf("溯源子分析 %s 失败: %v", name, r)
			out = ""
		}
	}()
	return fn(content)
}

func (t *Tracker) platforms(content string) string {
	type scored struct {
		name    string
		score   int
		matches []string
	}
	lower := strings.ToLower(content)
	var found []scored
	for _, p := range t.p.Platforms {
		matches := tu.FindAll(p.Patterns, lower)
		if len(matches) > 0 {
			found = append(found, scored{p.Name, len(matches), tu.Head(matches, 5)})
		}
	}
	if len(found) == 0 {
		return ""
	}
	sort.SliceStable(found, func(i, j int) bool { return found[i].score > found[j].score })

	var lines []string
	for _, f := range tu.Head(found, 3) {
		lines = append(lines, fmt.Sprintf("• %s: %d indicators (%s...)",
			tu.Title(f.name), f.score, strings.Join(tu.Head(f.matches, 3), ", ")))
	}
	return strings.Join(lines, "\n")
}

func (t *Tracker) linguistic(content string) string {
	lower := strings.ToLower(content)
	var lines []string

	us := len(tu.ContainsAny(lower, t.p.USSpellings))
	uk := len(tu.ContainsAny(lower, t.p.UKSpellings))
	switch {
	case us > uk && us > 0:
		lines = append(lines, "• American English spelling patterns detected")
	case uk > us && uk > 0:
		lines = append(lines, "• British English spelling patterns detected")
	}

	for _, r := range t.p.Regions {
		if hits := tu.ContainsAny(lower, r.Expressions); len(hits) > 0 {
			lines = append(lines, fmt.Sprintf("• %s expressions: %s", tu.Title(r.Name), strings.Join(hits, ", ")))
		}
	}

	formal := len(tu.ContainsAny(lower, t.p.Formal))
	informal := len(tu.ContainsAny(lower, t.p.Informal))
	switch {
	case formal > informal+2:
		lines = append(lines, "• Formal writing style detected")
	case informal > formal+2:
		lines = append(lines, "• Informal/conversational style detected")
	}
	return strings.Join(lines, "\n")
}

func (t *Tracker) temporal(content string) string {
	lower := strings.ToLower(content)
	var lines []string
	if dates := tu.FindAll(t.p.DatePatterns, content); len(dates) > 0 {
		lines = append(lines, "• Date references found: "+strings.Join(tu.Head(dates, 3), ", "))
	}
	if hits := tu.ContainsAny(lower, t.p.UrgencyTerms); len(hits) > 0 {
		lines = append(lines, "• Urgency indicators: "+strings.Join(hits, ", "))
	}
	if hits := tu.ContainsAny(lower, t.p.ContextTerms); len(hits) > 0 {
		lines = append(lines, "• Temporal context: "+strings.Join(hits, ", "))
	}
	return strings.Join(lines, "\n")
}

func (t *Tracker) domains(content string) string {
	var lines []string
	urls := t.p.URL.FindAllString(content, -1)
	if len(urls) > 0 {
		lines = append(lines, fmt.Sprintf("• %d URL(s) found", len(urls)))

		var hosts, suspicious []string
		for _, raw := range urls {
			u, err := url.Parse(raw)
			if err != nil {
				continue
			}
			hosts = append(hosts, u.Host)
			for _, bad := range t.p.SuspiciousDomains {
				if strings.Contains(u.Host, bad) {
					suspicious = append(suspicious, u.Host)
					break
				}
			}
		}
		if len(hosts) > 0 {
			lines = append(lines, "• Domains: "+strings.Join(tu.Head(tu.Dedup(hosts), 3), ", "))
		}
		if len(suspicious) > 0 {
			lines = append(lines, "• ⚠️ Suspicious domains detected: "+strings.Join(suspicious, ", "))
		}
	}

	if hits := tu.ContainsAny(strings.ToLower(content), t.p.Shorteners); len(hits) > 0 {
		lines = append(lines, "• URL shorteners used: "+strings.Join(hits, ", "))
	}
	return strings.Join(lines, "\n")
}

func (t *Tracker) propagation(content string) string {
	lower := strings.ToLower(content)
	groups := []struct {
		label string
		terms []string
	}{
		{"Viral language", t.p.ViralTerms},
		{"Call-to-action elements", t.p.CallToAction},
		{"Emotional hooks", t.p.Hooks},
		{"Network amplification language", t.p.Network},
	}
	var lines []string
	for _, g := range groups {
		if hits := tu.ContainsAny(lower, g.terms); len(hits) > 0 {
			lines = append(lines, fmt.Sprintf("• %s: %s", g.label, strings.Join(hits, ", ")))
		}
	}
	return strings.Join(lines, "\n")
}

var sentenceSplit = regexp.MustCompile(`[.!?]+`)

func fingerprint(content string) string {
	if strings.TrimSpace(content) == "" {
		return ""
	}
	words := strings.Fields(content)
	lines := []string{fmt.Sprintf("Length: %d chars, %d words", utf8.RuneCountInString(content), len(words))}

	freq := map[rune]int{}
	var order []rune
	for _, r := range strings.ToLower(content) {
		if !unicode.IsLetter(r) {
			continue
		}
		if freq[r] == 0 {
			order = append(order, r)
		}
		freq[r]++
	}
	if len(order) > 0 {
		sort.SliceStable(order, func(i, j int) bool { return freq[order[i]] > freq[order[j]] })
		var top []string
		for _, r := range tu.Head(order, 5) {
			top = append(top, fmt.Sprintf("%c(%d)", r, freq[r]))
		}
		lines = append(lines, "Top characters: "+strings.Join(top, ", "))
	}

	lines = append(lines, fmt.Sprintf("Structure: %d sentences, %d paragraphs",
		len(sentenceSplit.Split(content, -1)), len(strings.Split(content, "\n\n"))))

	lowerWords := strings.Fields(strings.ToLower(content))
	lines = append(lines, fmt.Sprintf("Vocabulary diversity: %.2f", float64(len(tu.Dedup(lowerWords)))/float64(len(lowerWords))))

	for i := range lines {
		lines[i] = "• " + lines[i]
	}
	return strings.Join(lines, "\n")
}

var timelineRefs = []struct {
	kind string
	re   *regexp.Regexp
}{
	{"date", regexp.MustCompile(`(?i)\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b`)},
	{"recent", regexp.MustCompile(`(?i)\b(?:yesterday|today|this morning|last night)\b`)},
	{"urgent", regexp.MustCompile(`(?i)\b(?:breaking|just in|developing now)\b`)},
}

// BuildTimeline 推断内容传播时间线，时间戳为近似值，按时间升序
func (t *Tracker) BuildTimeline(ctx context.Context, content string) ([]model.TimelineEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	now := t.now()
	events := []model.TimelineEvent{}

	for _, ref := range timelineRefs {
		for _, m := range ref.re.FindAllString(content, -1) {
			events = append(events, model.TimelineEvent{
				Timestamp:   now.Add(-time.Hour),
				EventType:   ref.kind,
				Description: fmt.Sprintf("%s reference: %s", ref.kind, m),
				Confidence:  0.7,
				Source:      "content_analysis",
			})
		}
	}

	lower := strings.ToLower(content)
	if strings.Contains(lower, "rt @") || strings.Contains(lower, "retweet") {
		events = append(events, model.TimelineEvent{
			Timestamp:   now.Add(-30 * time.Minute),
			EventType:   "social_share",
			Description: "Content appears to be shared/retweeted",
			Confidence:  0.8,
			Source:      "pattern_analysis",
		})
	}
	if strings.Contains(lower, "forwarded message") {
		events = append(events, model.TimelineEvent{
			Timestamp:   now.Add(-15 * time.Minute),
			EventType:   "message_forward",
			Description: "Content appears to be forwarded message",
			Confidence:  0.9,
			Source:      "pattern_analysis",
		})
	}

	sort.SliceStable(events, func(i, j int) bool { return events[i].Timestamp.Before(events[j].Timestamp) })
	return events, nil
}
