package security

import (
	"errors"
	"fmt"
	"html"
	"regexp"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"

	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/model"
	tu "github.com/iWorld-y/truth_radar/app/truth_radar/pkg/textutil"
)

// ErrValidation 输入未通过入口校验
var ErrValidation = errors.New("content validation failed")

// ValidationError 带原因的校验错误
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func (e *ValidationError) Unwrap() error { return ErrValidation }

var sentenceSplit = regexp.MustCompile(`[.!?]+`)

// Heuristics 纯函数式的安全与操纵启发式检测
type Heuristics struct {
	cat    *Catalog
	maxLen int
	minLen int
	policy *bluemonday.Policy
}

// NewHeuristics 创建检测器，maxLen/minLen 为入口校验的字符数上下限
func NewHeuristics(cat *Catalog, maxLen, minLen int) *Heuristics {
	if cat == nil {
		cat = DefaultCatalog()
	}
	if maxLen <= 0 {
		maxLen = 10000
	}
	if minLen <= 0 {
		minLen = 10
	}
	return &Heuristics{
		cat:    cat,
		maxLen: maxLen,
		minLen: minLen,
		policy: bluemonday.StrictPolicy(),
	}
}

// Available 检测器只依赖内存规则，始终可用
func (h *Heuristics) Available() bool { return h.cat != nil }

// ValidateInput 入口校验，返回 nil 表示通过
func (h *Heuristics) ValidateInput(content string) error {
	if tu.RuneLen(content) > h.maxLen {
		return &ValidationError{Reason: fmt.Sprintf("Content too long. Maximum %d characters allowed.", h.maxLen)}
	}
	if tu.RuneLen(strings.TrimSpace(content)) < h.minLen {
		return &ValidationError{Reason: fmt.Sprintf("Content too short. Minimum %d characters required.", h.minLen)}
	}

	lower := strings.ToLower(content)
	if tu.AnyMatch(h.cat.Blocked, lower) {
		return &ValidationError{Reason: "Content contains potentially malicious elements."}
	}

	words := strings.Fields(content)
	if len(words) > 0 {
		counts := make(map[string]int, len(words))
		maxRep := 0
		for _, w := range words {
			counts[w]++
			if counts[w] > maxRep {
				maxRep = counts[w]
			}
		}
		if float64(maxRep) > float64(len(words))*0.3 {
			return &ValidationError{Reason: "Content appears to be spam or excessively repetitive."}
		}
	}
	return nil
}

// Sanitize 去除 HTML 标签并合并空白，输出为纯文本
func (h *Heuristics) Sanitize(content string) string {
	// bluemonday 的输出是转义后的 HTML，这里还原成纯文本以便后续规则匹配
	stripped := html.UnescapeString(h.policy.Sanitize(content))
	return tu.CollapseSpace(stripped)
}

// CheckSafety 内容安全检查
func (h *Heuristics) CheckSafety(content string) model.SafetyReport {
	lower := strings.ToLower(content)
	var categories, words []string
	score := 100

	for _, c := range h.cat.Unsafe {
		matches := tu.FindAll(c.Patterns, lower)
		if len(matches) == 0 {
			continue
		}
		categories = append(categories, c.Name)
		words = append(words, matches...)
		score -= len(matches) * 15
	}

	if h.cat.Email.MatchString(content) {
		categories = append(categories, "personal_info")
		score -= 10
	}
	if h.cat.Phone.MatchString(content) {
		categories = append(categories, "personal_info")
		score -= 10
	}

	if capsRatio(content) > 0.5 {
		categories = append(categories, "aggressive_tone")
		score -= 20
	}

	if score < 0 {
		score = 0
	}
	categories = tu.Dedup(categories)

	return model.SafetyReport{
		IsSafe:            score >= 70 && len(categories) == 0,
		SafetyScore:       score,
		FlaggedCategories: categories,
		FlaggedWords:      tu.Dedup(words),
		Recommendations:   h.safetyAdvice(categories),
	}
}

func (h *Heuristics) safetyAdvice(categories []string) []string {
	flagged := make(map[string]bool, len(categories))
	for _, c := range categories {
		flagged[c] = true
	}
	out := []string{}
	for _, a := range h.cat.SafetyAdvice {
		if flagged[a.Category] {
			out = append(out, a.Text)
		}
	}
	return out
}

func capsRatio(content string) float64 {
	total, upper := 0, 0
	for _, r := range content {
		total++
		if unicode.IsUpper(r) {
			upper++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(upper) / float64(total)
}

// AnalyzeStructure 文本结构统计
func (h *Heuristics) AnalyzeStructure(content string) model.StructureReport {
	sentences := len(sentenceSplit.Split(content, -1))
	paragraphs := len(strings.Split(content, "\n\n"))
	words := strings.Fields(content)

	denom := sentences
	if denom < 1 {
		denom = 1
	}
	avg := float64(len(words)) / float64(denom)

	capsWords := 0
	for _, w := range words {
		if tu.RuneLen(w) > 1 && tu.IsUpperWord(w) {
			capsWords++
		}
	}
	exclamations := strings.Count(content, "!")
	questions := strings.Count(content, "?")

	complexity := int(avg * 2)
	if complexity > 100 {
		complexity = 100
	}

	flags := []string{}
	if float64(exclamations) > float64(sentences)*0.3 {
		flags = append(flags, "excessive_exclamation")
	}
	if float64(questions) > float64(sentences)*0.4 {
		flags = append(flags, "excessive_questions")
	}
	if float64(capsWords) > float64(len(words))*0.1 {
		flags = append(flags, "excessive_capitalization")
	}
	if avg > 25 {
		flags = append(flags, "overly_complex")
	} else if avg < 5 {
		flags = append(flags, "overly_simple")
	}

	return model.StructureReport{
		WordCount:         len(words),
		SentenceCount:     sentences,
		ParagraphCount:    paragraphs,
		AvgSentenceLength: avg,
		ComplexityScore:   complexity,
		ExclamationCount:  exclamations,
		QuestionCount:     questions,
		CapsWords:         capsWords,
		StructureFlags:    flags,
	}
}

// DetectManipulation 加权操纵模式检测
func (h *Heuristics) DetectManipulation(content string) model.ManipulationReport {
	lower := strings.ToLower(content)
	patterns := []model.PatternMatch{}
	score := 0

	for _, c := range h.cat.Manipulation {
		matches := tu.FindAll(c.Patterns, lower)
		if len(matches) == 0 {
			continue
		}
		patterns = append(patterns, model.PatternMatch{
			Category: c.Name,
			Matches:  matches,
			Count:    len(matches),
			Weight:   c.Weight,
		})
		score += len(matches) * c.Weight
	}

	// 有论断却没有出处
	if tu.AnyMatch(h.cat.ClaimPatterns, lower) && !tu.AnyMatch(h.cat.SourcePatterns, lower) {
		patterns = append(patterns, model.PatternMatch{
			Category: "unsubstantiated_claims",
			Matches:  []string{"unsourced claims"},
			Count:    1,
			Weight:   20,
		})
		score += 20
	}

	if matches := tu.FindAll(h.cat.BandwagonPatterns, lower); len(matches) > 0 {
		patterns = append(patterns, model.PatternMatch{
			Category: "bandwagon_effect",
			Matches:  matches,
			Count:    len(matches),
			Weight:   12,
		})
		score += len(matches) * 12
	}

	if score > 100 {
		score = 100
	}

	return model.ManipulationReport{
		Patterns:          patterns,
		ManipulationScore: score,
		RiskLevel:         manipulationRisk(score),
		Summary:           summarize(patterns),
	}
}

func manipulationRisk(score int) string {
	switch {
	case score > 70:
		return "HIGH"
	case score > 40:
		return "MEDIUM"
	default:
		return "LOW"
	}
}

func summarize(patterns []model.PatternMatch) []string {
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		name := tu.Title(p.Category)
		if p.Count == 1 {
			out = append(out, name+" detected")
		} else {
			out = append(out, fmt.Sprintf("%s detected (%d instances)", name, p.Count))
		}
	}
	return out
}
