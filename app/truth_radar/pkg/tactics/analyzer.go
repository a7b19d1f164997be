package tactics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/model"
	tu "github.com/iWorld-y/truth_radar/app/truth_radar/pkg/textutil"
)

// Analyzer 操纵手法拆解
type Analyzer struct {
	cat *Catalog
}

// NewAnalyzer 创建分析器
func NewAnalyzer(cat *Catalog) *Analyzer {
	if cat == nil {
		cat = DefaultCatalog()
	}
	return &Analyzer{cat: cat}
}

// Neutral 分析失败时返回的中性结果
func Neutral(reason string) model.TacticsReport {
	return model.TacticsReport{
		PsychologicalAnalysis: "Analysis error: " + reason,
		AdvancedTactics:       []string{},
		SpreadAnalysis:        "Analysis unavailable",
		TargetAudience:        "Unknown",
		ManipulationScore:     0,
		Detailed:              []model.TacticDetail{},
		CounterStrategies:     []string{},
		RiskAssessment:        "Unable to assess",
	}
}

// AnalyzeTactics 完整的手法分析。内部异常被捕获为中性结果，同时返回 error 供调用方记录
func (a *Analyzer) AnalyzeTactics(content string) (report model.TacticsReport, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tactics analysis panic: %v", r)
			report = Neutral(fmt.Sprint(r))
		}
	}()

	lower := strings.ToLower(content)
	detected := a.detect(lower)
	score := a.score(detected)

	ids := make([]string, 0, len(detected))
	for _, d := range detected {
		ids = append(ids, d.ID)
	}

	return model.TacticsReport{
		PsychologicalAnalysis: a.psychological(lower),
		AdvancedTactics:       ids,
		SpreadAnalysis:        a.spread(lower),
		TargetAudience:        a.audience(lower),
		ManipulationScore:     score,
		Detailed:              detected,
		CounterStrategies:     counterStrategies(detected),
		RiskAssessment:        assessRisk(detected, score),
	}, nil
}

func (a *Analyzer) detect(lower string) []model.TacticDetail {
	out := []model.TacticDetail{}
	for _, t := range a.cat.Tactics {
		matches := tu.FindAll(t.Patterns, lower)
		if len(matches) == 0 {
			continue
		}
		out = append(out, model.TacticDetail{
			ID:                  t.ID,
			Matches:             tu.Head(matches, 5),
			Count:               len(matches),
			Description:         t.Description,
			PsychologicalEffect: t.PsychologicalEffect,
			Severity:            t.Severity,
			CounterStrategy:     t.CounterStrategy,
		})
	}
	return out
}

func (a *Analyzer) psychological(lower string) string {
	var lines []string
	for _, v := range a.cat.Vulnerabilities {
		if tu.AnyMatch(v.Patterns, lower) {
			lines = append(lines, v.Line)
		}
	}
	for _, e := range a.cat.EmotionalStates {
		if tu.AnyMatch(e.Patterns, lower) {
			lines = append(lines, fmt.Sprintf("• Emotional State: Targets %s for manipulation", e.Name))
		}
	}
	if tu.AnyMatch(a.cat.Interference.Patterns, lower) {
		lines = append(lines, a.cat.Interference.Line)
	}
	if len(lines) == 0 {
		return "• No specific psychological targeting detected"
	}
	return strings.Join(lines, "\n")
}

func (a *Analyzer) audience(lower string) string {
	type scored struct {
		name  string
		score int
	}
	var targets []scored
	for _, g := range a.cat.Audiences {
		if n := len(tu.FindAll(g.Patterns, lower)); n > 0 {
			targets = append(targets, scored{g.Name, n})
		}
	}
	if len(targets) == 0 {
		return "General audience - no specific targeting detected"
	}
	sort.SliceStable(targets, func(i, j int) bool { return targets[i].score > targets[j].score })

	var lines []string
	for _, t := range tu.Head(targets, 3) {
		lines = append(lines, fmt.Sprintf("• %s: %d targeting indicators", tu.Title(t.name), t.score))
	}
	return strings.Join(lines, "\n")
}

func (a *Analyzer) spread(lower string) string {
	var lines []string
	for _, g := range a.cat.Spread {
		if found := tu.FindAll(g.Patterns, lower); len(found) > 0 {
			lines = append(lines, fmt.Sprintf("• %s: %s", tu.Title(g.Name), strings.Join(tu.Head(found, 3), ", ")))
		}
	}
	for _, p := range a.cat.Platforms {
		if tu.AnyMatch(p.Patterns, lower) {
			lines = append(lines, fmt.Sprintf("• %s: Optimized for platform sharing", tu.Title(p.Name)))
		}
	}
	if len(lines) == 0 {
		return "• Standard content sharing patterns"
	}
	return strings.Join(lines, "\n")
}

func (a *Analyzer) score(detected []model.TacticDetail) int {
	total := 0.0
	high := 0
	present := make(map[string]bool, len(detected))
	for _, d := range detected {
		w, ok := a.cat.SeverityWeights[d.Severity]
		if !ok {
			w = 5
		}
		total += float64(w) * float64(d.Count) * 1.5
		if d.Severity == model.SeverityHigh {
			high++
		}
		present[d.ID] = true
	}
	if high > 2 {
		total += 30
	}
	for _, pair := range a.cat.DangerousPairs {
		if present[pair[0]] && present[pair[1]] {
			total += 25
		}
	}
	if total > 100 {
		return 100
	}
	return int(total)
}

func counterStrategies(detected []model.TacticDetail) []string {
	var out []string
	hasHigh := false
	for _, d := range detected {
		if d.CounterStrategy != "" {
			out = append(out, fmt.Sprintf("• %s: %s", tu.Title(d.ID), d.CounterStrategy))
		}
		if d.Severity == model.SeverityHigh {
			hasHigh = true
		}
	}
	if len(detected) > 3 {
		out = append(out,
			"• Multiple Tactics Detected: Use extra caution and verify with multiple sources",
			"• Consider the motivation: Ask who benefits from you believing this information",
			"• Take time: Don't make immediate decisions based on emotional content",
		)
	}
	if hasHigh {
		out = append(out, "• Learn more about manipulation tactics to build resistance")
	}
	if len(out) == 0 {
		return []string{"• No specific counter-strategies needed"}
	}
	return out
}

func assessRisk(detected []model.TacticDetail, score int) string {
	var level string
	var factors []string
	switch {
	case score >= 80:
		level = "CRITICAL"
		factors = append(factors, "Extremely high manipulation score")
	case score >= 60:
		level = "HIGH"
		factors = append(factors, "High manipulation score")
	case score >= 40:
		level = "MEDIUM"
		factors = append(factors, "Moderate manipulation indicators")
	default:
		level = "LOW"
		factors = append(factors, "Low manipulation score")
	}

	high := 0
	present := make(map[string]bool, len(detected))
	for _, d := range detected {
		if d.Severity == model.SeverityHigh {
			high++
		}
		present[d.ID] = true
	}
	if high > 0 {
		factors = append(factors, fmt.Sprintf("%d high-severity tactics detected", high))
	}
	if len(detected) > 5 {
		factors = append(factors, fmt.Sprintf("Multiple tactics used (%d different types)", len(detected)))
	}
	if present["emotional_manipulation"] && present["urgency_tactics"] {
		factors = append(factors, "Emotional manipulation combined with urgency tactics")
	}
	if present["authority_undermining"] {
		factors = append(factors, "Attempts to undermine credible authorities")
	}

	return fmt.Sprintf("Risk Level: %s\nManipulation Score: %d/100\nRisk Factors: %s",
		level, score, strings.Join(factors, ", "))
}
