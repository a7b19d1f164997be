package engine

import (
	"math"
	"strings"

	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/model"
)

// RetryRecommendation 整体失败时唯一的建议
const RetryRecommendation = "Unable to complete analysis. Please try again later."

var (
	sensationalTerms = []string{"shocking", "unbelievable", "incredible", "amazing", "breaking", "urgent"}
	conspiracyTerms  = []string{"conspiracy", "cover-up", "hidden truth", "they don't want"}
	evidenceTerms    = []string{"source", "study", "research"}
	actionTerms      = []string{"share", "forward", "spread", "tell everyone"}
)

// BasicRisk 基础关键词风险分，每个词只计一次
func BasicRisk(text string) int {
	lower := strings.ToLower(text)
	score := 0
	for _, w := range sensationalTerms {
		if strings.Contains(lower, w) {
			score += 10
		}
	}
	for _, w := range conspiracyTerms {
		if strings.Contains(lower, w) {
			score += 15
		}
	}

	sourced := false
	for _, w := range evidenceTerms {
		if strings.Contains(lower, w) {
			sourced = true
			break
		}
	}
	if !sourced {
		score += 20
	}

	if strings.Count(text, "!") > 3 || strings.Count(text, "?") > 3 {
		score += 10
	}
	for _, w := range actionTerms {
		if strings.Contains(lower, w) {
			score += 10
		}
	}
	return min(100, score)
}

// Credibility 由最终风险分、安全分、手法数与核查结果推导可信度
func Credibility(res *model.AnalysisResult) int {
	c := 80 - float64(res.RiskScore)*0.8
	if res.SafetyAnalysis != nil {
		c = (c + float64(res.SafetyAnalysis.SafetyScore)) / 2
	}
	n := 0
	for _, t := range res.ManipulationTactics {
		if t != "None Detected" {
			n++
		}
	}
	c -= float64(n) * 10
	if len(res.FactChecks) > 0 {
		c += 10
	}
	return max(0, min(100, int(math.RoundToEven(c))))
}

// Threat 风险分到威胁等级
func Threat(risk int) model.ThreatLevel {
	switch {
	case risk >= 70:
		return model.ThreatHigh
	case risk >= 40:
		return model.ThreatMedium
	default:
		return model.ThreatLow
	}
}

// Recommendations 按调用方身份与风险给出建议
func Recommendations(risk int, user model.UserType) []string {
	if user == model.UserAuthority {
		switch {
		case risk > 70:
			return []string{
				"🚨 HIGH RISK: Immediate monitoring recommended",
				"📊 Track spread patterns across platforms",
				"🔔 Consider issuing public alert if widespread",
				"📧 Coordinate with fact-checking organizations",
				"📋 Document for trend analysis",
			}
		case risk > 40:
			return []string{
				"⚠️ MEDIUM RISK: Continue monitoring",
				"📊 Add to watch list for pattern analysis",
				"🔍 Verify with additional sources",
				"📧 Share with relevant departments",
			}
		default:
			return []string{
				"✅ LOW RISK: Standard monitoring sufficient",
				"📊 Log for baseline data",
			}
		}
	}

	switch {
	case risk > 70:
		return []string{
			"🚨 HIGH RISK: Do not share this content",
			"🔍 Verify information from multiple credible sources",
			"📧 Report this content to relevant authorities",
			"📚 Learn about misinformation tactics",
		}
	case risk > 40:
		return []string{
			"⚠️ MEDIUM RISK: Be cautious about sharing",
			"🔍 Cross-check with fact-checking websites",
			"📚 Look for additional context and sources",
			"⏳ Wait for more information before sharing",
		}
	default:
		return []string{
			"✅ LOW RISK: Content appears credible",
			"🔍 Still verify with additional sources if important",
			"📚 Continue learning about information verification",
		}
	}
}
