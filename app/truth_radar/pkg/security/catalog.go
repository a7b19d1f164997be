package security

import (
	"regexp"

	tu "github.com/iWorld-y/truth_radar/app/truth_radar/pkg/textutil"
)

// Category 一组同类正则
type Category struct {
	Name     string
	Patterns []*regexp.Regexp
}

// WeightedCategory 带权重的操纵类别
type WeightedCategory struct {
	Name     string
	Patterns []*regexp.Regexp
	Weight   int
}

// Catalog 安全与操纵检测的静态规则，启动时构建一次，只读
type Catalog struct {
	Blocked      []*regexp.Regexp
	Unsafe       []Category
	Manipulation []WeightedCategory

	ClaimPatterns     []*regexp.Regexp
	SourcePatterns    []*regexp.Regexp
	BandwagonPatterns []*regexp.Regexp

	Email *regexp.Regexp
	Phone *regexp.Regexp

	// SafetyAdvice 按类别给出的安全提示，顺序固定
	SafetyAdvice []Advice
}

// Advice 类别对应的提示语
type Advice struct {
	Category string
	Text     string
}

// DefaultCatalog 构建默认规则目录
func DefaultCatalog() *Catalog {
	return &Catalog{
		Blocked: tu.MustCompileAll(
			`(?i)<script.*?>.*?</script>`,
			`(?i)javascript:`,
			`(?i)data:text/html`,
			`(?i)vbscript:`,
			`(?i)onload=`,
			`(?i)onerror=`,
		),
		Unsafe: []Category{
			{Name: "violence", Patterns: tu.MustCompileAll(
				`(?i)\b(?:kill|murder|violence|harm|attack|assault)\b`,
				`(?i)\b(?:bomb|weapon|gun|knife|explosive)\b`,
			)},
			{Name: "hate_speech", Patterns: tu.MustCompileAll(
				`(?i)\b(?:hate|racist|discrimination|bigot)\b`,
				`(?i)\b(?:nazi|fascist|supremacist)\b`,
			)},
			{Name: "harassment", Patterns: tu.MustCompileAll(
				`(?i)\b(?:harass|stalk|threaten|intimidate)\b`,
				`(?i)\b(?:doxx|dox|expose|leak)\b`,
			)},
			{Name: "adult_content", Patterns: tu.MustCompileAll(
				`(?i)\b(?:porn|sex|nude|adult|explicit)\b`,
				`(?i)\b(?:xxx|nsfw|mature)\b`,
			)},
			{Name: "spam", Patterns: tu.MustCompileAll(
				`(?i)\b(?:click here|buy now|free money|urgent|limited time)\b`,
				`(?i)\b(?:congratulations|winner|prize|lottery)\b`,
			)},
		},
		Manipulation: []WeightedCategory{
			{Name: "emotional_manipulation", Weight: 15, Patterns: tu.MustCompileAll(
				`(?i)\b(?:shocking|outrageous|disgusting|terrifying|heartbreaking|infuriating)\b`,
				`(?i)\b(?:devastated|horrified|sickening|appalling)\b`,
			)},
			{Name: "urgency_tactics", Weight: 12, Patterns: tu.MustCompileAll(
				`(?i)\b(?:urgent|quickly|immediately|act now|before it's too late)\b`,
				`(?i)\b(?:breaking|alert|emergency|crisis)\b`,
			)},
			{Name: "authority_undermining", Weight: 18, Patterns: tu.MustCompileAll(
				`(?i)\b(?:mainstream media lies|experts are wrong|don't trust|cover-up)\b`,
				`(?i)\b(?:don't want you to know|hidden truth|conspiracy)\b`,
			)},
			{Name: "false_consensus", Weight: 10, Patterns: tu.MustCompileAll(
				`(?i)\b(?:everyone knows|everybody says|all experts agree)\b`,
				`(?i)\b(?:millions believe|thousands confirm|widely accepted)\b`,
			)},
			{Name: "fear_mongering", Weight: 14, Patterns: tu.MustCompileAll(
				`(?i)\b(?:dangerous|deadly|toxic|poison|contaminated)\b`,
				`(?i)\b(?:epidemic|pandemic|outbreak|spreading fast)\b`,
			)},
			{Name: "false_urgency", Weight: 13, Patterns: tu.MustCompileAll(
				`(?i)\b(?:share before deleted|going viral|disappearing soon)\b`,
				`(?i)\b(?:limited time|expires today|act fast)\b`,
			)},
		},
		ClaimPatterns:     tu.MustCompileAll(`\bstudies show\b`, `\bexperts say\b`, `\bresearch proves\b`),
		SourcePatterns:    tu.MustCompileAll(`\baccording to\b`, `\bsource:\b`, `\bcited in\b`),
		BandwagonPatterns: tu.MustCompileAll(`\beveryone is doing\b`, `\bdon't be left out\b`, `\bjoin millions\b`),

		Email: regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`),
		Phone: regexp.MustCompile(`\b\d{3}[-.]?\d{3}[-.]?\d{4}\b`),

		SafetyAdvice: []Advice{
			{"violence", "Content contains violent language or threats"},
			{"hate_speech", "Content may contain hate speech or discriminatory language"},
			{"harassment", "Content may constitute harassment or intimidation"},
			{"adult_content", "Content may not be suitable for all audiences"},
			{"spam", "Content appears to be promotional or spam"},
			{"personal_info", "Content may contain personal information"},
			{"aggressive_tone", "Content uses aggressive or confrontational tone"},
		},
	}
}
