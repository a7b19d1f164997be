package origin

import (
	"regexp"

	tu "github.com/iWorld-y/truth_radar/app/truth_radar/pkg/textutil"
)

// Platform 平台特征
type Platform struct {
	Name     string
	Patterns []*regexp.Regexp
}

// Region 地域用语
type Region struct {
	Name        string
	Expressions []string
}

// Patterns 溯源分析的静态规则
type Patterns struct {
	Platforms         []Platform
	SuspiciousDomains []string
	Shorteners        []string

	USSpellings []string
	UKSpellings []string
	Regions     []Region
	Formal      []string
	Informal    []string

	DatePatterns []*regexp.Regexp
	UrgencyTerms []string
	ContextTerms []string

	ViralTerms   []string
	CallToAction []string
	Hooks        []string
	Network      []string

	URL *regexp.Regexp
}

func ci(patterns ...string) []*regexp.Regexp {
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, "(?i)"+p)
	}
	return tu.MustCompileAll(out...)
}

// DefaultPatterns 默认规则
func DefaultPatterns() *Patterns {
	return &Patterns{
		Platforms: []Platform{
			{"twitter", ci(`@\w+`, `#\w+`, `RT\s+@`, `twitter\.com/\w+/status/\d+`)},
			{"facebook", ci(`facebook\.com/\w+`, `fb\.me/\w+`, `\bFB\b`, `shared a post`)},
			{"instagram", ci(`instagram\.com/p/\w+`, `instagr\.am/p/\w+`, `#\w+`, `@\w+`)},
			{"whatsapp", ci(`forwarded message`, `forward this`, `share with everyone`, `wa\.me/\w+`)},
			{"telegram", ci(`t\.me/\w+`, `telegram\.me/\w+`, `channel:`, `@\w+channel`)},
			{"youtube", ci(`youtube\.com/watch\?v=\w+`, `youtu\.be/\w+`, `subscribe to my channel`, `like and subscribe`)},
			{"tiktok", ci(`tiktok\.com/@\w+`, `#fyp`, `#foryou`, `viral on TikTok`)},
		},
		SuspiciousDomains: []string{
			"fakenews.com", "conspiracy.net", "truthexposed.info",
			"alternative-facts.org", "realtruth.blog", "hidden-news.site",
		},
		Shorteners: []string{"bit.ly", "tinyurl.com", "short.link", "t.co", "goo.gl"},

		USSpellings: []string{"color", "honor", "center", "defense", "analyze"},
		UKSpellings: []string{"colour", "honour", "centre", "defence", "analyse"},
		Regions: []Region{
			{"american", []string{"y'all", "gonna", "wanna", "awesome", "dude"}},
			{"british", []string{"bloody", "brilliant", "mate", "cheers", "bloke"}},
			{"australian", []string{"mate", "g'day", "bloody", "fair dinkum"}},
			{"indian", []string{"prepone", "good name", "out of station", "do the needful"}},
		},
		Formal:   []string{"furthermore", "however", "nevertheless", "consequently", "therefore"},
		Informal: []string{"yeah", "nope", "gonna", "wanna", "stuff", "things"},

		DatePatterns: ci(
			`\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b`,
			`\b\d{4}[/-]\d{1,2}[/-]\d{1,2}\b`,
			`\b(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\w*\s+\d{1,2},?\s*\d{4}\b`,
		),
		UrgencyTerms: []string{"breaking", "just in", "urgent", "developing", "live", "now", "immediate"},
		ContextTerms: []string{"yesterday", "today", "tomorrow", "this morning", "last night", "currently", "recently"},

		ViralTerms:   []string{"share", "retweet", "forward", "spread the word", "tell everyone", "viral", "trending"},
		CallToAction: []string{"click here", "read more", "sign up", "subscribe", "follow", "like and share"},
		Hooks:        []string{"shocking", "unbelievable", "amazing", "incredible", "must see", "you won't believe"},
		Network:      []string{"everyone is talking", "going viral", "millions are sharing", "breaking the internet"},

		URL: regexp.MustCompile(`(?i)https?://(?:[-\w.])+(?:[:\d]+)?(?:/(?:[\w/_.])*(?:\?(?:[\w&=%.])*)?(?:#(?:[\w.])*)?)?`),
	}
}
