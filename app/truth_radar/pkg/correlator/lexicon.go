package correlator

// Lexicon 上下文分析使用的词表
type Lexicon struct {
	Sensitive     []string
	RelativeTerms []string
	Months        map[string]int
	Stopwords     map[string]struct{}
}

// DefaultLexicon 面向印度场景的默认词表
func DefaultLexicon() *Lexicon {
	months := []string{
		"january", "february", "march", "april", "may", "june",
		"july", "august", "september", "october", "november", "december",
	}
	monthMap := make(map[string]int, len(months))
	for i, m := range months {
		monthMap[m] = i + 1
	}

	stop := map[string]struct{}{}
	for _, w := range []string{
		"the", "a", "an", "and", "or", "but", "if", "then", "else", "on", "in", "at", "to", "for", "of",
		"from", "by", "with", "as", "is", "are", "was", "were", "be", "been", "it", "this", "that",
		"these", "those", "i", "we", "you", "he", "she", "they", "them", "his", "her", "their",
		"our", "your", "not", "no", "yes",
	} {
		stop[w] = struct{}{}
	}

	return &Lexicon{
		Sensitive: []string{
			// 选举与政治
			"election", "vote", "poll", "eci", "booth", "evm", "manifesto", "rally",
			// 宗教
			"temple", "mosque", "church", "hindu", "muslim", "christian", "sikh", "communal",
			// 公共安全
			"riot", "violence", "curfew", "section 144", "law and order",
			// 健康
			"covid", "vaccine", "virus", "pandemic", "outbreak", "epidemic",
			// 金融诈骗
			"upi", "bank", "otp", "kyc", "fraud", "scam", "lottery",
			// 灾害
			"flood", "earthquake", "cyclone", "heatwave", "landslide",
			// 谣言常见用语
			"breaking", "urgent", "forward", "share", "viral", "alert",
		},
		RelativeTerms: []string{
			"today", "yesterday", "tonight", "this morning", "this evening",
			"last night", "breaking", "just now", "urgent", "immediately",
		},
		Months:    monthMap,
		Stopwords: stop,
	}
}
