package tactics

import (
	"regexp"

	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/model"
	tu "github.com/iWorld-y/truth_radar/app/truth_radar/pkg/textutil"
)

// Tactic 手法目录条目
type Tactic struct {
	ID                  string
	Patterns            []*regexp.Regexp
	Description         string
	PsychologicalEffect string
	Severity            model.Severity
	CounterStrategy     string
}

// Group 具名的一组正则
type Group struct {
	Name     string
	Patterns []*regexp.Regexp
}

// Signal 命中即输出固定文案的规则
type Signal struct {
	Patterns []*regexp.Regexp
	Line     string
}

// Catalog 手法拆解所需的全部静态规则，只读
type Catalog struct {
	Tactics         []Tactic
	Vulnerabilities []Signal
	EmotionalStates []Group
	Interference    Signal
	Audiences       []Group
	Spread          []Group
	Platforms       []Group

	SeverityWeights map[model.Severity]int
	// DangerousPairs 同时出现时额外加分的手法组合
	DangerousPairs [][2]string
}

func wrap(alternatives ...string) []*regexp.Regexp {
	patterns := make([]string, 0, len(alternatives))
	for _, a := range alternatives {
		patterns = append(patterns, `(?i)\b(?:`+a+`)\b`)
	}
	return tu.MustCompileAll(patterns...)
}

// DefaultCatalog 构建默认手法目录
func DefaultCatalog() *Catalog {
	return &Catalog{
		Tactics: []Tactic{
			{
				ID: "emotional_manipulation",
				Patterns: wrap(
					`shocking|outrageous|disgusting|terrifying|heartbreaking|infuriating|devastating`,
					`horrified|sickening|appalling|disturbing|traumatic|devastating`,
					`rage|fury|anger|hate|disgust|terror|panic|fear`,
				),
				Description:         "Uses extreme emotional language to bypass rational thinking",
				PsychologicalEffect: "Triggers emotional responses that override critical thinking",
				Severity:            model.SeverityHigh,
				CounterStrategy:     "Take time to process information emotionally before making decisions",
			},
			{
				ID: "urgency_tactics",
				Patterns: wrap(
					`urgent|quickly|immediately|act now|before it's too late|limited time`,
					`breaking|alert|emergency|crisis|deadline|expires`,
					`hurry|rush|fast|instant|right now|don't wait`,
				),
				Description:         "Creates artificial time pressure to prevent careful consideration",
				PsychologicalEffect: "Prevents deliberate decision-making through time pressure",
				Severity:            model.SeverityHigh,
				CounterStrategy:     "Take time to verify claims regardless of stated urgency",
			},
			{
				ID: "authority_appeal",
				Patterns: wrap(
					`experts say|scientists confirm|doctors recommend|studies show`,
					`research proves|data shows|statistics reveal|analysis indicates`,
					`according to|as reported by|officials state|sources confirm`,
				),
				Description:         "Claims authority support without providing specific sources",
				PsychologicalEffect: "Exploits trust in authority figures and institutions",
				Severity:            model.SeverityMedium,
				CounterStrategy:     "Ask for specific sources and verify their credibility",
			},
			{
				ID: "authority_undermining",
				Patterns: wrap(
					`mainstream media lies|experts are wrong|don't trust|cover-up`,
					`don't want you to know|hidden truth|conspiracy|suppressed`,
					`fake news|propaganda|controlled|manipulated|censored`,
				),
				Description:         "Attacks credible sources to promote alternative narratives",
				PsychologicalEffect: "Creates distrust in legitimate authorities and institutions",
				Severity:            model.SeverityHigh,
				CounterStrategy:     "Evaluate sources independently and check multiple credible outlets",
			},
			{
				ID: "bandwagon_effect",
				Patterns: wrap(
					`everyone knows|everybody says|all experts agree|millions believe`,
					`thousands confirm|widely accepted|common knowledge|obvious to all`,
					`join millions|don't be left out|everyone is doing|trending`,
				),
				Description:         "Claims widespread acceptance without evidence",
				PsychologicalEffect: "Exploits human tendency to conform to perceived group behavior",
				Severity:            model.SeverityMedium,
				CounterStrategy:     "Seek independent verification rather than following crowds",
			},
			{
				ID: "false_dichotomy",
				Patterns: wrap(
					`either.*or|only two choices|must choose|no other option`,
					`black and white|us vs them|good vs evil|right vs wrong`,
					`with us or against us|no middle ground|simple choice`,
				),
				Description:         "Presents only two options when more exist",
				PsychologicalEffect: "Limits critical thinking by oversimplifying complex issues",
				Severity:            model.SeverityMedium,
				CounterStrategy:     "Look for additional options and nuanced perspectives",
			},
			{
				ID: "fear_mongering",
				Patterns: wrap(
					`dangerous|deadly|toxic|poison|contaminated|fatal`,
					`epidemic|pandemic|outbreak|spreading fast|contagious`,
					`threat|risk|danger|hazard|warning|caution|alarm`,
				),
				Description:         "Exploits fear to motivate behavior or belief changes",
				PsychologicalEffect: "Triggers fight-or-flight responses that impair judgment",
				Severity:            model.SeverityHigh,
				CounterStrategy:     "Assess actual risk levels using credible data and statistics",
			},
			{
				ID: "cherry_picking",
				Patterns: wrap(
					`one study shows|a report says|an expert claims|some evidence`,
					`this proves|clearly shows|obviously indicates|demonstrates`,
					`the data shows|statistics prove|numbers don't lie`,
				),
				Description:         "Selects only supporting evidence while ignoring contrary data",
				PsychologicalEffect: "Creates false impression of scientific consensus",
				Severity:            model.SeverityMedium,
				CounterStrategy:     "Look for systematic reviews and meta-analyses",
			},
			{
				ID: "ad_hominem",
				Patterns: wrap(
					`stupid|ignorant|naive|foolish|brainwashed|sheep`,
					`corrupt|biased|paid|shill|puppet|controlled`,
					`dishonest|lying|deceiving|manipulating|hiding`,
				),
				Description:         "Attacks the person rather than addressing their arguments",
				PsychologicalEffect: "Diverts attention from evidence to personal characteristics",
				Severity:            model.SeverityMedium,
				CounterStrategy:     "Focus on the evidence and arguments, not personal attacks",
			},
			{
				ID: "loaded_language",
				Patterns: wrap(
					`toxic|evil|corrupt|sinister|malicious|vicious`,
					`pure|innocent|natural|clean|safe|harmless`,
					`freedom|liberty|rights|truth|justice|patriotic`,
				),
				Description:         "Uses emotionally charged words to influence perception",
				PsychologicalEffect: "Shapes emotional response through word choice",
				Severity:            model.SeverityMedium,
				CounterStrategy:     "Look past emotional language to underlying facts",
			},
			{
				ID: "scarcity_manipulation",
				Patterns: wrap(
					`limited time|exclusive|rare|scarce|running out`,
					`only.*left|last chance|won't last|disappearing`,
					`special offer|unique opportunity|one-time only`,
				),
				Description:         "Creates false sense of scarcity to motivate immediate action",
				PsychologicalEffect: "Triggers loss aversion and impulsive decision-making",
				Severity:            model.SeverityMedium,
				CounterStrategy:     "Research availability and alternatives before acting",
			},
			{
				ID: "false_expertise",
				Patterns: wrap(
					`as an expert|my research shows|I discovered|my analysis`,
					`trust me|believe me|I know|my experience|insider knowledge`,
					`years of study|extensive research|deep investigation`,
				),
				Description:         "Claims expertise without providing credentials or evidence",
				PsychologicalEffect: "Exploits respect for expertise without demonstrating qualifications",
				Severity:            model.SeverityMedium,
				CounterStrategy:     "Verify credentials and look for peer-reviewed work",
			},
		},
		Vulnerabilities: []Signal{
			{
				Patterns: wrap(`as I always said|proves me right|I knew it|exactly what I thought`, `confirms|validates|supports what|backs up my`),
				Line:     "• Confirmation Bias: Reinforces existing beliefs",
			},
			{
				Patterns: wrap(`millions of people|thousands agree|everyone believes|popular opinion`, `trending|viral|widespread|commonly accepted`),
				Line:     "• Social Proof: Uses perceived popularity as validation",
			},
			{
				Patterns: wrap(`don't think about|ignore|dismiss|forget about`, `doesn't matter|not important|irrelevant|meaningless`),
				Line:     "• Cognitive Dissonance: Encourages ignoring contradictory evidence",
			},
		},
		EmotionalStates: []Group{
			{Name: "anger", Patterns: wrap(`angry|furious|outraged|mad|pissed`)},
			{Name: "fear", Patterns: wrap(`scared|afraid|worried|anxious|terrified`)},
			{Name: "sadness", Patterns: wrap(`sad|depressed|hopeless|devastated|heartbroken`)},
			{Name: "greed", Patterns: wrap(`money|profit|wealth|rich|financial gain`)},
		},
		Interference: Signal{
			Patterns: wrap(`don't think|just believe|trust blindly|follow orders`, `no time to research|obvious choice|simple decision`),
			Line:     "• Decision Interference: Discourages critical thinking",
		},
		Audiences: []Group{
			{Name: "parents", Patterns: wrap(`your children|kids|babies|infants|toddlers|teenagers`, `protect your family|child safety|parental rights`)},
			{Name: "elderly", Patterns: wrap(`seniors|elderly|retirement|social security|medicare`, `health issues|medical concerns|aging|golden years`)},
			{Name: "political", Patterns: wrap(`liberals|conservatives|democrats|republicans|government`, `politics|election|voting|democracy|freedom|rights`)},
			{Name: "health_conscious", Patterns: wrap(`health|wellness|fitness|nutrition|natural|organic`, `medicine|treatment|cure|healing|therapy`)},
			{Name: "financially_stressed", Patterns: wrap(`money|income|debt|bills|expenses|financial`, `poor|struggling|economic|recession|unemployment`)},
		},
		Spread: []Group{
			{Name: "shareability", Patterns: wrap(`share|retweet|forward|send|pass along`, `tell your friends|spread the word|let others know`)},
			{Name: "engagement_hooks", Patterns: wrap(`comment below|what do you think|agree or disagree`, `like if you|share if you agree|retweet if`)},
			{Name: "controversy", Patterns: wrap(`controversial|shocking|banned|censored|forbidden`, `they don't want|hidden truth|secret information`)},
			{Name: "urgency_spread", Patterns: wrap(`before it's deleted|share quickly|going viral`, `limited time|disappearing soon|act fast`)},
		},
		Platforms: []Group{
			{Name: "social_media", Patterns: wrap(`#\w+|@\w+|hashtag|trending|viral`)},
			{Name: "messaging_apps", Patterns: wrap(`forward|broadcast|group chat|family group`)},
			{Name: "email_chains", Patterns: wrap(`forward this|send to everyone|email your friends`)},
		},
		SeverityWeights: map[model.Severity]int{
			model.SeverityHigh:   25,
			model.SeverityMedium: 15,
			model.SeverityLow:    5,
		},
		DangerousPairs: [][2]string{
			{"emotional_manipulation", "urgency_tactics"},
			{"authority_undermining", "fear_mongering"},
			{"false_expertise", "authority_appeal"},
		},
	}
}
