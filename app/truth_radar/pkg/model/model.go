package model

import (
	"strings"
	"time"
)

// AnalysisLevel 分析深度
type AnalysisLevel string

const (
	LevelQuick AnalysisLevel = "Quick Scan"
	LevelDeep  AnalysisLevel = "Deep Forensics"
)

// ParseLevel 兼容前端的多种写法，未知值按快速扫描处理
func ParseLevel(s string) AnalysisLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "deep forensics", "deep analysis", "deep":
		return LevelDeep
	default:
		return LevelQuick
	}
}

// UserType 调用方身份
type UserType string

const (
	UserPublic    UserType = "public"
	UserAuthority UserType = "authority"
)

// ThreatLevel 威胁等级
type ThreatLevel string

const (
	ThreatLow     ThreatLevel = "LOW"
	ThreatMedium  ThreatLevel = "MEDIUM"
	ThreatHigh    ThreatLevel = "HIGH"
	ThreatUnknown ThreatLevel = "UNKNOWN"
)

// Severity 手法严重程度
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// AnalysisRequest 单次分析请求
type AnalysisRequest struct {
	Text          string        `json:"text"`
	URL           string        `json:"url,omitempty"`
	Language      string        `json:"language"`
	Level         AnalysisLevel `json:"analysis_level"`
	EnableContext bool          `json:"enable_context"`
	TrackOrigin   bool          `json:"track_origin"`
	SafetyCheck   bool          `json:"safety_check"`
	UserType      UserType      `json:"user_type"`
}

// Normalize 填充默认值
func (r *AnalysisRequest) Normalize() {
	if r.Language == "" {
		r.Language = "en"
	}
	if r.Level != LevelDeep {
		r.Level = ParseLevel(string(r.Level))
	}
	if r.UserType != UserAuthority {
		r.UserType = UserPublic
	}
}

// DeepRequested 深度取证阶段是否需要执行
func (r *AnalysisRequest) DeepRequested() bool {
	return r.Level == LevelDeep || r.UserType == UserAuthority
}

// FactCheck 第三方事实核查结论
type FactCheck struct {
	Title     string `json:"title"`
	URL       string `json:"url"`
	Publisher string `json:"publisher"`
	Verdict   string `json:"verdict"`
	Date      string `json:"date"`
}

// SourceLink 模型给出的参考来源
type SourceLink struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

// ReportingContact 举报渠道
type ReportingContact struct {
	Description string `json:"description"`
	Email       string `json:"email"`
}

// TimelineEvent 取证时间线事件
type TimelineEvent struct {
	Timestamp   time.Time `json:"timestamp"`
	EventType   string    `json:"event_type"`
	Description string    `json:"description"`
	Confidence  float64   `json:"confidence"`
	Source      string    `json:"source"`
}

// SafetyReport 内容安全检查结果
type SafetyReport struct {
	IsSafe            bool     `json:"is_safe"`
	SafetyScore       int      `json:"safety_score"`
	FlaggedCategories []string `json:"flagged_categories"`
	FlaggedWords      []string `json:"flagged_words"`
	Recommendations   []string `json:"recommendations"`
}

// StructureReport 文本结构统计
type StructureReport struct {
	WordCount         int      `json:"word_count"`
	SentenceCount     int      `json:"sentence_count"`
	ParagraphCount    int      `json:"paragraph_count"`
	AvgSentenceLength float64  `json:"avg_sentence_length"`
	ComplexityScore   int      `json:"complexity_score"`
	ExclamationCount  int      `json:"exclamation_count"`
	QuestionCount     int      `json:"question_count"`
	CapsWords         int      `json:"caps_words"`
	StructureFlags    []string `json:"structure_flags"`
}

// PatternMatch 单个操纵类别的命中
type PatternMatch struct {
	Category string   `json:"category"`
	Matches  []string `json:"matches"`
	Count    int      `json:"count"`
	Weight   int      `json:"weight"`
}

// ManipulationReport 操纵模式检测结果，Patterns 保持检测顺序
type ManipulationReport struct {
	Patterns          []PatternMatch `json:"patterns"`
	ManipulationScore int            `json:"manipulation_score"`
	RiskLevel         string         `json:"risk_level"`
	Summary           []string       `json:"summary"`
}

// Categories 按检测顺序返回命中的类别
func (m *ManipulationReport) Categories() []string {
	out := make([]string, 0, len(m.Patterns))
	for _, p := range m.Patterns {
		out = append(out, p.Category)
	}
	return out
}

// TemporalIndicators 时间信号
type TemporalIndicators struct {
	DatesFound       []string `json:"dates_found"`
	RelativeTerms    []string `json:"relative_time_terms"`
	RecentWithinDays int      `json:"recent_within_days"`
}

// CorrelationSignals 关联打分的原始信号
type CorrelationSignals struct {
	SensitiveHitsCount int `json:"sensitive_hits_count"`
	RelativeTermsCount int `json:"relative_terms_count"`
	RecentDatesCount   int `json:"recent_dates_count"`
}

// EventsCorrelation 启发式事件关联
type EventsCorrelation struct {
	RiskLevel string             `json:"risk_level"`
	Signals   CorrelationSignals `json:"signals"`
}

// ContextReport 上下文分析结果，Error 非空表示该阶段降级
type ContextReport struct {
	Enabled       bool               `json:"enabled"`
	Topics        []string           `json:"topics,omitempty"`
	Temporal      TemporalIndicators `json:"temporal_indicators"`
	SensitiveHits []string           `json:"sensitive_context_hits,omitempty"`
	Correlation   EventsCorrelation  `json:"events_correlation"`
	OracleContext map[string]any     `json:"oracle_context,omitempty"`
	Confidence    float64            `json:"confidence"`
	Error         string             `json:"error,omitempty"`
}

// TacticDetail 单个手法的检测详情
type TacticDetail struct {
	ID                  string   `json:"id"`
	Matches             []string `json:"matches"`
	Count               int      `json:"count"`
	Description         string   `json:"description"`
	PsychologicalEffect string   `json:"psychological_effect"`
	Severity            Severity `json:"severity"`
	CounterStrategy     string   `json:"counter_strategy"`
}

// TacticsReport 手法拆解结果
type TacticsReport struct {
	PsychologicalAnalysis string         `json:"psychological_analysis"`
	AdvancedTactics       []string       `json:"advanced_tactics"`
	SpreadAnalysis        string         `json:"spread_analysis"`
	TargetAudience        string         `json:"target_audience"`
	ManipulationScore     int            `json:"manipulation_score"`
	Detailed              []TacticDetail `json:"detected_tactics_detailed"`
	CounterStrategies     []string       `json:"counter_strategies"`
	RiskAssessment        string         `json:"risk_assessment"`
}

// AnalysisResult 综合分析结果
type AnalysisResult struct {
	ID        string    `json:"analysis_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`

	RiskScore           int         `json:"risk_score"`
	CredibilityScore    int         `json:"credibility_score"`
	ThreatLevel         ThreatLevel `json:"threat_level"`
	ManipulationTactics []string    `json:"manipulation_tactics"`
	FactChecks          []FactCheck `json:"fact_checks"`
	OracleNarrative     string      `json:"ai_analysis"`

	OriginAnalysis        string          `json:"origin_analysis,omitempty"`
	ContextAnalysis       *ContextReport  `json:"context_analysis,omitempty"`
	PsychologicalAnalysis string          `json:"psychological_analysis,omitempty"`
	SpreadPatternAnalysis string          `json:"spread_pattern_analysis,omitempty"`
	TacticsBreakdown      *TacticsReport  `json:"tactics_breakdown,omitempty"`
	ForensicTimeline      []TimelineEvent `json:"forensic_timeline"`

	SafetyAnalysis       *SafetyReport       `json:"safety_analysis,omitempty"`
	StructureAnalysis    *StructureReport    `json:"structure_analysis,omitempty"`
	ManipulationAnalysis *ManipulationReport `json:"manipulation_analysis,omitempty"`

	Recommendations   []string           `json:"recommendations"`
	SourceLinks       []SourceLink       `json:"source_links"`
	ReportingContacts []ReportingContact `json:"reporting_emails"`
}

// NewAnalysisResult 返回中性初始值
func NewAnalysisResult() *AnalysisResult {
	return &AnalysisResult{
		ThreatLevel:         ThreatLow,
		ManipulationTactics: []string{},
		FactChecks:          []FactCheck{},
		ForensicTimeline:    []TimelineEvent{},
		Recommendations:     []string{},
		SourceLinks:         []SourceLink{},
		ReportingContacts:   []ReportingContact{},
	}
}

// AddTactics 追加手法，保持顺序并去重
func (r *AnalysisResult) AddTactics(ids ...string) {
	seen := make(map[string]struct{}, len(r.ManipulationTactics))
	for _, t := range r.ManipulationTactics {
		seen[t] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		r.ManipulationTactics = append(r.ManipulationTactics, id)
	}
}

// RaiseRisk risk_score 只增不减
func (r *AnalysisResult) RaiseRisk(score int) {
	if score > r.RiskScore {
		r.RiskScore = score
	}
}
