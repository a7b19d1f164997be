package model

import "time"

// AnalysisRecord 归档的一次分析
type AnalysisRecord struct {
	ID             string          `json:"id"`
	ContentPreview string          `json:"content_preview"`
	Language       string          `json:"language"`
	Level          AnalysisLevel   `json:"analysis_level"`
	UserType       UserType        `json:"user_type"`
	RiskScore      int             `json:"risk_score"`
	Credibility    int             `json:"credibility_score"`
	ThreatLevel    ThreatLevel     `json:"threat_level"`
	Result         *AnalysisResult `json:"result,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// RiskDistribution 风险分布
type RiskDistribution struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// Statistics 归档统计
type Statistics struct {
	TotalAnalyses    int              `json:"total_analyses"`
	AnalyzedToday    int              `json:"analyzed_today"`
	FlaggedContent   int              `json:"flagged_content"`
	HighRiskContent  int              `json:"high_risk_content"`
	AuthorityReports int              `json:"authority_reports"`
	Distribution     RiskDistribution `json:"risk_distribution"`
}

// MisinformationReport 用户提交的虚假信息举报
type MisinformationReport struct {
	Content         string   `json:"content"`
	Verdict         string   `json:"verdict"`
	Category        string   `json:"category"`
	Urgency         string   `json:"urgency"`
	Location        string   `json:"location,omitempty"`
	Description     string   `json:"description,omitempty"`
	ReporterType    UserType `json:"reporter_type"`
	ReporterContact string   `json:"reporter_contact,omitempty"`
	AnalysisID      string   `json:"analysis_id,omitempty"`
}

// ReportReceipt 举报回执
type ReportReceipt struct {
	ReportID          string    `json:"report_id"`
	Status            string    `json:"status"`
	Category          string    `json:"category"`
	Urgency           string    `json:"urgency"`
	Location          string    `json:"location"`
	AssignedAuthority string    `json:"assigned_authority"`
	EstimatedReview   string    `json:"estimated_review_time"`
	AutoEscalated     bool      `json:"auto_escalated"`
	NextSteps         []string  `json:"next_steps"`
	SubmittedAt       time.Time `json:"submitted_at"`
}
