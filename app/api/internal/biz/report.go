package biz

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/archive"
	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/model"
	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/security"
)

// ReportRepo 举报仓库接口
type ReportRepo interface {
	SaveReport(ctx context.Context, report *model.MisinformationReport, receipt *model.ReportReceipt) error
	GetReport(ctx context.Context, id string) (*archive.ReportEntry, error)
}

// Category 举报分类说明
type Category struct {
	Description string   `json:"description"`
	Examples    []string `json:"examples"`
	Authority   string   `json:"authority"`
}

var categories = map[string]Category{
	"health": {
		Description: "Medical misinformation, false cures, vaccine misinformation",
		Examples:    []string{"COVID-19 false treatments", "Miracle cures", "Medical conspiracy theories"},
		Authority:   "Ministry of Health and Family Welfare",
	},
	"politics": {
		Description: "Political misinformation, election-related false claims",
		Examples:    []string{"Election fraud claims", "Political conspiracy theories", "False political statements"},
		Authority:   "Election Commission of India",
	},
	"finance": {
		Description: "Financial scams, investment fraud, fake schemes",
		Examples:    []string{"Ponzi schemes", "Fake investment opportunities", "UPI frauds"},
		Authority:   "Reserve Bank of India / SEBI",
	},
	"social": {
		Description: "Social misinformation, community tensions, fake news",
		Examples:    []string{"Communal misinformation", "Social media hoaxes", "Fake viral content"},
		Authority:   "Ministry of Electronics and Information Technology",
	},
	"other": {
		Description: "Other types of misinformation not covered above",
		Examples:    []string{"General fake news", "Miscellaneous false claims"},
		Authority:   "Relevant Government Authority",
	},
}

// 通知对象与分类说明里的机构名称并不完全一致
var authorities = map[string]string{
	"health":   "Ministry of Health and Family Welfare",
	"politics": "Election Commission of India",
	"finance":  "Reserve Bank of India",
	"social":   "Ministry of Electronics and IT",
	"other":    "Local Government Authority",
}

var reviewTimes = map[string]string{
	"low":      "3-5 days",
	"medium":   "1-2 days",
	"high":     "4-8 hours",
	"critical": "1-2 hours",
}

var (
	verdicts      = []string{"false", "caution", "verified"}
	reporterTypes = []model.UserType{model.UserPublic, model.UserAuthority, "organization"}
)

const (
	defaultLocation      = "India (General)"
	minReportContent     = 10
	maxReportContent     = 5000
	maxReportDescription = 1000
)

// ReportUseCase 虚假信息举报
type ReportUseCase struct {
	repo ReportRepo
	sec  *security.Heuristics
	log  *log.Helper
	now  func() time.Time
}

// NewReportUseCase 创建举报业务逻辑实例
func NewReportUseCase(repo ReportRepo, logger log.Logger) *ReportUseCase {
	return &ReportUseCase{
		repo: repo,
		sec:  security.NewHeuristics(nil, maxReportContent, minReportContent),
		log:  log.NewHelper(logger),
		now:  time.Now,
	}
}

// Categories 返回全部举报分类
func (uc *ReportUseCase) Categories() map[string]Category {
	return categories
}

func (uc *ReportUseCase) validate(r *model.MisinformationReport) error {
	if _, ok := categories[r.Category]; !ok {
		return errors.BadRequest("INVALID_CATEGORY", fmt.Sprintf("unknown category %q", r.Category))
	}
	if r.Urgency == "" {
		r.Urgency = "medium"
	}
	if _, ok := reviewTimes[r.Urgency]; !ok {
		return errors.BadRequest("INVALID_URGENCY", fmt.Sprintf("unknown urgency %q", r.Urgency))
	}
	if !slices.Contains(verdicts, r.Verdict) {
		return errors.BadRequest("INVALID_VERDICT", fmt.Sprintf("unknown verdict %q", r.Verdict))
	}
	if r.ReporterType == "" {
		r.ReporterType = model.UserPublic
	}
	if !slices.Contains(reporterTypes, r.ReporterType) {
		return errors.BadRequest("INVALID_REPORTER", fmt.Sprintf("unknown reporter type %q", r.ReporterType))
	}
	if len([]rune(r.Description)) > maxReportDescription {
		return errors.BadRequest("INVALID_DESCRIPTION", fmt.Sprintf("description exceeds %d characters", maxReportDescription))
	}
	if err := uc.sec.ValidateInput(r.Content); err != nil {
		return errors.BadRequest("INVALID_CONTENT", "Invalid content: "+err.Error())
	}
	return nil
}

// Submit 校验举报、生成回执并保存，保存失败不影响回执
func (uc *ReportUseCase) Submit(ctx context.Context, r *model.MisinformationReport) (*model.ReportReceipt, error) {
	if err := uc.validate(r); err != nil {
		return nil, err
	}
	r.Content = uc.sec.Sanitize(r.Content)

	now := uc.now()
	location := r.Location
	if location == "" {
		location = defaultLocation
	}
	receipt := &model.ReportReceipt{
		ReportID:          fmt.Sprintf("TL_REP_%d", now.Unix()),
		Status:            "submitted_successfully",
		Category:          r.Category,
		Urgency:           r.Urgency,
		Location:          location,
		AssignedAuthority: AssignedAuthority(r.Category, r.Location),
		EstimatedReview:   reviewTimes[r.Urgency],
		AutoEscalated:     r.Urgency == "high" || r.Urgency == "critical",
		NextSteps:         NextSteps(r.Category, r.Urgency, r.Location),
		SubmittedAt:       now.UTC(),
	}

	if err := uc.repo.SaveReport(ctx, r, receipt); err != nil {
		uc.log.Warnf("举报保存失败 [%s]: %v", receipt.ReportID, err)
	} else {
		uc.log.Infof("收到举报 %s: %s/%s", receipt.ReportID, r.Category, r.Urgency)
	}
	return receipt, nil
}

// Get 查询举报及其回执
func (uc *ReportUseCase) Get(ctx context.Context, id string) (*archive.ReportEntry, error) {
	return uc.repo.GetReport(ctx, id)
}

// AssignedAuthority 按分类和地区确定受理机构
func AssignedAuthority(category, location string) string {
	base, ok := authorities[category]
	if !ok {
		base = "General Government Authority"
	}
	if location != "" {
		return base + " - " + location
	}
	return base
}

// NextSteps 生成举报后续说明
func NextSteps(category, urgency, location string) []string {
	steps := []string{
		fmt.Sprintf("Report forwarded to relevant authorities for %s category", category),
		"You will receive updates via the archive section",
		"Report reference number can be used for follow-up inquiries",
	}
	switch urgency {
	case "critical":
		steps = append([]string{"CRITICAL: Report escalated for immediate review"}, steps...)
		steps = append(steps, "Emergency response team has been notified")
	case "high":
		steps = append(steps, "High priority review initiated")
	}
	if location != "" {
		steps = append(steps, fmt.Sprintf("Local authorities in %s have been notified", location))
	}
	return steps
}
