// Package engine 综合分析编排：六个阶段依次执行，任一阶段失败只降级该阶段
package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/gg/gson"
	"github.com/google/uuid"

	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/cache"
	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/config"
	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/correlator"
	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/factcheck"
	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/fetch"
	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/imaging"
	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/logger"
	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/model"
	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/oracle"
	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/origin"
	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/security"
	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/tactics"
)

// Narrator 生成取证叙述
type Narrator interface {
	ForensicNarrative(ctx context.Context, text, language string) oracle.Outcome[oracle.Narrative]
	Available() bool
}

// OriginTracer 来源追踪
type OriginTracer interface {
	TraceOrigin(ctx context.Context, content string) (string, error)
	BuildTimeline(ctx context.Context, content string) ([]model.TimelineEvent, error)
}

// ContextAnalyzer 上下文关联
type ContextAnalyzer interface {
	Analyze(ctx context.Context, text string) (*model.ContextReport, error)
}

// TacticsAnalyzer 手法拆解
type TacticsAnalyzer interface {
	AnalyzeTactics(content string) (model.TacticsReport, error)
}

// Archive 结果归档
type Archive interface {
	SaveAnalysis(ctx context.Context, rec *model.AnalysisRecord) error
	Ping(ctx context.Context) error
}

// Fetcher 抓取链接正文
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*fetch.Article, error)
}

// Deps 引擎依赖，除 Security 外都可以为空
type Deps struct {
	Security  *security.Heuristics
	Oracle    Narrator
	FactCheck factcheck.Searcher
	Origin    OriginTracer
	Context   ContextAnalyzer
	Tactics   TacticsAnalyzer
	Images    *imaging.Analyzer
	Archive   Archive
	Fetcher   Fetcher
	Cache     cache.Store
}

// Engine 综合分析引擎
type Engine struct {
	sec       *security.Heuristics
	oracle    Narrator
	factCheck factcheck.Searcher
	origin    OriginTracer
	context   ContextAnalyzer
	tactics   TacticsAnalyzer
	images    *imaging.Analyzer
	archive   Archive
	fetcher   Fetcher
	cache     cache.Store

	cfg      config.AnalysisConfig
	workers  int
	cacheTTL time.Duration
	now      func() time.Time
	newID    func() string
}

// New 创建引擎，缺省的依赖使用内置实现
func New(d Deps, cfg config.AnalysisConfig, workers int) *Engine {
	if d.Security == nil {
		d.Security = security.NewHeuristics(nil, cfg.MaxContentLength, cfg.MinContentLength)
	}
	if d.Oracle == nil {
		d.Oracle = oracle.NewClient(nil, 0)
	}
	if d.Origin == nil {
		d.Origin = origin.NewTracker(nil)
	}
	if d.Context == nil {
		d.Context = correlator.New(correlator.Config{
			Enabled:     true,
			MaxKeywords: cfg.MaxKeywords,
			RecencyDays: cfg.RecencyDays,
		}, nil, nil)
	}
	if d.Tactics == nil {
		d.Tactics = tactics.NewAnalyzer(nil)
	}
	if d.Images == nil {
		d.Images = imaging.NewAnalyzer(nil)
	}
	if d.Cache == nil {
		d.Cache = cache.Nop{}
	}
	if cfg.MaxBatchSize <= 0 {
		cfg.MaxBatchSize = 10
	}
	if workers <= 0 {
		workers = 4
	}
	return &Engine{
		sec:       d.Security,
		oracle:    d.Oracle,
		factCheck: d.FactCheck,
		origin:    d.Origin,
		context:   d.Context,
		tactics:   d.Tactics,
		images:    d.Images,
		archive:   d.Archive,
		fetcher:   d.Fetcher,
		cache:     d.Cache,
		cfg:       cfg,
		workers:   workers,
		cacheTTL:  time.Hour,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// guard 执行一个阶段，panic 转为 error
func guard(phase string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s panic: %v", phase, r)
		}
	}()
	return fn()
}

// Analyze 综合分析，永不返回错误。整体失败时返回中性快照
func (e *Engine) Analyze(ctx context.Context, req model.AnalysisRequest) (res *model.AnalysisResult) {
	req.Normalize()
	res = model.NewAnalysisResult()
	defer func() {
		if r := recover(); r != nil {
			logger.Log.Errorf("综合分析失败: %v", r)
			degrade(res, r)
		}
	}()

	text := req.Text

	// 阶段 1：基础风险
	res.RiskScore = BasicRisk(text)
	logger.Log.Infof("基础风险分: %d", res.RiskScore)

	// 阶段 2：安全启发式
	if req.SafetyCheck {
		if err := guard("security", func() error { return e.securityPhase(text, res) }); err != nil {
			logger.Log.Warnf("安全检查失败: %v", err)
		} else {
			logger.Log.Infof("安全检查后风险分: %d", res.RiskScore)
		}
	}

	// 阶段 3：模型取证叙述
	if err := guard("oracle", func() error { return e.oraclePhase(ctx, text, req.Language, res) }); err != nil {
		logger.Log.Warnf("模型分析失败: %v", err)
		res.OracleNarrative = oracle.Unavailable + ": " + err.Error()
		res.SourceLinks = []model.SourceLink{}
		res.ReportingContacts = []model.ReportingContact{}
	}

	// 阶段 4：事实核查
	if err := guard("fact_check", func() error { return e.factCheckPhase(ctx, text, res) }); err != nil {
		logger.Log.Warnf("事实核查失败: %v", err)
		res.FactChecks = []model.FactCheck{}
	} else {
		logger.Log.Infof("找到 %d 条事实核查", len(res.FactChecks))
	}

	// 阶段 5：深度取证
	if req.DeepRequested() {
		e.deepPhase(ctx, &req, res)
	}

	// 阶段 6：最终评分
	res.CredibilityScore = Credibility(res)
	res.ThreatLevel = Threat(res.RiskScore)
	res.Recommendations = Recommendations(res.RiskScore, req.UserType)

	logger.Log.Infof("分析完成 - 风险: %d, 可信度: %d, 威胁: %s", res.RiskScore, res.CredibilityScore, res.ThreatLevel)
	logger.Log.Debugf("分析结果: %s", gson.ToString(res))
	return res
}

// degrade 整体失败时保留已有字段，其余置为中性值
func degrade(res *model.AnalysisResult, cause any) {
	res.OracleNarrative = fmt.Sprintf("Analysis error: %v", cause)
	res.CredibilityScore = 50
	res.ThreatLevel = model.ThreatUnknown
	res.Recommendations = []string{RetryRecommendation}
}

func (e *Engine) securityPhase(text string, res *model.AnalysisResult) error {
	safety := e.sec.CheckSafety(text)
	structure := e.sec.AnalyzeStructure(text)
	manip := e.sec.DetectManipulation(text)

	res.SafetyAnalysis = &safety
	res.StructureAnalysis = &structure
	res.ManipulationAnalysis = &manip
	res.AddTactics(manip.Categories()...)
	res.RaiseRisk(manip.ManipulationScore)
	return nil
}

type cachedNarrative struct {
	Text     string                   `json:"text"`
	Sources  []model.SourceLink       `json:"sources"`
	Contacts []model.ReportingContact `json:"contacts"`
}

func narrativeKey(text, language string) string {
	sum := sha256.Sum256([]byte(language + "\x00" + text))
	return "narrative:" + hex.EncodeToString(sum[:16])
}

func (e *Engine) oraclePhase(ctx context.Context, text, language string, res *model.AnalysisResult) error {
	key := narrativeKey(text, language)
	n, hit := cache.GetJSON[cachedNarrative](ctx, e.cache, key)
	if !hit {
		out := e.oracle.ForensicNarrative(ctx, text, language)
		if !out.OK() {
			logger.Log.Debugf("叙述调用状态: %s", out.Status)
			return out.Err
		}
		n = cachedNarrative{Text: out.Value.Text, Sources: out.Value.Sources, Contacts: out.Value.Contacts}
		if err := cache.SetJSON(ctx, e.cache, key, n, e.cacheTTL); err != nil {
			logger.Log.Debugf("叙述缓存写入失败: %v", err)
		}
	}

	res.OracleNarrative = n.Text
	res.SourceLinks = nonNil(n.Sources)
	res.ReportingContacts = nonNil(n.Contacts)
	res.RaiseRisk(oracle.Risk(n.Text))
	logger.Log.Infof("模型调整后风险分: %d", res.RiskScore)
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func (e *Engine) factCheckPhase(ctx context.Context, text string, res *model.AnalysisResult) error {
	if e.factCheck == nil {
		return factcheck.ErrNotConfigured
	}
	checks, err := e.factCheck.SearchClaims(ctx, text)
	if err != nil {
		return err
	}
	res.FactChecks = nonNil(checks)
	return nil
}

// deepPhase 的外部调用共用 analysis.timeout 预算
func (e *Engine) deepPhase(ctx context.Context, req *model.AnalysisRequest, res *model.AnalysisResult) {
	if e.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(e.cfg.Timeout)*time.Second)
		defer cancel()
	}
	text := req.Text

	if req.TrackOrigin {
		err := guard("origin", func() error {
			narrative, err := e.origin.TraceOrigin(ctx, text)
			if err != nil {
				return err
			}
			timeline, err := e.origin.BuildTimeline(ctx, text)
			if err != nil {
				return err
			}
			res.OriginAnalysis = narrative
			res.ForensicTimeline = nonNil(timeline)
			return nil
		})
		if err != nil {
			logger.Log.Warnf("来源追踪失败: %v", err)
			res.OriginAnalysis = "Origin tracking unavailable: " + err.Error()
		} else {
			logger.Log.Info("来源追踪完成")
		}
	}

	if req.EnableContext {
		err := guard("context", func() error {
			report, err := e.context.Analyze(ctx, text)
			if err != nil {
				return err
			}
			res.ContextAnalysis = report
			return nil
		})
		if err != nil {
			logger.Log.Warnf("上下文分析失败: %v", err)
			res.ContextAnalysis = &model.ContextReport{Enabled: true, Error: "Context analysis unavailable: " + err.Error()}
		} else {
			logger.Log.Info("上下文分析完成")
		}
	}

	err := guard("tactics", func() error {
		report, err := e.tactics.AnalyzeTactics(text)
		if err != nil {
			return err
		}
		res.PsychologicalAnalysis = report.PsychologicalAnalysis
		res.SpreadPatternAnalysis = report.SpreadAnalysis
		res.TacticsBreakdown = &report
		res.AddTactics(report.AdvancedTactics...)
		return nil
	})
	if err != nil {
		logger.Log.Warnf("手法分析失败: %v", err)
	} else {
		logger.Log.Info("手法分析完成")
	}
}

func hasText(s string) bool { return strings.TrimSpace(s) != "" }
