package engine

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/cache"
	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/config"
	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/fetch"
	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/model"
	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/oracle"
	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/security"
)

const (
	alarmist = "BREAKING!!! Doctors don't want you to know this secret cure! Share immediately!!!"
	neutral  = "The committee published a peer-reviewed study on rainfall patterns."
)

type mockNarrator struct {
	out   oracle.Outcome[oracle.Narrative]
	calls atomic.Int32
}

func (m *mockNarrator) ForensicNarrative(context.Context, string, string) oracle.Outcome[oracle.Narrative] {
	m.calls.Add(1)
	return m.out
}

func (m *mockNarrator) Available() bool { return true }

func verdict(text string) *mockNarrator {
	return &mockNarrator{out: oracle.Ok(oracle.Narrative{
		Text:     text,
		Sources:  []model.SourceLink{{Name: "Snopes", Description: "debunk", URL: "https://snopes.com/x"}},
		Contacts: []model.ReportingContact{},
	})}
}

type mockFactCheck struct {
	checks []model.FactCheck
	err    error
}

func (m *mockFactCheck) SearchClaims(context.Context, string) ([]model.FactCheck, error) {
	return m.checks, m.err
}

type panicOrigin struct{}

func (panicOrigin) TraceOrigin(context.Context, string) (string, error) { panic("tracker exploded") }

func (panicOrigin) BuildTimeline(context.Context, string) ([]model.TimelineEvent, error) {
	return nil, nil
}

type failingContext struct{}

func (failingContext) Analyze(context.Context, string) (*model.ContextReport, error) {
	return nil, errors.New("boom")
}

type panicTactics struct{}

func (panicTactics) AnalyzeTactics(string) (model.TacticsReport, error) { panic("bad catalog") }

type mockArchive struct {
	mu      sync.Mutex
	saved   []*model.AnalysisRecord
	pingErr error
}

func (m *mockArchive) SaveAnalysis(_ context.Context, rec *model.AnalysisRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, rec)
	return nil
}

func (m *mockArchive) Ping(context.Context) error { return m.pingErr }

type mockFetcher struct {
	art *fetch.Article
	err error
	url string
}

func (m *mockFetcher) Fetch(_ context.Context, url string) (*fetch.Article, error) {
	m.url = url
	return m.art, m.err
}

func testConfig() config.AnalysisConfig {
	return config.Default().Analysis
}

func newTestEngine(d Deps) *Engine {
	e := New(d, testConfig(), 2)
	var n atomic.Int32
	e.newID = func() string {
		return fmt.Sprintf("id-%d", n.Add(1))
	}
	e.now = func() time.Time { return time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC) }
	return e
}

func TestAnalyzeAlarmistQuickScan(t *testing.T) {
	e := newTestEngine(Deps{})
	res := e.Analyze(context.Background(), model.AnalysisRequest{
		Text:        alarmist,
		Level:       model.LevelQuick,
		SafetyCheck: true,
	})

	if res.RiskScore != 50 {
		t.Errorf("risk = %d, want 50", res.RiskScore)
	}
	for _, want := range []string{"urgency_tactics", "authority_undermining"} {
		if !contains(res.ManipulationTactics, want) {
			t.Errorf("tactics %v missing %s", res.ManipulationTactics, want)
		}
	}
	if !strings.HasPrefix(res.OracleNarrative, oracle.Unavailable) {
		t.Errorf("narrative = %q", res.OracleNarrative)
	}
	if res.CredibilityScore != 50 || res.ThreatLevel != model.ThreatMedium {
		t.Errorf("credibility = %d threat = %s", res.CredibilityScore, res.ThreatLevel)
	}
	if res.Recommendations[0] != "⚠️ MEDIUM RISK: Be cautious about sharing" {
		t.Errorf("recommendations = %v", res.Recommendations)
	}
	if res.OriginAnalysis != "" || res.ContextAnalysis != nil || res.TacticsBreakdown != nil {
		t.Error("quick scan must not run deep forensics")
	}
	if res.SourceLinks == nil || res.FactChecks == nil {
		t.Error("lists must be empty, not nil")
	}
}

func TestAnalyzeNeutralText(t *testing.T) {
	e := newTestEngine(Deps{})
	res := e.Analyze(context.Background(), model.AnalysisRequest{Text: neutral, SafetyCheck: true})
	if res.RiskScore != 0 || res.ThreatLevel != model.ThreatLow {
		t.Errorf("risk = %d threat = %s", res.RiskScore, res.ThreatLevel)
	}
	if len(res.SafetyAnalysis.FlaggedCategories) != 0 || len(res.ManipulationTactics) != 0 {
		t.Errorf("unexpected flags: %+v %v", res.SafetyAnalysis, res.ManipulationTactics)
	}
	if res.CredibilityScore != 90 {
		t.Errorf("credibility = %d, want 90", res.CredibilityScore)
	}
}

func TestAnalyzeOracleVerdictRaisesRisk(t *testing.T) {
	e := newTestEngine(Deps{
		Oracle:    verdict("🔍 VERACITY ASSESSMENT:\nFALSE INFORMATION. The cure does not exist."),
		FactCheck: &mockFactCheck{checks: []model.FactCheck{{Title: "Fake cure", Verdict: "False"}}},
	})
	res := e.Analyze(context.Background(), model.AnalysisRequest{Text: alarmist, SafetyCheck: true})

	if res.RiskScore != 90 || res.ThreatLevel != model.ThreatHigh {
		t.Errorf("risk = %d threat = %s", res.RiskScore, res.ThreatLevel)
	}
	// 80-72=8，(8+100)/2=54，两个手法 -20，有核查 +10
	if res.CredibilityScore != 44 {
		t.Errorf("credibility = %d, want 44", res.CredibilityScore)
	}
	if len(res.SourceLinks) != 1 || len(res.FactChecks) != 1 {
		t.Errorf("links = %v checks = %v", res.SourceLinks, res.FactChecks)
	}
	if res.Recommendations[0] != "🚨 HIGH RISK: Do not share this content" {
		t.Errorf("recommendations = %v", res.Recommendations)
	}
}

func TestAnalyzeOracleTimeoutDegrades(t *testing.T) {
	placeholder := oracle.Narrative{Text: oracle.Unavailable}
	e := newTestEngine(Deps{
		Oracle:    &mockNarrator{out: oracle.Fail(placeholder, context.DeadlineExceeded)},
		FactCheck: &mockFactCheck{err: errors.New("quota exceeded")},
	})
	res := e.Analyze(context.Background(), model.AnalysisRequest{Text: neutral})

	if res.OracleNarrative != oracle.Unavailable+": context deadline exceeded" {
		t.Errorf("narrative = %q", res.OracleNarrative)
	}
	if res.ThreatLevel == model.ThreatUnknown || len(res.Recommendations) != 3 {
		t.Errorf("degraded oracle should still produce a full result: %+v", res)
	}
	if len(res.FactChecks) != 0 || res.FactChecks == nil {
		t.Errorf("fact checks = %v", res.FactChecks)
	}
}

func TestRiskNonDecreasingAcrossPhases(t *testing.T) {
	// 叙述给出的风险低于基础分时不会拉低结果
	e := newTestEngine(Deps{Oracle: verdict("VERACITY ASSESSMENT: TRUE")})
	res := e.Analyze(context.Background(), model.AnalysisRequest{Text: alarmist, SafetyCheck: true})
	if res.RiskScore != 50 {
		t.Errorf("risk = %d, want 50", res.RiskScore)
	}
}

func TestDeepForensicsForwardedMessage(t *testing.T) {
	e := newTestEngine(Deps{})
	res := e.Analyze(context.Background(), model.AnalysisRequest{
		Text:          "Forwarded message: the main bridge is closed today, please tell your family.",
		Level:         model.LevelDeep,
		TrackOrigin:   true,
		EnableContext: true,
	})

	found := false
	for _, ev := range res.ForensicTimeline {
		if ev.EventType == "message_forward" {
			found = true
		}
	}
	if !found {
		t.Errorf("timeline = %+v", res.ForensicTimeline)
	}
	if res.OriginAnalysis == "" || res.ContextAnalysis == nil || !res.ContextAnalysis.Enabled {
		t.Errorf("origin = %q context = %+v", res.OriginAnalysis, res.ContextAnalysis)
	}
	if res.TacticsBreakdown == nil || res.PsychologicalAnalysis == "" {
		t.Error("tactics breakdown should be present")
	}
}

func TestAuthorityGetsDeepForensics(t *testing.T) {
	e := newTestEngine(Deps{})
	res := e.Analyze(context.Background(), model.AnalysisRequest{Text: alarmist, UserType: model.UserAuthority})
	if res.TacticsBreakdown == nil {
		t.Error("authority requests always run the tactics breakdown")
	}
	if res.Recommendations[0] != "⚠️ MEDIUM RISK: Continue monitoring" {
		t.Errorf("recommendations = %v", res.Recommendations)
	}
}

func TestDeepPhaseFailuresAreLocal(t *testing.T) {
	e := newTestEngine(Deps{
		Origin:  panicOrigin{},
		Context: failingContext{},
		Tactics: panicTactics{},
	})
	res := e.Analyze(context.Background(), model.AnalysisRequest{
		Text:          alarmist,
		Level:         model.LevelDeep,
		TrackOrigin:   true,
		EnableContext: true,
		SafetyCheck:   true,
	})

	if !strings.HasPrefix(res.OriginAnalysis, "Origin tracking unavailable: ") {
		t.Errorf("origin = %q", res.OriginAnalysis)
	}
	if res.ContextAnalysis == nil || res.ContextAnalysis.Error != "Context analysis unavailable: boom" {
		t.Errorf("context = %+v", res.ContextAnalysis)
	}
	if res.PsychologicalAnalysis != "" || res.TacticsBreakdown != nil {
		t.Error("failed tactics step should be skipped")
	}
	if res.ThreatLevel != model.ThreatMedium || res.CredibilityScore != 50 {
		t.Errorf("threat = %s credibility = %d", res.ThreatLevel, res.CredibilityScore)
	}
}

func TestDegradeSnapshot(t *testing.T) {
	res := model.NewAnalysisResult()
	res.RiskScore = 35
	degrade(res, "nil pointer")
	if res.OracleNarrative != "Analysis error: nil pointer" || res.CredibilityScore != 50 ||
		res.ThreatLevel != model.ThreatUnknown || !reflect.DeepEqual(res.Recommendations, []string{RetryRecommendation}) {
		t.Errorf("snapshot = %+v", res)
	}
	if res.RiskScore != 35 {
		t.Error("risk computed before the failure is kept")
	}
}

func TestAnalyzeInvariants(t *testing.T) {
	texts := []string{
		alarmist,
		neutral,
		"URGENT!!! Share before deleted! Everyone knows the deadly toxic poison cover-up! Act now!!!",
		"Studies show the vaccine is dangerous. Join millions, don't be left out. Why? Why? Why? Why?",
	}
	e := newTestEngine(Deps{Oracle: verdict("This is misleading and a hoax")})
	for _, text := range texts {
		req := model.AnalysisRequest{Text: text, SafetyCheck: true}
		a := e.Analyze(context.Background(), req)
		b := e.Analyze(context.Background(), req)

		if a.RiskScore < 0 || a.RiskScore > 100 || a.CredibilityScore < 0 || a.CredibilityScore > 100 {
			t.Errorf("%q: scores out of range: %d %d", text, a.RiskScore, a.CredibilityScore)
		}
		seen := map[string]bool{}
		for _, tac := range a.ManipulationTactics {
			if seen[tac] {
				t.Errorf("%q: duplicate tactic %s", text, tac)
			}
			seen[tac] = true
		}
		if !reflect.DeepEqual(a, b) {
			t.Errorf("%q: analysis is not deterministic", text)
		}
	}
}

func TestNarrativeIsCached(t *testing.T) {
	n := verdict("unverified claim")
	e := newTestEngine(Deps{Oracle: n, Cache: cache.NewMemory()})
	req := model.AnalysisRequest{Text: neutral}
	first := e.Analyze(context.Background(), req)
	second := e.Analyze(context.Background(), req)

	if n.calls.Load() != 1 {
		t.Errorf("oracle calls = %d, want 1", n.calls.Load())
	}
	if first.RiskScore != 60 || !reflect.DeepEqual(first, second) {
		t.Errorf("cached result differs: %+v vs %+v", first, second)
	}
}

func TestSubmit(t *testing.T) {
	arch := &mockArchive{}
	e := newTestEngine(Deps{Archive: arch})

	res, err := e.Submit(context.Background(), model.AnalysisRequest{
		Text:  "<b>Forwarded message</b>: the   main bridge is closed today, tell your family.",
		Level: "Deep Analysis",
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.ID != "id-1" || res.Timestamp.IsZero() {
		t.Errorf("id = %q ts = %v", res.ID, res.Timestamp)
	}
	if res.OriginAnalysis == "" {
		t.Error("deep analysis implies origin tracking")
	}
	if len(arch.saved) != 1 {
		t.Fatalf("saved = %d", len(arch.saved))
	}
	rec := arch.saved[0]
	if rec.ID != "id-1" || rec.Level != model.LevelDeep || strings.Contains(rec.ContentPreview, "<b>") {
		t.Errorf("record = %+v", rec)
	}

	_, err = e.Submit(context.Background(), model.AnalysisRequest{Text: "tiny"})
	if !errors.Is(err, security.ErrValidation) {
		t.Errorf("err = %v, want validation error", err)
	}
	if len(arch.saved) != 1 {
		t.Error("rejected input must not be archived")
	}
}

func TestSubmitFetchesURL(t *testing.T) {
	f := &mockFetcher{art: &fetch.Article{Title: "Bridge closed", Text: "Officials confirmed the closure after an inspection report."}}
	e := newTestEngine(Deps{Fetcher: f})

	res, err := e.Submit(context.Background(), model.AnalysisRequest{URL: "https://news.example/bridge"})
	if err != nil {
		t.Fatal(err)
	}
	if f.url != "https://news.example/bridge" || res == nil {
		t.Errorf("fetcher url = %q", f.url)
	}

	f.err = errors.New("404")
	if _, err := e.Submit(context.Background(), model.AnalysisRequest{URL: "https://news.example/gone"}); err == nil {
		t.Error("fetch failure without text should be an error")
	}
	if _, err := e.Submit(context.Background(), model.AnalysisRequest{URL: "https://news.example/gone", Text: neutral}); err != nil {
		t.Errorf("fetch failure with text should fall back to the text: %v", err)
	}
}

func TestJoinFetchedLimit(t *testing.T) {
	got := joinFetched("user text", "", strings.Repeat("é", 50), 20)
	if len([]rune(got)) != 20 || !strings.HasPrefix(got, "user text\n\n") {
		t.Errorf("joined = %q", got)
	}
}

func TestSubmitBatch(t *testing.T) {
	e := newTestEngine(Deps{})
	reqs := []model.AnalysisRequest{
		{Text: alarmist, SafetyCheck: true},
		{Text: "bad"},
		{Text: neutral},
	}
	report, err := e.SubmitBatch(context.Background(), reqs)
	if err != nil {
		t.Fatal(err)
	}
	if report.Total != 3 || report.Successful != 2 || report.Failed != 1 {
		t.Errorf("report = %+v", report)
	}
	for i, it := range report.Results {
		if it.Index != i {
			t.Errorf("result %d has index %d", i, it.Index)
		}
	}
	if report.Results[1].Status != "failed" || report.Results[1].Error == "" {
		t.Errorf("item 1 = %+v", report.Results[1])
	}
	if report.Results[0].Result.RiskScore != 50 {
		t.Errorf("item 0 risk = %d", report.Results[0].Result.RiskScore)
	}

	tooMany := make([]model.AnalysisRequest, 11)
	if _, err := e.SubmitBatch(context.Background(), tooMany); !errors.Is(err, ErrBatchTooLarge) {
		t.Errorf("err = %v", err)
	} else if !strings.Contains(err.Error(), "Maximum 10 texts per batch") {
		t.Errorf("message = %q", err.Error())
	}
}

func TestQuickTest(t *testing.T) {
	res := newTestEngine(Deps{}).QuickTest(context.Background())
	if res.ThreatLevel == model.ThreatUnknown || res.SafetyAnalysis == nil {
		t.Errorf("quick test = %+v", res)
	}
}

func TestHealth(t *testing.T) {
	arch := &mockArchive{}
	e := newTestEngine(Deps{Archive: arch, Oracle: verdict("x"), Cache: cache.NewMemory()})
	h := e.Health(context.Background())
	want := map[string]string{
		"oracle":     "available",
		"fact_check": "not_configured",
		"security":   "available",
		"database":   "available",
		"cache":      "available",
	}
	if h.Status != "healthy" || !reflect.DeepEqual(h.Services, want) {
		t.Errorf("health = %+v", h)
	}

	arch.pingErr = errors.New("down")
	if h := e.Health(context.Background()); h.Status != "degraded" || h.Services["database"] != "unavailable" {
		t.Errorf("health = %+v", h)
	}
}

func TestAnalyzeImageRejectsNonImages(t *testing.T) {
	e := newTestEngine(Deps{})
	if _, err := e.AnalyzeImage(context.Background(), []byte("plain text body"), "a.txt"); !errors.Is(err, ErrNotImage) {
		t.Errorf("err = %v", err)
	}
	if _, err := e.AnalyzeImage(context.Background(), make([]byte, MaxImageSize+1), "big.png"); !errors.Is(err, ErrImageTooLarge) {
		t.Errorf("err = %v", err)
	}
}

func contains(items []string, s string) bool {
	for _, it := range items {
		if it == s {
			return true
		}
	}
	return false
}
