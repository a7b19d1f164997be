package archive

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/config"
	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/model"
)

var fixedNow = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), config.DBConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "archive.db"),
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	s.now = func() time.Time { return fixedNow }
	return s
}

func TestSeedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)

	n, err := s.SeedDemo(ctx)
	if err != nil || n != 3 {
		t.Fatalf("first seed = %d, %v", n, err)
	}
	n, err = s.SeedDemo(ctx)
	if err != nil || n != 0 {
		t.Fatalf("second seed = %d, %v", n, err)
	}
}

func TestStatisticsAndListing(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)
	if _, err := s.SeedDemo(ctx); err != nil {
		t.Fatal(err)
	}

	st, err := s.Statistics(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := model.Statistics{
		TotalAnalyses:    3,
		AnalyzedToday:    1,
		FlaggedContent:   1,
		HighRiskContent:  1,
		AuthorityReports: 1,
		Distribution:     model.RiskDistribution{High: 1, Medium: 1, Low: 1},
	}
	if *st != want {
		t.Errorf("stats = %+v, want %+v", *st, want)
	}

	recent, err := s.ListRecent(ctx, 10, "")
	if err != nil {
		t.Fatal(err)
	}
	var ids []string
	for _, r := range recent {
		ids = append(ids, r.ID)
		if r.Result != nil {
			t.Errorf("listing should not carry the full result")
		}
	}
	if !reflect.DeepEqual(ids, []string{"demo-0001", "demo-0002", "demo-0003"}) {
		t.Errorf("ids = %v", ids)
	}

	auth, err := s.ListRecent(ctx, 10, model.UserAuthority)
	if err != nil || len(auth) != 1 || auth[0].ID != "demo-0002" {
		t.Errorf("authority listing = %v, %v", auth, err)
	}

	top, err := s.TopTactics(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	wantTop := []TacticCount{{"authority_undermining", 1}, {"emotional_manipulation", 1}}
	if !reflect.DeepEqual(top, wantTop) {
		t.Errorf("top = %v", top)
	}
}

func TestGetAnalysis(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)

	res := model.NewAnalysisResult()
	res.ID = "a-1"
	res.Timestamp = fixedNow
	res.RiskScore = 72
	res.CredibilityScore = 20
	res.ThreatLevel = model.ThreatHigh
	res.AddTactics("fear_mongering")
	req := &model.AnalysisRequest{Text: strings.Repeat("x", 250), Level: model.LevelDeep}
	req.Normalize()

	if err := s.SaveAnalysis(ctx, NewRecord(req, res)); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetAnalysis(ctx, "a-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Level != model.LevelDeep || got.ThreatLevel != model.ThreatHigh || !got.CreatedAt.Equal(fixedNow) {
		t.Errorf("record = %+v", got)
	}
	if len(got.ContentPreview) != 203 || !strings.HasSuffix(got.ContentPreview, "...") {
		t.Errorf("preview length = %d", len(got.ContentPreview))
	}
	if got.Result == nil || got.Result.RiskScore != 72 || got.Result.ManipulationTactics[0] != "fear_mongering" {
		t.Errorf("result = %+v", got.Result)
	}

	if _, err := s.GetAnalysis(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestPurgeBefore(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)
	if _, err := s.SeedDemo(ctx); err != nil {
		t.Fatal(err)
	}
	n, err := s.PurgeBefore(ctx, fixedNow.Add(-48*time.Hour))
	if err != nil || n != 1 {
		t.Fatalf("purged = %d, %v", n, err)
	}
	if _, err := s.GetAnalysis(ctx, "demo-0003"); !errors.Is(err, ErrNotFound) {
		t.Errorf("demo-0003 should be gone: %v", err)
	}
	st, _ := s.Statistics(ctx)
	if st.TotalAnalyses != 2 {
		t.Errorf("total = %d", st.TotalAnalyses)
	}
}

func TestReports(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)

	report := &model.MisinformationReport{Content: "fake cure", Category: "health", Urgency: "high", ReporterType: model.UserPublic}
	receipt := &model.ReportReceipt{
		ReportID:    "TL_REP_1",
		Status:      "submitted",
		Category:    "health",
		Urgency:     "high",
		NextSteps:   []string{"step"},
		SubmittedAt: fixedNow,
	}
	if err := s.SaveReport(ctx, report, receipt); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetReport(ctx, "TL_REP_1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Report.Content != "fake cure" || got.Receipt.Urgency != "high" || !got.Receipt.SubmittedAt.Equal(fixedNow) {
		t.Errorf("entry = %+v %+v", got.Report, got.Receipt)
	}
	if _, err := s.GetReport(ctx, "TL_REP_2"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v", err)
	}
}

func TestRebind(t *testing.T) {
	pg := &Store{dialect: "postgres"}
	if got := pg.Rebind("a = ? AND b IN (?, ?)"); got != "a = $1 AND b IN ($2, $3)" {
		t.Errorf("postgres = %q", got)
	}
	lite := &Store{dialect: "sqlite"}
	if got := lite.Rebind("a = ?"); got != "a = ?" {
		t.Errorf("sqlite = %q", got)
	}
}

func TestOpenDisabled(t *testing.T) {
	if _, err := Open(context.Background(), config.DBConfig{}); !errors.Is(err, ErrDisabled) {
		t.Errorf("err = %v", err)
	}
}
