package data

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/truth_radar/app/api/internal/biz"
	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/archive"
	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/config"
	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/engine"
	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/model"
)

func newTestData(t *testing.T) *Data {
	t.Helper()
	store, err := archive.Open(context.Background(), config.DBConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "api.db"),
	})
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	d, cleanup, err := NewData(&engine.Components{Archive: store}, log.DefaultLogger)
	if err != nil {
		t.Fatalf("NewData() error = %v", err)
	}
	t.Cleanup(cleanup)
	return d
}

func TestUserRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepo(newTestData(t), log.DefaultLogger)

	u := &biz.User{Username: "officer", PasswordHash: "h1", Department: "Cyber Cell", Role: "analyst"}
	if err := repo.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	// 重复写入不覆盖已有账号
	if err := repo.CreateUser(ctx, &biz.User{Username: "officer", PasswordHash: "h2"}); err != nil {
		t.Fatalf("CreateUser() duplicate error = %v", err)
	}

	got, err := repo.GetUserByUsername(ctx, "officer")
	if err != nil {
		t.Fatalf("GetUserByUsername() error = %v", err)
	}
	if *got != *u {
		t.Errorf("GetUserByUsername() = %+v, want %+v", got, u)
	}

	if _, err := repo.GetUserByUsername(ctx, "nobody"); !errors.IsNotFound(err) {
		t.Errorf("GetUserByUsername() missing error = %v, want not found", err)
	}
}

func TestReportRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewReportRepo(newTestData(t), log.DefaultLogger)

	if _, err := repo.GetReport(ctx, "TL_REP_0"); !errors.IsNotFound(err) {
		t.Errorf("GetReport() missing error = %v, want not found", err)
	}

	report := &model.MisinformationReport{Content: "Miracle cure found", Category: "health", Urgency: "high"}
	receipt := &model.ReportReceipt{ReportID: "TL_REP_1", Category: "health", Urgency: "high", Status: "submitted_successfully"}
	if err := repo.SaveReport(ctx, report, receipt); err != nil {
		t.Fatalf("SaveReport() error = %v", err)
	}
	entry, err := repo.GetReport(ctx, "TL_REP_1")
	if err != nil {
		t.Fatalf("GetReport() error = %v", err)
	}
	if entry.Report.Content != "Miracle cure found" || entry.Receipt.Status != "submitted_successfully" {
		t.Errorf("GetReport() = %+v", entry)
	}
}

func TestArchiveRepo(t *testing.T) {
	ctx := context.Background()
	d := newTestData(t)
	if _, err := d.store.SeedDemo(ctx); err != nil {
		t.Fatal(err)
	}
	repo := NewArchiveRepo(d, log.DefaultLogger)

	list, err := repo.ListRecent(ctx, 10, model.UserAuthority)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListRecent() = %v, %v", list, err)
	}
	if _, err := repo.GetAnalysis(ctx, "missing"); !errors.IsNotFound(err) {
		t.Errorf("GetAnalysis() missing error = %v, want not found", err)
	}
	st, err := repo.Statistics(ctx)
	if err != nil || st.TotalAnalyses != 3 {
		t.Errorf("Statistics() = %+v, %v", st, err)
	}
}

func TestDisabledStorage(t *testing.T) {
	d, cleanup, err := NewData(&engine.Components{}, log.DefaultLogger)
	if err != nil {
		t.Fatal(err)
	}
	defer cleanup()

	ctx := context.Background()
	if _, err := NewUserRepo(d, log.DefaultLogger).GetUserByUsername(ctx, "x"); errors.Code(err) != 503 {
		t.Errorf("user repo error = %v, want 503", err)
	}
	if _, err := NewArchiveRepo(d, log.DefaultLogger).Statistics(ctx); errors.Code(err) != 503 {
		t.Errorf("archive repo error = %v, want 503", err)
	}
	if err := NewReportRepo(d, log.DefaultLogger).SaveReport(ctx, &model.MisinformationReport{}, &model.ReportReceipt{}); errors.Code(err) != 503 {
		t.Errorf("report repo error = %v, want 503", err)
	}
}
