package data

import (
	"context"
	stderrors "errors"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/truth_radar/app/api/internal/biz"
	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/archive"
	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/model"
)

type reportRepo struct {
	data *Data
	log  *log.Helper
}

func NewReportRepo(data *Data, logger log.Logger) biz.ReportRepo {
	return &reportRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

func (r *reportRepo) SaveReport(ctx context.Context, report *model.MisinformationReport, receipt *model.ReportReceipt) error {
	if err := r.data.enabled(); err != nil {
		return err
	}
	return r.data.store.SaveReport(ctx, report, receipt)
}

func (r *reportRepo) GetReport(ctx context.Context, id string) (*archive.ReportEntry, error) {
	if err := r.data.enabled(); err != nil {
		return nil, err
	}
	entry, err := r.data.store.GetReport(ctx, id)
	if stderrors.Is(err, archive.ErrNotFound) {
		return nil, errors.NotFound("REPORT_NOT_FOUND", "Report not found")
	}
	return entry, err
}
