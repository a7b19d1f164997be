package data

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/truth_radar/app/api/internal/biz"
	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/archive"
	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/model"
)

type archiveRepo struct {
	data *Data
	log  *log.Helper
}

func NewArchiveRepo(data *Data, logger log.Logger) biz.ArchiveRepo {
	return &archiveRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

func (r *archiveRepo) ListRecent(ctx context.Context, limit int, userType model.UserType) ([]*model.AnalysisRecord, error) {
	if err := r.data.enabled(); err != nil {
		return nil, err
	}
	return r.data.store.ListRecent(ctx, limit, userType)
}

func (r *archiveRepo) GetAnalysis(ctx context.Context, id string) (*model.AnalysisRecord, error) {
	if err := r.data.enabled(); err != nil {
		return nil, err
	}
	rec, err := r.data.store.GetAnalysis(ctx, id)
	if stderrors.Is(err, archive.ErrNotFound) {
		return nil, errors.NotFound("CASE_NOT_FOUND", "Case not found")
	}
	return rec, err
}

func (r *archiveRepo) Statistics(ctx context.Context) (*model.Statistics, error) {
	if err := r.data.enabled(); err != nil {
		return nil, err
	}
	return r.data.store.Statistics(ctx)
}

func (r *archiveRepo) TopTactics(ctx context.Context, limit int) ([]archive.TacticCount, error) {
	if err := r.data.enabled(); err != nil {
		return nil, err
	}
	return r.data.store.TopTactics(ctx, limit)
}

func (r *archiveRepo) PurgeBefore(ctx context.Context, t time.Time) (int64, error) {
	if err := r.data.enabled(); err != nil {
		return 0, err
	}
	return r.data.store.PurgeBefore(ctx, t)
}
