package biz

import (
	"context"
	"time"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/archive"
	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/model"
)

// ArchiveRepo 分析归档仓库接口
type ArchiveRepo interface {
	ListRecent(ctx context.Context, limit int, userType model.UserType) ([]*model.AnalysisRecord, error)
	GetAnalysis(ctx context.Context, id string) (*model.AnalysisRecord, error)
	Statistics(ctx context.Context) (*model.Statistics, error)
	TopTactics(ctx context.Context, limit int) ([]archive.TacticCount, error)
	PurgeBefore(ctx context.Context, t time.Time) (int64, error)
}

// Stats 统计面板数据
type Stats struct {
	*model.Statistics
	TopTactics []archive.TacticCount `json:"top_tactics"`
}

// ArchiveUseCase 归档查询与清理
type ArchiveUseCase struct {
	repo ArchiveRepo
	log  *log.Helper
	now  func() time.Time
}

// NewArchiveUseCase 创建归档业务逻辑实例
func NewArchiveUseCase(repo ArchiveRepo, logger log.Logger) *ArchiveUseCase {
	return &ArchiveUseCase{repo: repo, log: log.NewHelper(logger), now: time.Now}
}

// List 列出最近的分析，userType 为空时不过滤
func (uc *ArchiveUseCase) List(ctx context.Context, limit int, userType model.UserType) ([]*model.AnalysisRecord, error) {
	return uc.repo.ListRecent(ctx, limit, userType)
}

func (uc *ArchiveUseCase) Get(ctx context.Context, id string) (*model.AnalysisRecord, error) {
	return uc.repo.GetAnalysis(ctx, id)
}

// Stats 汇总统计与最常见的操纵手法
func (uc *ArchiveUseCase) Stats(ctx context.Context) (*Stats, error) {
	st, err := uc.repo.Statistics(ctx)
	if err != nil {
		return nil, err
	}
	top, err := uc.repo.TopTactics(ctx, 5)
	if err != nil {
		return nil, err
	}
	return &Stats{Statistics: st, TopTactics: top}, nil
}

// Purge 删除超过保留天数的分析
func (uc *ArchiveUseCase) Purge(ctx context.Context, days int) (int64, error) {
	cutoff := uc.now().AddDate(0, 0, -days)
	n, err := uc.repo.PurgeBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	uc.log.Infof("已清理 %d 条早于 %s 的分析记录", n, cutoff.UTC().Format(time.DateOnly))
	return n, nil
}
