package server

import (
	"context"
	"fmt"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport"
	"github.com/robfig/cron/v3"

	"github.com/iWorld-y/truth_radar/app/api/internal/biz"
	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/config"
)

var _ transport.Server = (*RetentionJob)(nil)

// RetentionJob 按计划清理过期分析，随应用一起启停
type RetentionJob struct {
	cron *cron.Cron
	uc   *biz.ArchiveUseCase
	days int
	log  *log.Helper
}

func NewRetentionJob(cfg *config.Config, uc *biz.ArchiveUseCase, logger log.Logger) (*RetentionJob, error) {
	j := &RetentionJob{
		cron: cron.New(),
		uc:   uc,
		days: cfg.Analysis.RetentionDays,
		log:  log.NewHelper(logger),
	}
	if _, err := j.cron.AddFunc(cfg.Analysis.RetentionCron, j.run); err != nil {
		return nil, fmt.Errorf("invalid retention_cron %q: %w", cfg.Analysis.RetentionCron, err)
	}
	return j, nil
}

func (j *RetentionJob) run() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if _, err := j.uc.Purge(ctx, j.days); err != nil {
		j.log.Warnf("归档清理失败: %v", err)
	}
}

func (j *RetentionJob) Start(context.Context) error {
	j.log.Infof("归档清理任务已启动，保留 %d 天", j.days)
	j.cron.Start()
	return nil
}

func (j *RetentionJob) Stop(ctx context.Context) error {
	select {
	case <-j.cron.Stop().Done():
	case <-ctx.Done():
	}
	return nil
}
