package service

import (
	"context"

	"github.com/iWorld-y/truth_radar/app/api/internal/biz"
	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/archive"
	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/model"
)

type ReportStatusReq struct {
	ID string `json:"id"`
}

// SubmitReport 提交虚假信息举报
func (s *RadarService) SubmitReport(ctx context.Context, req *model.MisinformationReport) (*model.ReportReceipt, error) {
	if userType(ctx) == model.UserAuthority {
		req.ReporterType = model.UserAuthority
	} else if req.ReporterType == model.UserAuthority {
		req.ReporterType = model.UserPublic
	}
	return s.ucReport.Submit(ctx, req)
}

func (s *RadarService) ReportStatus(ctx context.Context, req *ReportStatusReq) (*archive.ReportEntry, error) {
	return s.ucReport.Get(ctx, req.ID)
}

func (s *RadarService) ReportCategories(context.Context, *Empty) (map[string]biz.Category, error) {
	return s.ucReport.Categories(), nil
}
