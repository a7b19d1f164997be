package service

import (
	"context"

	"github.com/go-kratos/kratos/v2/errors"

	"github.com/iWorld-y/truth_radar/app/api/internal/biz"
	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/model"
)

type ListArchiveReq struct {
	Limit    int    `json:"limit"`
	UserType string `json:"user_type"`
}

type ListArchiveReply struct {
	Items []*model.AnalysisRecord `json:"items"`
	Count int                     `json:"count"`
}

type GetArchiveReq struct {
	ID string `json:"id"`
}

func (s *RadarService) ListArchive(ctx context.Context, req *ListArchiveReq) (*ListArchiveReply, error) {
	ut := model.UserType(req.UserType)
	if ut != "" && ut != model.UserPublic && ut != model.UserAuthority {
		return nil, errors.BadRequest("INVALID_USER_TYPE", "user_type must be public or authority")
	}
	items, err := s.ucArchive.List(ctx, req.Limit, ut)
	if err != nil {
		return nil, err
	}
	return &ListArchiveReply{Items: items, Count: len(items)}, nil
}

func (s *RadarService) GetArchive(ctx context.Context, req *GetArchiveReq) (*model.AnalysisRecord, error) {
	return s.ucArchive.Get(ctx, req.ID)
}

// Stats 统计面板
func (s *RadarService) Stats(ctx context.Context, _ *Empty) (*biz.Stats, error) {
	return s.ucArchive.Stats(ctx)
}
