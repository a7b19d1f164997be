package service

import (
	"context"

	"github.com/iWorld-y/truth_radar/app/api/internal/biz"
)

type LoginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *RadarService) Login(ctx context.Context, req *LoginReq) (*biz.Token, error) {
	return s.ucAuth.Login(ctx, req.Username, req.Password)
}

// VerifyToken 供 HTTP 层校验 Bearer 令牌
func (s *RadarService) VerifyToken(token string) (*biz.Claims, error) {
	return s.ucAuth.Verify(token)
}
