package data

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/truth_radar/app/api/internal/biz"
)

type userRepo struct {
	data *Data
	log  *log.Helper
}

func NewUserRepo(data *Data, logger log.Logger) biz.UserRepo {
	return &userRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

func (r *userRepo) CreateUser(ctx context.Context, u *biz.User) error {
	if err := r.data.enabled(); err != nil {
		return err
	}
	s := r.data.store
	_, err := s.DB().ExecContext(ctx, s.Rebind(`
		INSERT INTO users (username, password_hash, department, role, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (username) DO NOTHING`),
		u.Username, u.PasswordHash, u.Department, u.Role, time.Now().UnixMilli())
	return err
}

func (r *userRepo) GetUserByUsername(ctx context.Context, username string) (*biz.User, error) {
	if err := r.data.enabled(); err != nil {
		return nil, err
	}
	s := r.data.store
	u := &biz.User{}
	err := s.DB().QueryRowContext(ctx, s.Rebind(`
		SELECT username, password_hash, department, role FROM users WHERE username = ?`), username).
		Scan(&u.Username, &u.PasswordHash, &u.Department, &u.Role)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFound("USER_NOT_FOUND", "user not found")
		}
		return nil, err
	}
	return u, nil
}
