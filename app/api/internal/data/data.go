package data

import (
	"context"
	"fmt"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/archive"
	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/engine"
)

// ErrStorageDisabled 未配置数据库时所有仓储返回该错误
var ErrStorageDisabled = errors.ServiceUnavailable("STORAGE_DISABLED", "database not configured")

// Data 复用分析引擎的归档库，store 为 nil 表示未启用持久化
type Data struct {
	store *archive.Store
}

func NewData(comp *engine.Components, logger log.Logger) (*Data, func(), error) {
	helper := log.NewHelper(logger)
	if comp.Archive == nil {
		helper.Warn("未配置数据库，归档、举报与登录接口不可用")
		return &Data{}, func() {}, nil
	}

	// 用户表与归档表同库
	if _, err := comp.Archive.DB().ExecContext(context.Background(), `
		CREATE TABLE IF NOT EXISTS users (
			username TEXT PRIMARY KEY,
			password_hash TEXT NOT NULL,
			department TEXT NOT NULL DEFAULT '',
			role TEXT NOT NULL DEFAULT '',
			created_at BIGINT NOT NULL
		)
	`); err != nil {
		return nil, nil, fmt.Errorf("failed to init users table: %w", err)
	}

	cleanup := func() {
		// 连接由引擎的 cleanup 关闭
		helper.Info("closing the data resources")
	}
	return &Data{store: comp.Archive}, cleanup, nil
}

func (d *Data) enabled() error {
	if d.store == nil {
		return ErrStorageDisabled
	}
	return nil
}
