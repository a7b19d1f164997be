package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/config"
	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/logger"
)

// Redis 基于 go-redis 的缓存
type Redis struct {
	rdb    *redis.Client
	prefix string
}

var _ Store = (*Redis)(nil)

// New 按配置创建缓存。未配置地址或连接失败时返回 Nop
func New(ctx context.Context, cfg config.RedisConfig) Store {
	if cfg.Addr == "" {
		logger.Log.Info("未配置 Redis，查询结果不缓存")
		return Nop{}
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Log.Warnf("Redis 不可用，查询结果不缓存: %v", err)
		_ = rdb.Close()
		return Nop{}
	}
	logger.Log.Infof("已连接 Redis: %s", cfg.Addr)
	return &Redis{rdb: rdb, prefix: "truth_radar:"}
}

func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.rdb.Get(ctx, r.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (r *Redis) Set(ctx context.Context, key, val string, ttl time.Duration) error {
	return r.rdb.Set(ctx, r.prefix+key, val, ttl).Err()
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

// Close 关闭连接
func (r *Redis) Close() error {
	return r.rdb.Close()
}
