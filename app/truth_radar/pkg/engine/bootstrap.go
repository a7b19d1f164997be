package engine

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/archive"
	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/cache"
	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/config"
	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/correlator"
	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/factcheck"
	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/fetch"
	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/imaging"
	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/logger"
	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/oracle"
	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/search/factory"
	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/security"
)

// Components 由配置装配出的组件，Archive 未配置时为 nil
type Components struct {
	Engine  *Engine
	Archive *archive.Store
	Cache   cache.Store
}

func seconds(n int) time.Duration { return time.Duration(n) * time.Second }

// newOracleClient 外部模型不可用时返回一个始终降级的客户端
func newOracleClient(ctx context.Context, name string, cfg config.LLMConfig, conc config.ConcurrencyConfig) *oracle.Client {
	p, err := oracle.NewProvider(ctx, cfg, conc)
	switch {
	case errors.Is(err, oracle.ErrNotConfigured):
		logger.Log.Warnf("%s 模型未配置，相关分析将降级", name)
	case err != nil:
		logger.Log.Errorf("%s 模型初始化失败: %v", name, err)
		p = nil
	default:
		logger.Log.Infof("%s 模型已就绪: %s/%s", name, p.Name(), cfg.Model)
	}
	return oracle.NewClient(p, seconds(cfg.Timeout))
}

func newFactChecker(cfg *config.Config, store cache.Store) factcheck.Searcher {
	var chain factcheck.Chain
	if cfg.FactCheck.APIKey != "" {
		chain = append(chain, factcheck.NewGoogle(cfg.FactCheck))
	}
	if cfg.FactCheck.WebFallback {
		s, err := factory.NewSearcher(cfg.Search)
		if err != nil {
			logger.Log.Infof("未启用网页核查兜底: %v", err)
		} else {
			chain = append(chain, factcheck.NewWeb(s, cfg.FactCheck.Language))
		}
	}
	if len(chain) == 0 {
		logger.Log.Warn("事实核查服务未配置")
		return nil
	}
	return factcheck.NewCached(chain, store, seconds(cfg.FactCheck.CacheTTL))
}

// Build 按配置装配引擎，返回的 cleanup 负责释放连接
func Build(ctx context.Context, cfg *config.Config) (*Components, func(), error) {
	text := newOracleClient(ctx, "文本", cfg.LLM, cfg.Concurrency)
	vision := newOracleClient(ctx, "视觉", cfg.Vision, cfg.Concurrency)
	store := cache.New(ctx, cfg.Redis)

	var closers []io.Closer
	if c, ok := store.(io.Closer); ok {
		closers = append(closers, c)
	}

	d := Deps{
		Security:  security.NewHeuristics(nil, cfg.Analysis.MaxContentLength, cfg.Analysis.MinContentLength),
		Oracle:    text,
		FactCheck: newFactChecker(cfg, store),
		Context: correlator.New(correlator.Config{
			Enabled:     cfg.Analysis.ContextEnabled,
			UseOracle:   cfg.Analysis.ContextUseOracle,
			MaxKeywords: cfg.Analysis.MaxKeywords,
			RecencyDays: cfg.Analysis.RecencyDays,
		}, nil, text),
		Images:  imaging.NewAnalyzer(vision),
		Fetcher: fetch.New(seconds(cfg.FactCheck.Timeout)),
		Cache:   store,
	}

	comp := &Components{Cache: store}
	db, err := archive.Open(ctx, cfg.DB)
	switch {
	case errors.Is(err, archive.ErrDisabled):
		logger.Log.Info("未配置数据库，分析结果不归档")
	case err != nil:
		logger.Log.Errorf("数据库不可用，分析结果不归档: %v", err)
	default:
		d.Archive = db
		comp.Archive = db
		closers = append(closers, db)
	}

	comp.Engine = New(d, cfg.Analysis, cfg.Concurrency.BatchWorker)
	cleanup := func() {
		for _, c := range closers {
			if err := c.Close(); err != nil {
				logger.Log.Warnf("关闭资源失败: %v", err)
			}
		}
	}
	return comp, cleanup, nil
}
