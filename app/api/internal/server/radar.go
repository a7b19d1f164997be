package server

import (
	"context"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/truth_radar/app/api/internal/conf"
	"github.com/iWorld-y/truth_radar/app/api/internal/service"
	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/config"
	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/engine"
	trLogger "github.com/iWorld-y/truth_radar/app/truth_radar/pkg/logger"
)

// NewRadarConfig 读取分析引擎配置并初始化引擎日志
func NewRadarConfig(c *conf.Radar, logger log.Logger) (*config.Config, error) {
	path := "configs/config.yaml"
	if c != nil && c.Config != "" {
		path = c.Config
	}
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, err
	}

	if err := trLogger.InitLogger(cfg.Log.Level, cfg.Log.File); err != nil {
		log.NewHelper(logger).Errorf("Failed to init truth_radar logger: %v", err)
		_ = trLogger.InitLogger("info", "") // 降级处理
	}
	return cfg, nil
}

// NewRadarComponents 装配分析引擎
func NewRadarComponents(cfg *config.Config, logger log.Logger) (*engine.Components, func(), error) {
	comp, release, err := engine.Build(context.Background(), cfg)
	if err != nil {
		log.NewHelper(logger).Errorf("Failed to init engine: %v", err)
		return nil, nil, err
	}
	cleanup := func() {
		log.NewHelper(logger).Info("Cleaning up truth_radar engine")
		release()
	}
	return comp, cleanup, nil
}

// NewAnalyzer 暴露引擎给服务层
func NewAnalyzer(comp *engine.Components) service.Analyzer {
	return comp.Engine
}
