package server

import (
	"github.com/google/wire"

	"github.com/iWorld-y/truth_radar/app/api/internal/biz"
	"github.com/iWorld-y/truth_radar/app/api/internal/data"
	"github.com/iWorld-y/truth_radar/app/api/internal/service"
)

// ProviderSet 是 API 服务的依赖注入 Provider 集合
var ProviderSet = wire.NewSet(
	// Server providers
	NewHTTPServer,
	NewRetentionJob,

	// Engine providers
	NewRadarConfig,
	NewRadarComponents,
	NewAnalyzer,

	// Data providers
	data.NewData,
	data.NewUserRepo,
	data.NewReportRepo,
	data.NewArchiveRepo,

	// UseCase providers
	biz.NewAuthUseCase,
	biz.NewReportUseCase,
	biz.NewArchiveUseCase,

	// Service providers
	service.NewRadarService,
)
