package service

import (
	"context"
	stderrors "errors"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/truth_radar/app/api/internal/biz"
	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/engine"
	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/imaging"
	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/model"
	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/security"
)

// Analyzer 分析引擎对外提供的能力
type Analyzer interface {
	Submit(ctx context.Context, req model.AnalysisRequest) (*model.AnalysisResult, error)
	SubmitBatch(ctx context.Context, reqs []model.AnalysisRequest) (*engine.BatchReport, error)
	QuickTest(ctx context.Context) *model.AnalysisResult
	AnalyzeImage(ctx context.Context, data []byte, filename string) (*imaging.Report, error)
	Health(ctx context.Context) *engine.HealthReport
}

var _ Analyzer = (*engine.Engine)(nil)

// Empty 无参数请求
type Empty struct{}

type RadarService struct {
	eng       Analyzer
	ucAuth    *biz.AuthUseCase
	ucReport  *biz.ReportUseCase
	ucArchive *biz.ArchiveUseCase
	log       *log.Helper
}

func NewRadarService(eng Analyzer, ucAuth *biz.AuthUseCase, ucReport *biz.ReportUseCase, ucArchive *biz.ArchiveUseCase, logger log.Logger) *RadarService {
	return &RadarService{
		eng:       eng,
		ucAuth:    ucAuth,
		ucReport:  ucReport,
		ucArchive: ucArchive,
		log:       log.NewHelper(logger),
	}
}

// userType 只有携带有效令牌的请求才按权威用户处理
func userType(ctx context.Context) model.UserType {
	if _, ok := biz.FromAuthContext(ctx); ok {
		return model.UserAuthority
	}
	return model.UserPublic
}

// analysisError 把引擎错误转换为 HTTP 错误
func analysisError(err error) error {
	switch {
	case stderrors.Is(err, security.ErrValidation):
		return errors.BadRequest("INVALID_INPUT", "Invalid input: "+err.Error())
	case stderrors.Is(err, engine.ErrBatchTooLarge):
		return errors.BadRequest("BATCH_TOO_LARGE", err.Error())
	case stderrors.Is(err, engine.ErrImageTooLarge):
		return errors.New(413, "FILE_TOO_LARGE", "File too large. Maximum size is 10MB")
	case stderrors.Is(err, engine.ErrNotImage):
		return errors.New(415, "UNSUPPORTED_TYPE", err.Error())
	}
	return errors.InternalServer("ANALYSIS_FAILED", "Analysis failed: "+err.Error())
}

// Analyze 单条文本分析
func (s *RadarService) Analyze(ctx context.Context, req *model.AnalysisRequest) (*model.AnalysisResult, error) {
	req.UserType = userType(ctx)
	res, err := s.eng.Submit(ctx, *req)
	if err != nil {
		return nil, analysisError(err)
	}
	return res, nil
}

// AnalyzeBatch 批量分析
func (s *RadarService) AnalyzeBatch(ctx context.Context, reqs *[]model.AnalysisRequest) (*engine.BatchReport, error) {
	ut := userType(ctx)
	list := *reqs
	for i := range list {
		list[i].UserType = ut
	}
	report, err := s.eng.SubmitBatch(ctx, list)
	if err != nil {
		return nil, analysisError(err)
	}
	return report, nil
}

// QuickTest 固定文本自检
func (s *RadarService) QuickTest(ctx context.Context, _ *Empty) (*model.AnalysisResult, error) {
	return s.eng.QuickTest(ctx), nil
}

func (s *RadarService) Health(ctx context.Context, _ *Empty) (*engine.HealthReport, error) {
	return s.eng.Health(ctx), nil
}

// UploadImage 图片取证
func (s *RadarService) UploadImage(ctx context.Context, data []byte, filename string) (*imaging.Report, error) {
	report, err := s.eng.AnalyzeImage(ctx, data, filename)
	if err != nil {
		return nil, analysisError(err)
	}
	s.log.Infof("图片取证完成: %s, 评分 %.1f", filename, report.ForensicScore)
	return report, nil
}

// Formats 上传接口支持的格式
type Formats struct {
	MaxFileSizeMB    int      `json:"max_file_size_mb"`
	SupportedFormats []string `json:"supported_formats"`
}

func (s *RadarService) UploadFormats(context.Context, *Empty) (*Formats, error) {
	return &Formats{
		MaxFileSizeMB:    engine.MaxImageSize >> 20,
		SupportedFormats: []string{"image/jpeg", "image/png", "image/gif", "image/webp"},
	}, nil
}
