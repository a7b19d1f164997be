package engine

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/archive"
	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/imaging"
	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/logger"
	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/model"
	tu "github.com/iWorld-y/truth_radar/app/truth_radar/pkg/textutil"
)

var (
	ErrBatchTooLarge = errors.New("batch too large")
	ErrImageTooLarge = errors.New("image too large")
	ErrNotImage      = errors.New("unsupported image type")
)

// MaxImageSize 上传图片大小上限
const MaxImageSize = 10 << 20

// QuickTestText 自检使用的固定文本
const QuickTestText = "This is a test message to verify the analysis system is working properly."

// Submit 入口：抓取链接、校验、清洗、分析并归档
func (e *Engine) Submit(ctx context.Context, req model.AnalysisRequest) (*model.AnalysisResult, error) {
	if req.URL != "" && e.fetcher != nil {
		art, err := e.fetcher.Fetch(ctx, req.URL)
		if err != nil {
			logger.Log.Warnf("链接正文抓取失败 [%s]: %v", req.URL, err)
			if !hasText(req.Text) {
				return nil, fmt.Errorf("fetch %s: %w", req.URL, err)
			}
		} else {
			req.Text = joinFetched(req.Text, art.Title, art.Text, e.cfg.MaxContentLength)
		}
	}

	if err := e.sec.ValidateInput(req.Text); err != nil {
		return nil, err
	}
	req.Text = e.sec.Sanitize(req.Text)
	req.Normalize()
	if req.Level == model.LevelDeep {
		req.TrackOrigin = true
	}

	res := e.Analyze(ctx, req)
	res.ID = e.newID()
	res.Timestamp = e.now().UTC()

	if e.archive != nil {
		if err := e.archive.SaveAnalysis(ctx, archive.NewRecord(&req, res)); err != nil {
			logger.Log.Warnf("归档失败 [%s]: %v", res.ID, err)
		}
	}
	return res, nil
}

// joinFetched 把抓取的正文接在用户文本之后，总长度不超过 limit
func joinFetched(text, title, body string, limit int) string {
	parts := []string{}
	for _, p := range []string{text, title, body} {
		if hasText(p) {
			parts = append(parts, strings.TrimSpace(p))
		}
	}
	joined := strings.Join(parts, "\n\n")
	if limit > 0 && tu.RuneLen(joined) > limit {
		joined = string([]rune(joined)[:limit])
	}
	return joined
}

// BatchItem 批量分析中的单项
type BatchItem struct {
	Index  int                   `json:"index"`
	Status string                `json:"status"`
	Result *model.AnalysisResult `json:"result,omitempty"`
	Error  string                `json:"error,omitempty"`
}

// BatchReport 批量分析结果
type BatchReport struct {
	BatchID    string      `json:"batch_id"`
	Total      int         `json:"total"`
	Successful int         `json:"successful"`
	Failed     int         `json:"failed"`
	Results    []BatchItem `json:"results"`
}

// SubmitBatch 并发分析，单项失败不影响其他项
func (e *Engine) SubmitBatch(ctx context.Context, reqs []model.AnalysisRequest) (*BatchReport, error) {
	if len(reqs) > e.cfg.MaxBatchSize {
		return nil, fmt.Errorf("%w: Maximum %d texts per batch", ErrBatchTooLarge, e.cfg.MaxBatchSize)
	}

	items := make([]BatchItem, len(reqs))
	var g errgroup.Group
	g.SetLimit(e.workers)
	for i, req := range reqs {
		g.Go(func() error {
			item := BatchItem{Index: i}
			res, err := e.Submit(ctx, req)
			if err != nil {
				item.Status = "failed"
				item.Error = err.Error()
			} else {
				item.Status = "success"
				item.Result = res
			}
			items[i] = item
			return nil
		})
	}
	_ = g.Wait()

	report := &BatchReport{
		BatchID: "batch_" + e.newID(),
		Total:   len(reqs),
		Results: items,
	}
	for _, it := range items {
		if it.Status == "success" {
			report.Successful++
		} else {
			report.Failed++
		}
	}
	logger.Log.Infof("批量分析完成: 共 %d, 成功 %d, 失败 %d", report.Total, report.Successful, report.Failed)
	return report, nil
}

// QuickTest 用固定文本跑一次快速扫描
func (e *Engine) QuickTest(ctx context.Context) *model.AnalysisResult {
	return e.Analyze(ctx, model.AnalysisRequest{
		Text:        QuickTestText,
		Language:    "en",
		Level:       model.LevelQuick,
		SafetyCheck: true,
		UserType:    model.UserPublic,
	})
}

// AnalyzeImage 图片取证入口
func (e *Engine) AnalyzeImage(ctx context.Context, data []byte, filename string) (*imaging.Report, error) {
	if len(data) > MaxImageSize {
		return nil, fmt.Errorf("%w: maximum %d bytes", ErrImageTooLarge, MaxImageSize)
	}
	if ct := http.DetectContentType(data); !strings.HasPrefix(ct, "image/") {
		return nil, fmt.Errorf("%w: %s", ErrNotImage, ct)
	}
	return e.images.Analyze(ctx, data, filename), nil
}
