// Package imaging 图片取证，六个分项并发执行，互不影响
package imaging

import (
	"bytes"
	"context"
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/logger"
	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/oracle"
	tu "github.com/iWorld-y/truth_radar/app/truth_radar/pkg/textutil"
)

// Vision 视觉模型
type Vision interface {
	Describe(ctx context.Context, prompt string, img oracle.Image) (string, error)
}

// Analyzer 图片取证分析器
type Analyzer struct {
	vision Vision
	now    func() time.Time
}

// NewAnalyzer vision 为 nil 时，依赖模型的分项记录错误
func NewAnalyzer(vision Vision) *Analyzer {
	return &Analyzer{vision: vision, now: time.Now}
}

var (
	editingSoftware  = []string{"photoshop", "gimp", "paint.net", "canva", "pixlr"}
	cameraFields     = []string{"Make", "Model", "DateTime"}
	suspiciousPhrase = []string{
		"breaking news", "urgent", "share immediately", "before it's deleted",
		"doctors hate this", "shocking truth", "government hiding",
		"click here", "limited time", "act now",
	}
)

// Analyze 执行全部分项并计算评分
func (a *Analyzer) Analyze(ctx context.Context, data []byte, filename string) *Report {
	start := a.now()
	head := md5.Sum(data[:min(len(data), 1024)])
	r := &Report{
		AnalysisID: hex.EncodeToString(head[:]),
		Timestamp:  start.UTC(),
		Filename:   filename,
		FileSize:   len(data),
	}

	var wg sync.WaitGroup
	run := func(name string, fn func(), onPanic func(string)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if rec := recover(); rec != nil {
					logger.Log.Errorf("图片分项 %s 异常: %v", name, rec)
					onPanic(fmt.Sprint(rec))
				}
			}()
			fn()
		}()
	}

	run("metadata", func() { r.Metadata = extractMetadata(data) },
		func(e string) { r.Metadata = &Metadata{Error: "Metadata extraction failed: " + e} })
	run("content", func() { r.Content = a.content(ctx, data) },
		func(e string) { r.Content = &Content{Error: "Content analysis failed: " + e} })
	run("text", func() { r.Text = a.text(ctx, data) },
		func(e string) { r.Text = &Text{Error: "Text detection failed: " + e} })
	run("manipulation", func() { r.Manipulation = a.manipulation(ctx, data) },
		func(e string) { r.Manipulation = &Manipulation{Error: "Manipulation detection failed: " + e} })
	run("hash", func() { r.Hash = hashes(data) },
		func(e string) { r.Hash = &Hashes{Error: "Hash generation failed: " + e} })
	run("properties", func() { r.Properties = properties(data) },
		func(e string) { r.Properties = &Properties{Error: "Properties analysis failed: " + e} })
	wg.Wait()

	r.ProcessingTime = a.now().Sub(start).Seconds()
	r.ForensicScore = r.Score()
	return r
}

func decodeConfig(data []byte) (image.Config, string, error) {
	return image.DecodeConfig(bytes.NewReader(data))
}

func colorMode(m color.Model) string {
	switch m {
	case color.GrayModel, color.Gray16Model:
		return "L"
	case color.RGBAModel, color.RGBA64Model:
		return "RGB"
	case color.NRGBAModel, color.NRGBA64Model:
		return "RGBA"
	case color.YCbCrModel:
		return "YCbCr"
	case color.CMYKModel:
		return "CMYK"
	case color.AlphaModel, color.Alpha16Model:
		return "A"
	}
	if _, ok := m.(color.Palette); ok {
		return "P"
	}
	return "unknown"
}

type exifCollector map[string]string

func (c exifCollector) Walk(name exif.FieldName, tag *tiff.Tag) error {
	if tag.Format() == tiff.StringVal {
		if s, err := tag.StringVal(); err == nil {
			c[string(name)] = strings.TrimRight(s, "\x00 ")
			return nil
		}
	}
	c[string(name)] = tag.String()
	return nil
}

func extractMetadata(data []byte) *Metadata {
	cfg, format, err := decodeConfig(data)
	if err != nil {
		return &Metadata{Error: "Metadata extraction failed: " + err.Error()}
	}
	m := &Metadata{
		Format:               strings.ToUpper(format),
		Mode:                 colorMode(cfg.ColorModel),
		Width:                cfg.Width,
		Height:               cfg.Height,
		SuspiciousIndicators: []string{},
	}

	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return m
	}
	fields := exifCollector{}
	if err := x.Walk(fields); err != nil || len(fields) == 0 {
		return m
	}
	m.HasEXIF = true
	m.EXIF = fields

	if sw, ok := fields["Software"]; ok {
		lower := strings.ToLower(sw)
		for _, editor := range editingSoftware {
			if strings.Contains(lower, editor) {
				m.SuspiciousIndicators = append(m.SuspiciousIndicators, "Edited with: "+lower)
				break
			}
		}
	}
	missing := 0
	for _, f := range cameraFields {
		if _, ok := fields[f]; !ok {
			missing++
		}
	}
	if missing == len(cameraFields) {
		m.SuspiciousIndicators = append(m.SuspiciousIndicators, "Missing camera metadata")
	}
	return m
}

func (a *Analyzer) ask(ctx context.Context, prompt string, data []byte) (string, error) {
	if a.vision == nil {
		return "", oracle.ErrNotConfigured
	}
	return a.vision.Describe(ctx, prompt, oracle.Image{Data: data, MIME: http.DetectContentType(data)})
}

// jsonObject 取第一个 { 到最后一个 } 之间的内容
func jsonObject(s string) (string, bool) {
	i, j := strings.Index(s, "{"), strings.LastIndex(s, "}")
	if i < 0 || j <= i {
		return "", false
	}
	return s[i : j+1], true
}

func (a *Analyzer) content(ctx context.Context, data []byte) *Content {
	raw, err := a.ask(ctx, contentPrompt, data)
	if err != nil {
		return &Content{Error: "Content analysis failed: " + err.Error()}
	}
	c := &Content{}
	if obj, ok := jsonObject(raw); ok {
		if err := json.Unmarshal([]byte(obj), c); err != nil {
			return &Content{Error: "Content analysis failed: " + err.Error()}
		}
	}
	normalizeContent(c)
	return c
}

func normalizeContent(c *Content) {
	for _, s := range []*[]string{&c.Objects, &c.Labels, &c.Logos, &c.SimilarImages, &c.ContentWarnings} {
		if *s == nil {
			*s = []string{}
		}
	}
	c.SimilarImages = tu.Head(c.SimilarImages, 5)
}

func (a *Analyzer) text(ctx context.Context, data []byte) *Text {
	raw, err := a.ask(ctx, textPrompt, data)
	if err != nil {
		return &Text{Error: "Text detection failed: " + err.Error()}
	}
	t := &Text{DetectedText: strings.TrimSpace(raw), SuspiciousPatterns: []string{}}
	if strings.EqualFold(t.DetectedText, "NO_TEXT") {
		t.DetectedText = ""
		return t
	}
	lower := strings.ToLower(t.DetectedText)
	for _, p := range suspiciousPhrase {
		if strings.Contains(lower, p) {
			t.SuspiciousPatterns = append(t.SuspiciousPatterns, p)
		}
	}
	return t
}

func (a *Analyzer) manipulation(ctx context.Context, data []byte) *Manipulation {
	raw, err := a.ask(ctx, manipulationPrompt, data)
	if err != nil {
		return &Manipulation{Error: "Manipulation detection failed: " + err.Error()}
	}
	return parseManipulation(raw)
}

// parseManipulation 无法解析时给出中性的 50
func parseManipulation(raw string) *Manipulation {
	fallback := &Manipulation{Likelihood: 50, DetectedIssues: []string{}, Confidence: 0.5, Explanation: raw}
	obj, ok := jsonObject(raw)
	if !ok {
		return fallback
	}
	m := &Manipulation{}
	if err := json.Unmarshal([]byte(obj), m); err != nil {
		return fallback
	}
	if m.DetectedIssues == nil {
		m.DetectedIssues = []string{}
	}
	m.Likelihood = math.Max(0, math.Min(100, m.Likelihood))
	return m
}

func hashes(data []byte) *Hashes {
	m := md5.Sum(data)
	s := sha256.Sum256(data)
	h := &Hashes{
		MD5:       hex.EncodeToString(m[:]),
		SHA256:    hex.EncodeToString(s[:]),
		SizeBytes: len(data),
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		logger.Log.Warnf("感知哈希生成失败: %v", err)
		return h
	}
	h.PerceptualHash = DHash(img)
	return h
}

// DHash 8x8 灰度差值哈希，每行比较相邻 7 对像素，共 56 位
func DHash(img image.Image) string {
	small := image.NewGray(image.Rect(0, 0, 8, 8))
	draw.CatmullRom.Scale(small, small.Bounds(), img, img.Bounds(), draw.Src, nil)

	var sb strings.Builder
	for y := 0; y < 8; y++ {
		for x := 0; x < 7; x++ {
			if small.GrayAt(x, y).Y > small.GrayAt(x+1, y).Y {
				sb.WriteByte('1')
			} else {
				sb.WriteByte('0')
			}
		}
	}
	return sb.String()
}

func properties(data []byte) *Properties {
	cfg, format, err := decodeConfig(data)
	if err != nil {
		return &Properties{Error: "Properties analysis failed: " + err.Error()}
	}
	if cfg.Height == 0 {
		return &Properties{Error: "Properties analysis failed: zero height"}
	}
	ratio := math.Round(float64(cfg.Width)/float64(cfg.Height)*100) / 100
	p := &Properties{
		Dimensions:           fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
		AspectRatio:          ratio,
		ColorMode:            colorMode(cfg.ColorModel),
		Format:               strings.ToUpper(format),
		HasTransparency:      hasTransparency(cfg.ColorModel),
		SuspiciousProperties: []string{},
	}
	if cfg.Width*cfg.Height > 10_000_000 {
		p.SuspiciousProperties = append(p.SuspiciousProperties, "Unusually large dimensions")
	}
	if cfg.Width < 100 || cfg.Height < 100 {
		p.SuspiciousProperties = append(p.SuspiciousProperties, "Unusually small dimensions")
	}
	if ratio > 5 || ratio < 0.2 {
		p.SuspiciousProperties = append(p.SuspiciousProperties, "Unusual aspect ratio")
	}
	return p
}

func hasTransparency(m color.Model) bool {
	switch m {
	case color.NRGBAModel, color.NRGBA64Model, color.AlphaModel, color.Alpha16Model:
		return true
	}
	if pal, ok := m.(color.Palette); ok {
		for _, c := range pal {
			if _, _, _, alpha := c.RGBA(); alpha < 0xffff {
				return true
			}
		}
	}
	return false
}

const contentPrompt = `Describe this image for a misinformation forensics report.
Respond with JSON only:
{"objects": [..], "labels": [..], "faces_detected": 0, "logos": [..],
 "similar_images": [known URLs where this image appeared, if any],
 "content_warnings": [signs the image may be misleading or manipulated]}`

const textPrompt = `Extract all text visible in this image exactly as written.
Return only the text. If there is no text, return NO_TEXT.`

const manipulationPrompt = `Analyze this image for signs of digital manipulation or editing. Look for:
1. Inconsistent lighting or shadows
2. Unnatural edges or blending
3. Repeated patterns or clone stamping
4. Color or pixel inconsistencies
5. Compression artifacts that suggest editing
6. Any other signs of photo manipulation

Provide your analysis as a JSON response with:
- manipulation_likelihood: score from 0-100
- detected_issues: list of specific issues found
- confidence: your confidence in the analysis (0-1)
- explanation: detailed explanation`
