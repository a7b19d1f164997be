package imaging

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"strings"
	"testing"

	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/oracle"
)

type mockVision struct {
	content, text, manipulation string
	err                         error
}

func (m *mockVision) Describe(_ context.Context, prompt string, img oracle.Image) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if img.MIME != "image/png" {
		return "", errors.New("unexpected mime " + img.MIME)
	}
	switch {
	case strings.HasPrefix(prompt, "Describe"):
		return m.content, nil
	case strings.HasPrefix(prompt, "Extract"):
		return m.text, nil
	default:
		return m.manipulation, nil
	}
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func gradient(w, h int, descending bool) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(x * 255 / (w - 1))
			if descending {
				v = 255 - v
			}
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return img
}

func TestAnalyzeAllSlots(t *testing.T) {
	rgba := image.NewRGBA(image.Rect(0, 0, 200, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 200; x++ {
			rgba.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 80, A: 255})
		}
	}
	data := encodePNG(t, rgba)

	v := &mockVision{
		content:      `{"labels":["poster"],"content_warnings":["cropped headline"],"similar_images":["https://a.example/1"]}`,
		text:         "BREAKING NEWS: share immediately before it's deleted",
		manipulation: "Result: {\"manipulation_likelihood\": 40, \"detected_issues\": [\"edge halo\"], \"confidence\": 0.7}",
	}
	r := NewAnalyzer(v).Analyze(context.Background(), data, "poster.png")

	if r.Metadata.Error != "" || r.Metadata.Format != "PNG" || r.Metadata.HasEXIF {
		t.Errorf("metadata = %+v", r.Metadata)
	}
	if r.Properties.Dimensions != "200x100" || r.Properties.AspectRatio != 2 || r.Properties.HasTransparency {
		t.Errorf("properties = %+v", r.Properties)
	}
	if len(r.Properties.SuspiciousProperties) != 0 {
		t.Errorf("suspicious properties = %v", r.Properties.SuspiciousProperties)
	}
	if len(r.Hash.MD5) != 32 || len(r.Hash.SHA256) != 64 || len(r.Hash.PerceptualHash) != 56 {
		t.Errorf("hash = %+v", r.Hash)
	}
	wantText := []string{"breaking news", "share immediately", "before it's deleted"}
	if strings.Join(r.Text.SuspiciousPatterns, "|") != strings.Join(wantText, "|") {
		t.Errorf("text patterns = %v", r.Text.SuspiciousPatterns)
	}
	if r.Manipulation.Likelihood != 40 || r.Manipulation.DetectedIssues[0] != "edge halo" {
		t.Errorf("manipulation = %+v", r.Manipulation)
	}
	// 50 - 10 + 10 - 12 - 24
	if math.Abs(r.ForensicScore-14) > 1e-9 {
		t.Errorf("score = %v, want 14", r.ForensicScore)
	}
	if r.FileSize != len(data) || r.Filename != "poster.png" || len(r.AnalysisID) != 32 {
		t.Errorf("report header = %+v", r)
	}
}

func TestAnalyzeWithoutVision(t *testing.T) {
	data := encodePNG(t, gradient(50, 400, false))
	r := NewAnalyzer(nil).Analyze(context.Background(), data, "")

	for name, e := range map[string]string{
		"content":      r.Content.Error,
		"text":         r.Text.Error,
		"manipulation": r.Manipulation.Error,
	} {
		if e == "" {
			t.Errorf("%s slot should record an error", name)
		}
	}
	want := []string{"Unusually small dimensions", "Unusual aspect ratio"}
	if strings.Join(r.Properties.SuspiciousProperties, "|") != strings.Join(want, "|") {
		t.Errorf("suspicious = %v", r.Properties.SuspiciousProperties)
	}
	if r.Metadata.Mode != "L" {
		t.Errorf("mode = %q", r.Metadata.Mode)
	}
	if r.ForensicScore != 50 {
		t.Errorf("score = %v, want neutral 50", r.ForensicScore)
	}
}

func TestAnalyzeGarbage(t *testing.T) {
	r := NewAnalyzer(nil).Analyze(context.Background(), []byte("not an image"), "x.bin")
	if r.Metadata.Error == "" || r.Properties.Error == "" {
		t.Errorf("decode errors expected: %+v %+v", r.Metadata, r.Properties)
	}
	if r.Hash.Error != "" || r.Hash.MD5 == "" || r.Hash.PerceptualHash != "" {
		t.Errorf("hash = %+v", r.Hash)
	}
}

func TestDHash(t *testing.T) {
	if got := DHash(gradient(64, 8, true)); got != strings.Repeat("1", 56) {
		t.Errorf("descending = %s", got)
	}
	if got := DHash(gradient(64, 8, false)); got != strings.Repeat("0", 56) {
		t.Errorf("ascending = %s", got)
	}
}

func TestParseManipulationFallback(t *testing.T) {
	m := parseManipulation("looks fine to me")
	if m.Likelihood != 50 || m.Confidence != 0.5 || m.Explanation != "looks fine to me" {
		t.Errorf("fallback = %+v", m)
	}
	m = parseManipulation(`{"manipulation_likelihood": 180}`)
	if m.Likelihood != 100 {
		t.Errorf("likelihood not clamped: %v", m.Likelihood)
	}
}

func TestScoreClamps(t *testing.T) {
	r := &Report{
		Metadata: &Metadata{HasEXIF: true, SuspiciousIndicators: []string{"Missing camera metadata"}},
		Text:     &Text{SuspiciousPatterns: make([]string, 10)},
	}
	if r.Score() != 0 {
		t.Errorf("score = %v", r.Score())
	}
	r = &Report{Metadata: &Metadata{HasEXIF: true}, Content: &Content{SimilarImages: []string{"u"}}, Manipulation: &Manipulation{Error: "x", Likelihood: 100}}
	if r.Score() != 75 {
		t.Errorf("score = %v, want 75", r.Score())
	}
}
