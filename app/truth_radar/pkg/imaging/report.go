package imaging

import "time"

// Metadata 元数据检查结果
type Metadata struct {
	Format               string            `json:"format,omitempty"`
	Mode                 string            `json:"mode,omitempty"`
	Width                int               `json:"width,omitempty"`
	Height               int               `json:"height,omitempty"`
	HasEXIF              bool              `json:"has_exif"`
	EXIF                 map[string]string `json:"exif_data,omitempty"`
	SuspiciousIndicators []string          `json:"suspicious_indicators"`
	Error                string            `json:"error,omitempty"`
}

// Content 视觉模型给出的内容描述
type Content struct {
	Objects         []string `json:"objects"`
	Labels          []string `json:"labels"`
	FacesDetected   int      `json:"faces_detected"`
	Logos           []string `json:"logos"`
	SimilarImages   []string `json:"similar_images"`
	ContentWarnings []string `json:"content_warnings"`
	Error           string   `json:"error,omitempty"`
}

// Text 图中文字识别结果
type Text struct {
	DetectedText       string   `json:"detected_text"`
	SuspiciousPatterns []string `json:"suspicious_text_patterns"`
	Error              string   `json:"error,omitempty"`
}

// Manipulation 篡改痕迹判断
type Manipulation struct {
	Likelihood     float64  `json:"manipulation_likelihood"`
	DetectedIssues []string `json:"detected_issues"`
	Confidence     float64  `json:"confidence"`
	Explanation    string   `json:"explanation"`
	Error          string   `json:"error,omitempty"`
}

// Hashes 文件与感知哈希
type Hashes struct {
	MD5            string `json:"md5,omitempty"`
	SHA256         string `json:"sha256,omitempty"`
	SizeBytes      int    `json:"size_bytes"`
	PerceptualHash string `json:"perceptual_hash,omitempty"`
	Error          string `json:"error,omitempty"`
}

// Properties 图片技术属性
type Properties struct {
	Dimensions           string   `json:"dimensions,omitempty"`
	AspectRatio          float64  `json:"aspect_ratio,omitempty"`
	ColorMode            string   `json:"color_mode,omitempty"`
	Format               string   `json:"format,omitempty"`
	HasTransparency      bool     `json:"has_transparency"`
	SuspiciousProperties []string `json:"suspicious_properties"`
	Error                string   `json:"error,omitempty"`
}

// Report 图片取证报告
type Report struct {
	AnalysisID     string        `json:"analysis_id"`
	Timestamp      time.Time     `json:"timestamp"`
	Filename       string        `json:"filename,omitempty"`
	FileSize       int           `json:"file_size"`
	Metadata       *Metadata     `json:"metadata_analysis"`
	Content        *Content      `json:"content_analysis"`
	Text           *Text         `json:"text_detection"`
	Manipulation   *Manipulation `json:"manipulation_detection"`
	Hash           *Hashes       `json:"image_hash"`
	Properties     *Properties   `json:"image_properties"`
	ProcessingTime float64       `json:"processing_time"`
	ForensicScore  float64       `json:"forensic_score"`
}

// Score 综合可信度评分，出错的分项不参与
func (r *Report) Score() float64 {
	score := 50.0
	if m := r.Metadata; m != nil && m.Error == "" {
		if m.HasEXIF {
			score += 15
		}
		score -= float64(len(m.SuspiciousIndicators)) * 5
	}
	if c := r.Content; c != nil && c.Error == "" {
		score -= float64(len(c.ContentWarnings)) * 10
		if len(c.SimilarImages) > 0 {
			score += 10
		}
	}
	if m := r.Manipulation; m != nil && m.Error == "" {
		score -= m.Likelihood * 0.3
	}
	if t := r.Text; t != nil && t.Error == "" {
		score -= float64(len(t.SuspiciousPatterns)) * 8
	}
	return max(0, min(100, score))
}
