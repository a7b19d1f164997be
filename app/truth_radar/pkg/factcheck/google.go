package factcheck

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/config"
	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/model"
	tu "github.com/iWorld-y/truth_radar/app/truth_radar/pkg/textutil"
)

// Google Google Fact Check Tools 客户端
type Google struct {
	baseURL  string
	apiKey   string
	language string
	client   *http.Client
}

var _ Searcher = (*Google)(nil)

// NewGoogle 创建客户端
func NewGoogle(cfg config.FactCheckConfig) *Google {
	return &Google{
		baseURL:  strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:   cfg.APIKey,
		language: cfg.Language,
		client:   &http.Client{Timeout: time.Duration(cfg.Timeout) * time.Second},
	}
}

type claimsResponse struct {
	Claims []struct {
		Text        string `json:"text"`
		ClaimReview []struct {
			Publisher *struct {
				Name string `json:"name"`
				Site string `json:"site"`
			} `json:"publisher"`
			URL           *string `json:"url"`
			Title         *string `json:"title"`
			ReviewDate    *string `json:"reviewDate"`
			TextualRating *string `json:"textualRating"`
		} `json:"claimReview"`
	} `json:"claims"`
}

// SearchClaims 查询前 5 条声明下的全部核查结论
func (g *Google) SearchClaims(ctx context.Context, query string) ([]model.FactCheck, error) {
	if g.apiKey == "" {
		return nil, ErrNotConfigured
	}

	q := url.Values{}
	q.Set("query", tu.Truncate(query, 100))
	q.Set("key", g.apiKey)
	q.Set("languageCode", g.language)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/claims:search?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	res, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fact check api returned status %d", res.StatusCode)
	}

	var body claimsResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode response failed: %w", err)
	}

	out := []model.FactCheck{}
	for _, claim := range tu.Head(body.Claims, 5) {
		for _, r := range claim.ClaimReview {
			fc := model.FactCheck{
				Title:     orDefault(r.Title, "No title"),
				URL:       orDefault(r.URL, ""),
				Publisher: "Unknown",
				Verdict:   orDefault(r.TextualRating, "No verdict"),
				Date:      orDefault(r.ReviewDate, "Unknown date"),
			}
			if r.Publisher != nil && r.Publisher.Name != "" {
				fc.Publisher = r.Publisher.Name
			}
			out = append(out, fc)
		}
	}
	return out, nil
}

func orDefault(v *string, def string) string {
	if v == nil {
		return def
	}
	return *v
}
