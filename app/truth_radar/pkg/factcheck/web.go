package factcheck

import (
	"context"
	"net/url"
	"strings"

	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/model"
	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/search"
	tu "github.com/iWorld-y/truth_radar/app/truth_radar/pkg/textutil"
)

// FactCheckSites 通用搜索时限定的核查站点
var FactCheckSites = []string{
	"snopes.com", "politifact.com", "factcheck.org", "fullfact.org",
	"altnews.in", "boomlive.in", "factly.in", "pib.gov.in",
}

// Web 用通用搜索引擎在核查站点内检索
type Web struct {
	s    search.Searcher
	lang string
}

var _ Searcher = (*Web)(nil)

// NewWeb s 为 nil 时每次调用返回 ErrNotConfigured
func NewWeb(s search.Searcher, lang string) *Web {
	return &Web{s: s, lang: lang}
}

func (w *Web) SearchClaims(ctx context.Context, query string) ([]model.FactCheck, error) {
	if w.s == nil {
		return nil, ErrNotConfigured
	}
	resp, err := w.s.Search(ctx, &search.Request{
		Query:          tu.Truncate(query, 100),
		Topic:          "general",
		MaxResults:     5,
		Language:       w.lang,
		IncludeDomains: FactCheckSites,
	})
	if err != nil {
		return nil, err
	}

	out := []model.FactCheck{}
	for _, r := range resp.Results {
		fc := model.FactCheck{
			Title:     r.Title,
			URL:       r.URL,
			Publisher: "Unknown",
			Verdict:   "No verdict",
			Date:      "Unknown date",
		}
		if fc.Title == "" {
			fc.Title = "No title"
		}
		if u, err := url.Parse(r.URL); err == nil && u.Host != "" {
			fc.Publisher = strings.TrimPrefix(u.Host, "www.")
		}
		if r.PublishedDate != "" {
			fc.Date = r.PublishedDate
		}
		out = append(out, fc)
	}
	return out, nil
}
