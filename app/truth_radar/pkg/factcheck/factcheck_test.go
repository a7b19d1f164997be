package factcheck

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/cache"
	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/config"
	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/model"
	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/search"
)

const claimsJSON = `{"claims":[
 {"text":"cure","claimReview":[
   {"publisher":{"name":"Snopes","site":"snopes.com"},"url":"https://snopes.com/a","title":"Secret cure?","reviewDate":"2026-01-02","textualRating":"False"},
   {"url":"https://example.org/b"}
 ]},
 {"text":"c2","claimReview":[]},
 {"text":"c3"},{"text":"c4"},{"text":"c5"},
 {"text":"c6","claimReview":[{"title":"beyond the first five"}]}
]}`

func newGoogle(url string) *Google {
	cfg := config.Default().FactCheck
	cfg.BaseURL = url
	cfg.APIKey = "key"
	return NewGoogle(cfg)
}

func TestGoogleSearchClaims(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/claims:search" || r.URL.Query().Get("key") != "key" || r.URL.Query().Get("languageCode") != "en" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		gotQuery = r.URL.Query().Get("query")
		_, _ = w.Write([]byte(claimsJSON))
	}))
	defer srv.Close()

	out, err := newGoogle(srv.URL).SearchClaims(context.Background(), strings.Repeat("x", 150))
	if err != nil {
		t.Fatal(err)
	}
	if len(gotQuery) != 100 {
		t.Errorf("query length = %d, want 100", len(gotQuery))
	}
	want := []model.FactCheck{
		{Title: "Secret cure?", URL: "https://snopes.com/a", Publisher: "Snopes", Verdict: "False", Date: "2026-01-02"},
		{Title: "No title", URL: "https://example.org/b", Publisher: "Unknown", Verdict: "No verdict", Date: "Unknown date"},
	}
	if len(out) != len(want) {
		t.Fatalf("out = %+v", out)
	}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("out[%d] = %+v, want %+v", i, out[i], want[i])
		}
	}
}

func TestGoogleFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	if _, err := newGoogle(srv.URL).SearchClaims(context.Background(), "q"); err == nil {
		t.Error("non-200 should be an error")
	}
	g := NewGoogle(config.Default().FactCheck)
	if _, err := g.SearchClaims(context.Background(), "q"); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("err = %v", err)
	}
}

type stubSearcher struct {
	resp  *search.Response
	err   error
	calls int
	req   *search.Request
}

func (s *stubSearcher) Search(_ context.Context, req *search.Request) (*search.Response, error) {
	s.calls++
	s.req = req
	return s.resp, s.err
}

func TestWebSearchClaims(t *testing.T) {
	s := &stubSearcher{resp: &search.Response{Results: []search.Result{
		{Title: "Fact check: cure", URL: "https://www.snopes.com/fact-check/cure", PublishedDate: "2026-02-01"},
		{URL: "https://politifact.com/x"},
	}}}
	out, err := NewWeb(s, "en").SearchClaims(context.Background(), "cure")
	if err != nil {
		t.Fatal(err)
	}
	if len(s.req.IncludeDomains) != len(FactCheckSites) || s.req.MaxResults != 5 {
		t.Errorf("request = %+v", s.req)
	}
	if out[0].Publisher != "snopes.com" || out[0].Date != "2026-02-01" {
		t.Errorf("out[0] = %+v", out[0])
	}
	if out[1].Title != "No title" || out[1].Verdict != "No verdict" || out[1].Date != "Unknown date" {
		t.Errorf("out[1] = %+v", out[1])
	}

	if _, err := NewWeb(nil, "en").SearchClaims(context.Background(), "q"); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("err = %v", err)
	}
}

type fixedSearcher struct {
	out   []model.FactCheck
	err   error
	calls int
}

func (f *fixedSearcher) SearchClaims(context.Context, string) ([]model.FactCheck, error) {
	f.calls++
	return f.out, f.err
}

func TestChainFallsBack(t *testing.T) {
	first := &fixedSearcher{err: errors.New("down")}
	second := &fixedSearcher{out: []model.FactCheck{{Title: "web"}}}
	out, err := Chain{first, second}.SearchClaims(context.Background(), "q")
	if err != nil || len(out) != 1 || out[0].Title != "web" {
		t.Errorf("out = %v err = %v", out, err)
	}

	_, err = Chain{&fixedSearcher{err: ErrNotConfigured}, &fixedSearcher{err: errors.New("x")}}.SearchClaims(context.Background(), "q")
	if err == nil || !errors.Is(err, ErrNotConfigured) {
		t.Errorf("joined err = %v", err)
	}
	if _, err := (Chain{}).SearchClaims(context.Background(), "q"); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("empty chain err = %v", err)
	}
}

func TestCachedOnlyStoresSuccess(t *testing.T) {
	ctx := context.Background()
	inner := &fixedSearcher{out: []model.FactCheck{{Title: "t", Verdict: "False"}}}
	c := NewCached(inner, cache.NewMemory(), time.Hour)

	for i := 0; i < 3; i++ {
		out, err := c.SearchClaims(ctx, "  Same Query ")
		if err != nil || out[0].Verdict != "False" {
			t.Fatalf("out = %v err = %v", out, err)
		}
	}
	_, _ = c.SearchClaims(ctx, "same query")
	if inner.calls != 1 {
		t.Errorf("inner calls = %d, want 1", inner.calls)
	}

	failing := &fixedSearcher{err: errors.New("down")}
	fc := NewCached(failing, cache.NewMemory(), time.Hour)
	_, _ = fc.SearchClaims(ctx, "q")
	_, _ = fc.SearchClaims(ctx, "q")
	if failing.calls != 2 {
		t.Errorf("errors must not be cached, calls = %d", failing.calls)
	}
}
