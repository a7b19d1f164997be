package cache

import (
	"context"
	"testing"
	"time"

	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/config"
)

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	_ = m.Set(ctx, "k", "v", time.Minute)
	_ = m.Set(ctx, "forever", "x", 0)

	if v, ok, _ := m.Get(ctx, "k"); !ok || v != "v" {
		t.Fatalf("get = %q %v", v, ok)
	}
	now = now.Add(time.Minute)
	if _, ok, _ := m.Get(ctx, "k"); ok {
		t.Error("entry should have expired")
	}
	if _, ok, _ := m.Get(ctx, "forever"); !ok {
		t.Error("entry without ttl should not expire")
	}
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	type item struct {
		Title string `json:"title"`
	}
	if err := SetJSON(ctx, m, "items", []item{{"a"}, {"b"}}, time.Hour); err != nil {
		t.Fatal(err)
	}
	got, ok := GetJSON[[]item](ctx, m, "items")
	if !ok || len(got) != 2 || got[1].Title != "b" {
		t.Errorf("got %v %v", got, ok)
	}

	_ = m.Set(ctx, "broken", "{not json", time.Hour)
	if _, ok := GetJSON[[]item](ctx, m, "broken"); ok {
		t.Error("corrupt entry should be a miss")
	}
}

func TestNewWithoutAddrIsNop(t *testing.T) {
	s := New(context.Background(), config.RedisConfig{})
	if _, ok := s.(Nop); !ok {
		t.Fatalf("store = %T, want Nop", s)
	}
	_ = s.Set(context.Background(), "k", "v", time.Minute)
	if _, ok, _ := s.Get(context.Background(), "k"); ok {
		t.Error("nop cache should never hit")
	}
}
