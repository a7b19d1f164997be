package textutil

import (
	"reflect"
	"regexp"
	"testing"
)

func TestTitle(t *testing.T) {
	tests := map[string]string{
		"urgency_tactics":        "Urgency Tactics",
		"personal_info":          "Personal Info",
		"health_conscious":       "Health Conscious",
		"unsubstantiated_claims": "Unsubstantiated Claims",
	}
	for in, want := range tests {
		if got := Title(in); got != want {
			t.Errorf("Title(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsUpperWord(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"BREAKING!!!", true},
		{"Breaking", false},
		{"!!!", false},
		{"A1", true},
	}
	for _, tt := range tests {
		if got := IsUpperWord(tt.in); got != tt.want {
			t.Errorf("IsUpperWord(%q) = %v", tt.in, got)
		}
	}
}

func TestTruncateRunes(t *testing.T) {
	if got := Truncate("héllo", 2); got != "hé" {
		t.Errorf("Truncate = %q", got)
	}
	if got := Truncate("abc", 10); got != "abc" {
		t.Errorf("Truncate = %q", got)
	}
}

func TestFindAllAndDedup(t *testing.T) {
	res := []*regexp.Regexp{regexp.MustCompile(`\bshare\b`), regexp.MustCompile(`\bforward\b`)}
	got := FindAll(res, "share this, forward it, share again")
	if !reflect.DeepEqual(got, []string{"share", "share", "forward"}) {
		t.Errorf("FindAll = %v", got)
	}
	if d := Dedup(got); !reflect.DeepEqual(d, []string{"share", "forward"}) {
		t.Errorf("Dedup = %v", d)
	}
	if CollapseSpace("  a \n\t b ") != "a b" {
		t.Error("CollapseSpace failed")
	}
}
