package model

import (
	"reflect"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want AnalysisLevel
	}{
		{"Deep Forensics", LevelDeep},
		{"Deep Analysis", LevelDeep},
		{"deep", LevelDeep},
		{"Quick Scan", LevelQuick},
		{"", LevelQuick},
		{"whatever", LevelQuick},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeAndDeep(t *testing.T) {
	r := AnalysisRequest{Level: "Deep Analysis", UserType: "someone"}
	r.Normalize()
	if r.Language != "en" || r.Level != LevelDeep || r.UserType != UserPublic {
		t.Fatalf("unexpected normalized request: %+v", r)
	}
	if !r.DeepRequested() {
		t.Error("deep level should request deep forensics")
	}

	r = AnalysisRequest{UserType: UserAuthority}
	r.Normalize()
	if r.Level != LevelQuick || !r.DeepRequested() {
		t.Errorf("authority should always get deep forensics: %+v", r)
	}
}

func TestAddTacticsDedup(t *testing.T) {
	r := NewAnalysisResult()
	r.AddTactics("urgency_tactics", "authority_undermining")
	r.AddTactics("authority_undermining", "fear_mongering", "urgency_tactics", "fear_mongering")

	want := []string{"urgency_tactics", "authority_undermining", "fear_mongering"}
	if !reflect.DeepEqual(r.ManipulationTactics, want) {
		t.Errorf("tactics = %v, want %v", r.ManipulationTactics, want)
	}
}

func TestRaiseRiskIsRunningMax(t *testing.T) {
	r := NewAnalysisResult()
	for _, s := range []int{30, 10, 75, 60} {
		r.RaiseRisk(s)
	}
	if r.RiskScore != 75 {
		t.Errorf("risk = %d, want 75", r.RiskScore)
	}
}
