package engine

import (
	"reflect"
	"testing"

	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/model"
)

func TestBasicRisk(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"alarmist", alarmist, 50},
		{"neutral", neutral, 0},
		{"unsourced only", "The weather was pleasant on the weekend", 20},
		{"conspiracy", "The hidden truth behind the cover-up, says a study", 30},
		{"questions", "Why? How? When? Who? Read the research", 10},
		{"capped", "SHOCKING unbelievable incredible amazing breaking urgent conspiracy cover-up hidden truth they don't want share forward spread tell everyone!!!!", 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BasicRisk(tt.text); got != tt.want {
				t.Errorf("BasicRisk = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCredibility(t *testing.T) {
	tests := []struct {
		name    string
		risk    int
		safety  *model.SafetyReport
		tactics []string
		checks  int
		want    int
	}{
		{"no signals", 0, nil, nil, 0, 80},
		{"high risk", 90, nil, nil, 0, 8},
		{"with safety", 50, &model.SafetyReport{SafetyScore: 100}, nil, 0, 70},
		{"tactics", 50, &model.SafetyReport{SafetyScore: 100}, []string{"a", "b"}, 0, 50},
		{"none detected ignored", 0, nil, []string{"None Detected"}, 0, 80},
		{"fact checks bonus", 0, nil, nil, 2, 90},
		{"half rounds to even", 0, &model.SafetyReport{SafetyScore: 5}, nil, 0, 42},
		{"clamped low", 100, nil, []string{"a", "b", "c"}, 0, 0},
		{"at ceiling", 0, &model.SafetyReport{SafetyScore: 100}, nil, 1, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := model.NewAnalysisResult()
			res.RiskScore = tt.risk
			res.SafetyAnalysis = tt.safety
			res.AddTactics(tt.tactics...)
			for i := 0; i < tt.checks; i++ {
				res.FactChecks = append(res.FactChecks, model.FactCheck{Title: "t"})
			}
			if got := Credibility(res); got != tt.want {
				t.Errorf("Credibility = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestThreatBoundaries(t *testing.T) {
	cases := map[int]model.ThreatLevel{
		100: model.ThreatHigh,
		70:  model.ThreatHigh,
		69:  model.ThreatMedium,
		40:  model.ThreatMedium,
		39:  model.ThreatLow,
		0:   model.ThreatLow,
	}
	for risk, want := range cases {
		if got := Threat(risk); got != want {
			t.Errorf("Threat(%d) = %s, want %s", risk, got, want)
		}
	}
}

func TestRecommendations(t *testing.T) {
	if got := Recommendations(71, model.UserAuthority); len(got) != 5 || got[0] != "🚨 HIGH RISK: Immediate monitoring recommended" {
		t.Errorf("authority high = %v", got)
	}
	// 70 落在中档，阈值为严格大于
	if got := Recommendations(70, model.UserPublic); got[0] != "⚠️ MEDIUM RISK: Be cautious about sharing" {
		t.Errorf("public 70 = %v", got)
	}
	want := []string{"✅ LOW RISK: Standard monitoring sufficient", "📊 Log for baseline data"}
	if got := Recommendations(40, model.UserAuthority); !reflect.DeepEqual(got, want) {
		t.Errorf("authority 40 = %v", got)
	}
	if got := Recommendations(10, model.UserPublic); len(got) != 3 {
		t.Errorf("public low = %v", got)
	}
}
