package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/imaging"
	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/model"
)

var (
	colorHigh   = lipgloss.Color("196")
	colorMedium = lipgloss.Color("214")
	colorLow    = lipgloss.Color("78")
	colorMuted  = lipgloss.Color("241")
)

var titleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255")).
	Background(lipgloss.Color("62")).
	Padding(0, 1)

var sectionStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("212")).
	MarginTop(1)

var mutedStyle = lipgloss.NewStyle().Foreground(colorMuted)

var boxStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("62")).
	Padding(0, 1)

func threatColor(t model.ThreatLevel) lipgloss.Color {
	switch t {
	case model.ThreatHigh:
		return colorHigh
	case model.ThreatMedium:
		return colorMedium
	case model.ThreatLow:
		return colorLow
	default:
		return colorMuted
	}
}

func badge(t model.ThreatLevel) string {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("0")).
		Background(threatColor(t)).
		Padding(0, 1).
		Render(string(t))
}

func section(title string, lines ...string) string {
	if len(lines) == 0 {
		return ""
	}
	return sectionStyle.Render(title) + "\n" + strings.Join(lines, "\n")
}

func bullets(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, "  • "+it)
	}
	return out
}

// render 文本分析结果
func render(res *model.AnalysisResult) string {
	header := lipgloss.JoinHorizontal(lipgloss.Center,
		titleStyle.Render("TRUTH RADAR"), " ", badge(res.ThreatLevel))
	scores := boxStyle.Render(fmt.Sprintf("Risk %d/100   Credibility %d/100", res.RiskScore, res.CredibilityScore))

	parts := []string{header, scores}
	if res.ID != "" {
		parts = append(parts, mutedStyle.Render("analysis "+res.ID))
	}
	parts = append(parts,
		section("Manipulation tactics", bullets(res.ManipulationTactics)...),
		section("Recommendations", bullets(res.Recommendations)...),
	)

	var checks []string
	for _, fc := range res.FactChecks {
		checks = append(checks, fmt.Sprintf("  • %s (%s): %s", fc.Title, fc.Publisher, fc.Verdict))
	}
	parts = append(parts, section("Fact checks", checks...))

	if res.OracleNarrative != "" {
		parts = append(parts, section("Forensic narrative", res.OracleNarrative))
	}
	if res.OriginAnalysis != "" {
		parts = append(parts, section("Origin", res.OriginAnalysis))
	}
	if res.PsychologicalAnalysis != "" {
		parts = append(parts, section("Psychological targeting", res.PsychologicalAnalysis))
	}

	var timeline []string
	for _, ev := range res.ForensicTimeline {
		timeline = append(timeline, fmt.Sprintf("  %s  %-16s %s", ev.Timestamp.Format("15:04"), ev.EventType, ev.Description))
	}
	parts = append(parts, section("Timeline", timeline...))

	return joinNonEmpty(parts)
}

// renderImage 图片取证结果
func renderImage(r *imaging.Report) string {
	parts := []string{
		titleStyle.Render("TRUTH RADAR · IMAGE"),
		boxStyle.Render(fmt.Sprintf("Forensic score %.0f/100", r.ForensicScore)),
	}
	if m := r.Metadata; m != nil {
		if m.Error != "" {
			parts = append(parts, section("Metadata", "  "+m.Error))
		} else {
			lines := []string{fmt.Sprintf("  %s %dx%d, EXIF: %t", m.Format, m.Width, m.Height, m.HasEXIF)}
			parts = append(parts, section("Metadata", append(lines, bullets(m.SuspiciousIndicators)...)...))
		}
	}
	if m := r.Manipulation; m != nil && m.Error == "" {
		lines := []string{fmt.Sprintf("  likelihood %.0f%%", m.Likelihood)}
		parts = append(parts, section("Manipulation", append(lines, bullets(m.DetectedIssues)...)...))
	}
	if t := r.Text; t != nil && t.Error == "" {
		parts = append(parts, section("Suspicious text", bullets(t.SuspiciousPatterns)...))
	}
	if h := r.Hash; h != nil && h.Error == "" {
		parts = append(parts, section("Hashes", "  sha256 "+h.SHA256, "  dhash  "+h.PerceptualHash))
	}
	return joinNonEmpty(parts)
}

func joinNonEmpty(parts []string) string {
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, "\n")
}
