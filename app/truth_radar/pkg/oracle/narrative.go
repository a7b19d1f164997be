package oracle

import (
	"strings"

	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/model"
)

const (
	sourcesHeader   = "🔗 SOURCE LINKS & ARTICLES:"
	reportingHeader = "📧 REPORTING INFORMATION:"
)

// sectionStarts 遇到这些前缀即视为进入下一节
var sectionStarts = []string{"🔍", "🧬", "📊", "🎯", "⚠️", "🛡️", "📋", "🔗", "📧"}

// Section 取出 header 之后到下一节之前的内容
func Section(text, header string) string {
	var out []string
	in := false
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimLeft(line, " \t")
		switch {
		case strings.Contains(line, header):
			in = true
		case in && hasAnyPrefix(trimmed, sectionStarts):
			return strings.TrimSpace(strings.Join(out, "\n"))
		case in:
			out = append(out, line)
		}
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// ExtractSourcesAndContacts 解析来源链接与举报邮箱两节
func ExtractSourcesAndContacts(text string) ([]model.SourceLink, []model.ReportingContact) {
	sources := []model.SourceLink{}
	contacts := []model.ReportingContact{}

	for _, line := range strings.Split(Section(text, sourcesHeader), "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "-") || !strings.Contains(line, ":") {
			continue
		}
		name, rest, _ := strings.Cut(line[1:], ":")
		rest = strings.TrimSpace(rest)
		link := model.SourceLink{Name: strings.TrimSpace(name), Description: rest}
		if i := strings.LastIndex(rest, " - "); i >= 0 {
			link.Description = strings.TrimSpace(rest[:i])
			link.URL = strings.TrimSpace(rest[i+3:])
		}
		sources = append(sources, link)
	}

	for _, line := range strings.Split(Section(text, reportingHeader), "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "-") || !strings.Contains(line, "@") || !strings.Contains(line, ":") {
			continue
		}
		desc, email, _ := strings.Cut(line[1:], ":")
		contacts = append(contacts, model.ReportingContact{
			Description: strings.TrimSpace(desc),
			Email:       strings.TrimSpace(email),
		})
	}
	return sources, contacts
}

var (
	highRiskTerms = []string{
		"false", "misinformation", "disinformation", "fake", "untrue", "deceptive",
		"manipulative", "harmful", "dangerous", "conspiracy", "hoax", "scam", "fraud", "deceit",
	}
	mediumRiskTerms = []string{"questionable", "suspicious", "unreliable", "biased", "exaggerated", "incomplete", "outdated"}
)

// Risk 把叙述中的结论映射为风险分，显式结论优先于关键词计数
func Risk(narrative string) int {
	if strings.TrimSpace(narrative) == "" || strings.Contains(narrative, Unavailable) {
		return 0
	}
	lower := strings.ToLower(narrative)
	switch {
	case strings.Contains(lower, "false information"):
		return 90
	case strings.Contains(lower, "misleading"):
		return 80
	case strings.Contains(lower, "unverified"):
		return 60
	case strings.Contains(lower, "true") && strings.Contains(lower, "veracity assessment"):
		return 10
	}
	for _, t := range highRiskTerms {
		if strings.Contains(lower, t) {
			return 75
		}
	}
	for _, t := range mediumRiskTerms {
		if strings.Contains(lower, t) {
			return 50
		}
	}
	return 0
}
