// Package textutil 各分析器共用的文本小工具
package textutil

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var spaceRe = regexp.MustCompile(`\s+`)

// Title 把 snake_case 标识转换为 "Title Case" 展示名
func Title(id string) string {
	// Caser 有状态，不能跨 goroutine 共享
	return cases.Title(language.English).String(strings.ReplaceAll(id, "_", " "))
}

// CollapseSpace 合并连续空白并去掉首尾空白
func CollapseSpace(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

// MustCompileAll 编译一组正则，失败直接 panic，仅用于构建静态目录
func MustCompileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile(p))
	}
	return out
}

// FindAll 依次用每个正则查找全部匹配并拼接
func FindAll(res []*regexp.Regexp, s string) []string {
	var out []string
	for _, re := range res {
		out = append(out, re.FindAllString(s, -1)...)
	}
	return out
}

// AnyMatch 任意正则命中即返回 true
func AnyMatch(res []*regexp.Regexp, s string) bool {
	for _, re := range res {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

// ContainsAny 返回 s 中出现过的 terms，保持 terms 的顺序
func ContainsAny(s string, terms []string) []string {
	var out []string
	for _, t := range terms {
		if strings.Contains(s, t) {
			out = append(out, t)
		}
	}
	return out
}

// Dedup 去重并保持首次出现顺序
func Dedup(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	return out
}

// IsUpperWord 至少含一个字母且没有小写字母
func IsUpperWord(w string) bool {
	cased := false
	for _, r := range w {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			cased = true
		}
	}
	return cased
}

// RuneLen 字符数
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}

// Truncate 按字符截断
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// Head 返回前 n 个元素
func Head[T any](items []T, n int) []T {
	if len(items) <= n {
		return items
	}
	return items[:n]
}
