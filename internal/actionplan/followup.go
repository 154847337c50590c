package actionplan

import (
	"regexp"
	"strings"
)

// 追问词表：单词按整词匹配（"it" 不命中 "with"），短语按子串匹配
var followUpMarkers = []string{
	"more", "detail", "details", "explain more", "elaborate", "clarify",
	"why", "how", "next step", "next steps", "further", "again",
	"that", "those", "this", "it", "them",
}

// 快捷追问按钮生成的提示语特征
var quickPromptMarkers = []string{
	"provide concrete shift-level edits",
	"execution checklist",
	"validation checks",
}

var wordRe = regexp.MustCompile(`[a-z0-9'-]+`)

// IsFollowUp 判断问题是否是对上一轮回答的追问；没有历史时总是 false
func IsFollowUp(question string, hasHistory bool) bool {
	q := strings.ToLower(strings.TrimSpace(question))
	if !hasHistory || q == "" {
		return false
	}

	if strings.HasPrefix(q, "for ") {
		for _, m := range quickPromptMarkers {
			if strings.Contains(q, m) {
				return true
			}
		}
	}

	words := make(map[string]bool)
	for _, w := range wordRe.FindAllString(q, -1) {
		words[w] = true
	}
	for _, m := range followUpMarkers {
		if strings.Contains(m, " ") {
			if strings.Contains(q, m) {
				return true
			}
		} else if words[m] {
			return true
		}
	}
	return false
}
