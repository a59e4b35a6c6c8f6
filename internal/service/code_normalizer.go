package service

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// ── 课程代码规范化 ──────────────────────────────────────────
//
// 课程代码的规范形式为去除首尾空白后的全大写字符串。
// 代码列表可能以逗号分隔字符串、字符串数组或数组元素内再含逗号的形式出现，
// 统一展开为规范代码序列。
// ─────────────────────────────────────────────────────────────

// NormalizeCode 去除首尾空白并转为大写
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// SplitCodes 展开代码列表：每个元素按逗号切分、去空白、丢弃空片段并规范化。
// 保持出现顺序，不去重；需要去重的调用方使用 DedupeCodes。
func SplitCodes(values ...string) []string {
	codes := make([]string, 0, len(values))
	for _, value := range values {
		for _, piece := range strings.Split(value, ",") {
			if code := NormalizeCode(piece); code != "" {
				codes = append(codes, code)
			}
		}
	}
	return codes
}

// DedupeCodes 按首次出现顺序去重
func DedupeCodes(codes []string) []string {
	seen := make(map[string]struct{}, len(codes))
	unique := make([]string, 0, len(codes))
	for _, code := range codes {
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		unique = append(unique, code)
	}
	return unique
}

// ComparableKey 模糊比较键：折叠变音符号、转小写，仅保留 [a-z0-9]。
// 只用于相等比较，不得存储或展示。
func ComparableKey(value string) string {
	var b strings.Builder
	for _, r := range norm.NFD.String(strings.ToLower(value)) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// DeriveSpecializationCode 由专业名称推导代码：保留字母数字并转大写
func DeriveSpecializationCode(name string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return b.String()
}
