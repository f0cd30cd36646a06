package datex

import (
	"regexp"
	"strings"
	"time"
)

// 多种导出格式的日期模式。顺序即优先级，顺序本身是契约的一部分：
// 先试带分隔符的完整年份形式，再试纯数字形式。
var patterns = []*regexp.Regexp{
	regexp.MustCompile(`\d{4}-\d{2}-\d{2}`), // YYYY-MM-DD
	regexp.MustCompile(`\d{2}-\d{2}-\d{4}`), // MM-DD-YYYY
	regexp.MustCompile(`\d{4}_\d{2}_\d{2}`), // YYYY_MM_DD
	regexp.MustCompile(`\d{8}`),             // YYYYMMDD
	regexp.MustCompile(`\d{6}`),             // YYMMDD 或 MMDDYY
}

const layout = "2006-01-02"

// Normalize 把一个候选 token 规范化为 YYYY-MM-DD。
// 非法历法日期返回 ok=false；对已是规范形式的输入幂等。
//
// 六位数字有歧义：先按 YYMMDD 解释，失败再按 MMDDYY（固定优先级）。
func Normalize(token string) (string, bool) {
	s := strings.TrimSpace(token)

	switch {
	case strings.Contains(s, "_"):
		s = strings.ReplaceAll(s, "_", "-")
	case len(s) == 8 && !strings.Contains(s, "-"):
		s = s[:4] + "-" + s[4:6] + "-" + s[6:8]
	case len(s) == 6:
		if t, err := time.Parse("060102", s); err == nil {
			return t.Format(layout), true
		}
		if t, err := time.Parse("010206", s); err == nil {
			return t.Format(layout), true
		}
		return "", false
	case len(s) == 10 && s[2] == '-' && s[5] == '-':
		t, err := time.Parse("01-02-2006", s)
		if err != nil {
			return "", false
		}
		return t.Format(layout), true
	}

	if !Valid(s) {
		return "", false
	}
	return s, true
}

// Valid 判断 s 是否为严格的 YYYY-MM-DD 且是真实历法日期。
func Valid(s string) bool {
	if len(s) != 10 {
		return false
	}
	_, err := time.Parse(layout, s)
	return err == nil
}

// FromText 在 s 中按模式优先级寻找第一个可规范化的日期，找不到返回 ""。
// 文件名与 HTML 文本共用同一套模式与消歧规则。
func FromText(s string) string {
	for _, re := range patterns {
		for _, loc := range re.FindAllStringIndex(s, -1) {
			if !standalone(s, loc[0], loc[1]) {
				continue
			}
			if d, ok := Normalize(s[loc[0]:loc[1]]); ok {
				return d
			}
		}
	}
	return ""
}

// FromTime 把时间格式化为规范日期（文件系统时间戳兜底时使用）。
func FromTime(t time.Time) string {
	return t.Format(layout)
}

// standalone 要求匹配两侧不紧邻其他数字，避免从更长的数字串中间截取。
// 不用 \b：下划线在正则里算词字符，会漏掉 photo_20220714.jpg 这类文件名。
func standalone(s string, start, end int) bool {
	if start > 0 && isDigit(s[start-1]) {
		return false
	}
	if end < len(s) && isDigit(s[end]) {
		return false
	}
	return true
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
