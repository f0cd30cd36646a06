package extract

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/John-Robertt/memorg/internal/datex"
	"github.com/John-Robertt/memorg/internal/domain"
)

// 捕获状态：显式状态机，而不是可变的扫描标志位，
// 避免相邻条目之间的日期互相污染。
type state int

const (
	// stateOutside：当前没有等待日期的媒体引用。
	stateOutside state = iota
	// stateAwaitingDate：刚产出一条引用，后续 text-line 的首个日期归它。
	stateAwaitingDate
)

// Refs 从 memories HTML 中按文档顺序提取媒体引用。
//
// 规则：
// - img/video 的非空 src 各产出一条 MediaRef（video 无 src 时回退 <source>）
// - class 含 text-line 的容器文本按模式优先级取首个合法日期作为 hint
// - 首个匹配生效后该引用不再接受后续日期（first-match-wins）
// - 日期行先于媒体标签出现的导出变体：该日期作为 pending，归属紧随其后的媒体标签
//
// 找不到任何媒体标签时返回空序列（不是错误；是否致命由 run 层判定）。
func Refs(html []byte) ([]domain.MediaRef, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, err
	}

	refs := make([]domain.MediaRef, 0, 64)
	st := stateOutside
	pending := ""

	doc.Find("img, video, div.text-line").Each(func(_ int, s *goquery.Selection) {
		switch goquery.NodeName(s) {
		case "img", "video":
			src := mediaSrc(s)
			if src == "" {
				return
			}
			refs = append(refs, domain.MediaRef{Src: src, DateHint: pending})
			pending = ""
			if refs[len(refs)-1].DateHint == "" {
				st = stateAwaitingDate
			} else {
				st = stateOutside
			}
		case "div":
			d := datex.FromText(s.Text())
			if d == "" {
				return
			}
			if st == stateAwaitingDate && len(refs) > 0 {
				refs[len(refs)-1].DateHint = d
				st = stateOutside
				return
			}
			// 还没有等待中的引用：挂起，等下一个媒体标签认领。
			pending = d
		}
	})

	return refs, nil
}

func mediaSrc(s *goquery.Selection) string {
	src := strings.TrimSpace(s.AttrOr("src", ""))
	if src == "" && goquery.NodeName(s) == "video" {
		src = strings.TrimSpace(s.Find("source").First().AttrOr("src", ""))
	}
	return src
}
