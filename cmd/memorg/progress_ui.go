package main

import (
	"fmt"
	"io"

	"github.com/John-Robertt/memorg/internal/app/run"
)

// progressUI 是一个"简洁版"的交互终端进度输出：
// 逐行追加（数字进度内嵌在 progress 消息里），事件之外不产生任何输出。
//
// w 为 nil 时（非交互环境）照常消费事件但不渲染：
// 队列必须被排空，最终结果走 stdout 的 RunReport JSON。
type progressUI struct {
	w     io.Writer
	total int
}

func newProgressUI(w io.Writer) *progressUI {
	return &progressUI{w: w}
}

func (p *progressUI) renderAll(events []run.Event) {
	for _, e := range events {
		p.render(e)
	}
}

func (p *progressUI) render(e run.Event) {
	if e.Kind == run.EventMeta {
		p.total = e.Total
	}
	if p.w == nil {
		return
	}

	switch e.Kind {
	case run.EventMeta:
		fmt.Fprintf(p.w, "条目总数：%d\n", e.Total)
	case run.EventProgress, run.EventLog:
		fmt.Fprintln(p.w, e.Message)
	case run.EventDone:
		fmt.Fprintln(p.w, e.Message)
	case run.EventError:
		fmt.Fprintf(p.w, "错误: %s\n", e.Message)
	default:
		// 兜底：未知事件也不要静默（便于调试/演进）。
		fmt.Fprintf(p.w, "%s: %s\n", e.Kind, e.Message)
	}
}
