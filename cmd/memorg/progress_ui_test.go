package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/John-Robertt/memorg/internal/app/run"
	"github.com/John-Robertt/memorg/internal/domain"
)

func TestProgressUI_RendersEventsInOrder(t *testing.T) {
	var buf bytes.Buffer
	ui := newProgressUI(&buf)

	ui.renderAll([]run.Event{
		{Kind: run.EventMeta, Total: 3},
		{Kind: run.EventProgress, Index: 1, Total: 3, Message: "[1/3] OK → 2023-05-01_a.jpg"},
		{Kind: run.EventProgress, Index: 2, Total: 3, Message: "[2/3] 缺失: ./b.jpg"},
		{Kind: run.EventDone, Summary: domain.ReportSummary{Copied: 2, Missing: 1}, Message: "完成。成功 2，失败 1"},
	})

	out := buf.String()
	for _, want := range []string{"条目总数：3", "[1/3] OK", "[2/3] 缺失", "完成。成功 2，失败 1"} {
		if !strings.Contains(out, want) {
			t.Fatalf("输出缺少 %q：\n%s", want, out)
		}
	}
	if strings.Index(out, "[1/3]") > strings.Index(out, "[2/3]") {
		t.Fatalf("渲染顺序必须与事件顺序一致：\n%s", out)
	}
}

func TestProgressUI_NilWriterConsumesSilently(t *testing.T) {
	ui := newProgressUI(nil)
	// 不 panic、不输出即可。
	ui.renderAll([]run.Event{
		{Kind: run.EventMeta, Total: 1},
		{Kind: run.EventError, Message: "x"},
	})
	if ui.total != 1 {
		t.Fatalf("nil writer 仍应记录 meta：total=%d", ui.total)
	}
}
