package run

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/John-Robertt/memorg/internal/app/planner"
	"github.com/John-Robertt/memorg/internal/config"
	"github.com/John-Robertt/memorg/internal/datex"
	"github.com/John-Robertt/memorg/internal/domain"
	"github.com/John-Robertt/memorg/internal/extract"
	"github.com/John-Robertt/memorg/internal/infra/encx"
	"github.com/John-Robertt/memorg/internal/infra/exifx"
	"github.com/John-Robertt/memorg/internal/infra/fsx"
)

// Execute 执行一次 run：解码 HTML → 提取引用 → 逐条（解析来源 → 解析日期 →
// 规划目标 → 复制），并返回对外稳定的 RunReport。
//
// 约束：
// - 单 worker 串行处理，条目内失败降级为 item 级结果，不中断后续条目
// - 进度/日志只经 q 异步送达展示层，本函数不做任何输出
// - 取消是协作式的：每条目开头检查一次 ctx；复制中途不抢占，
//   已复制的文件保留，不回滚
func Execute(ctx context.Context, eff config.Effective, q *Queue) domain.RunReport {
	started := time.Now().UTC()
	rr := domain.RunReport{
		HTML:      eff.HTML,
		Out:       eff.Out,
		DryRun:    !eff.Apply,
		StartedAt: started,
	}

	text, _, err := encx.ReadText(eff.HTML)
	if err != nil {
		return fatal(q, rr, domain.ErrCodeReadFailed, fmt.Sprintf("无法读取 HTML 文件：%v", err))
	}

	refs, err := extract.Refs(text)
	if err != nil {
		return fatal(q, rr, domain.ErrCodeReadFailed, fmt.Sprintf("解析 HTML 失败：%v", err))
	}
	if len(refs) == 0 {
		return fatal(q, rr, domain.ErrCodeNoMedia, "未在 HTML 中找到任何媒体条目")
	}

	total := len(refs)
	q.Push(Event{Kind: EventMeta, Total: total})

	baseDir := filepath.Dir(eff.HTML)
	pl := planner.New(eff.Out)
	th := newThrottle(total)
	rr.Items = make([]domain.ItemResult, 0, total)

	for i, ref := range refs {
		if ctx.Err() != nil {
			rr.Cancelled = true
			break
		}
		rr.Items = append(rr.Items, processOne(eff, q, pl, th, baseDir, i+1, total, ref))
	}

	rr.FinishedAt = time.Now().UTC()
	rr.Finalize()

	// 终态消息必须恰好一条：done（完成）或带取消说明的 log。
	// 致命路径的 error 终态由 fatal 负责。
	if rr.Cancelled {
		q.Push(Event{Kind: EventLog, Message: fmt.Sprintf(
			"已取消。成功 %d，失败 %d", rr.Summary.Succeeded(), rr.Summary.FailedTotal(),
		)})
	} else {
		q.Push(Event{Kind: EventDone, Summary: rr.Summary, Message: fmt.Sprintf(
			"完成。成功 %d，失败 %d；输出目录：%s", rr.Summary.Succeeded(), rr.Summary.FailedTotal(), eff.Out,
		)})
	}
	return rr
}

func processOne(eff config.Effective, q *Queue, pl *planner.Planner, th throttle, baseDir string, idx, total int, ref domain.MediaRef) domain.ItemResult {
	item := domain.ItemResult{Index: idx, Src: ref.Src}

	srcAbs, info, ok := resolveSource(baseDir, ref.Src)
	if !ok {
		item.Status = domain.StatusMissing
		item.ErrorCode = domain.ErrCodeMissingSource
		item.ErrorMsg = "两次解析（原始路径/仅文件名）均未找到来源文件"
		if eff.MissingLog == config.MissingLogAll || th.emit(idx) {
			q.Push(Event{Kind: EventProgress, Index: idx, Total: total,
				Message: fmt.Sprintf("[%d/%d] 缺失: %s", idx, total, ref.Src)})
		}
		return item
	}

	resolved := domain.ResolvedItem{
		SrcAbs: srcAbs,
		Date:   resolveDate(ref, srcAbs, info, eff.Exif),
	}
	item.Date = resolved.Date

	dest, err := pl.Plan(resolved.Date, filepath.Base(srcAbs))
	if err != nil {
		item.Status = domain.StatusFailed
		item.ErrorCode = domain.ErrCodeCopyFailed
		item.ErrorMsg = fmt.Sprintf("规划目标失败：%v", err)
		q.Push(Event{Kind: EventProgress, Index: idx, Total: total,
			Message: fmt.Sprintf("[%d/%d] 失败: %s", idx, total, item.ErrorMsg)})
		return item
	}
	item.Dst = dest.Path()

	if !eff.Apply {
		item.Status = domain.StatusPlanned
		if th.emit(idx) {
			q.Push(Event{Kind: EventProgress, Index: idx, Total: total,
				Message: fmt.Sprintf("[%d/%d] 计划 → %s", idx, total, dest.Name)})
		}
		return item
	}

	err = fsx.EnsureDir(dest.Dir)
	if err == nil {
		err = fsx.CopyFile(resolved.SrcAbs, dest.Path())
	}
	if err != nil {
		item.Status = domain.StatusFailed
		item.ErrorCode = domain.ErrCodeCopyFailed
		item.ErrorMsg = err.Error()
		// 复制失败不节流：每条都要让用户看到。
		q.Push(Event{Kind: EventProgress, Index: idx, Total: total,
			Message: fmt.Sprintf("[%d/%d] 复制失败: %v", idx, total, err)})
		return item
	}

	item.Status = domain.StatusCopied
	if th.emit(idx) {
		q.Push(Event{Kind: EventProgress, Index: idx, Total: total,
			Message: fmt.Sprintf("[%d/%d] OK → %s", idx, total, dest.Name)})
	}
	return item
}

// throttle 决定第 idx 条（1 起）的常规 progress 是否入队：
// 全程至多 ~100 条，首条与末条必发。
type throttle struct {
	total    int
	interval int
}

func newThrottle(total int) throttle {
	interval := total / 100
	if interval < 1 {
		interval = 1
	}
	return throttle{total: total, interval: interval}
}

func (t throttle) emit(idx int) bool {
	return idx == 1 || idx == t.total || idx%t.interval == 0
}

// resolveSource 归一化来源引用并解析为绝对路径。
// 原始相对路径找不到时，退回“仅用最后一段文件名”再试一次
//（兼容把目录结构拍扁的导出）。
func resolveSource(baseDir, raw string) (string, fs.FileInfo, bool) {
	rel := normalizeSrc(raw)
	if rel == "" {
		return "", nil, false
	}

	p := filepath.Join(baseDir, filepath.FromSlash(rel))
	if fi, err := os.Stat(p); err == nil && fi.Mode().IsRegular() {
		return p, fi, true
	}

	alt := filepath.Join(baseDir, filepath.Base(filepath.FromSlash(rel)))
	if fi, err := os.Stat(alt); err == nil && fi.Mode().IsRegular() {
		return alt, fi, true
	}
	return "", nil, false
}

// normalizeSrc 去除 ".//" 或 "./" 前缀标记与 "?" 之后的查询串。
func normalizeSrc(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, ".//") {
		s = s[3:]
	} else if strings.HasPrefix(s, "./") {
		s = s[2:]
	}
	if i := strings.IndexByte(s, '?'); i >= 0 {
		s = s[:i]
	}
	return s
}

// resolveDate 按固定优先级解析有效日期：
// HTML 内联 hint → 文件名模式 → EXIF 拍摄时间（可配置关闭）→ 文件修改时间。
// 复制阶段前再做一次校验：hint 来源不可信，非法值回退到文件时间戳。
func resolveDate(ref domain.MediaRef, srcAbs string, info fs.FileInfo, useExif bool) string {
	d := ref.DateHint
	if d == "" {
		d = datex.FromText(filepath.Base(srcAbs))
	}
	if d == "" && useExif {
		if t, ok := exifx.DateTaken(srcAbs); ok {
			d = datex.FromTime(t)
		}
	}
	if !datex.Valid(d) {
		d = datex.FromTime(info.ModTime())
	}
	return d
}

func fatal(q *Queue, rr domain.RunReport, code, msg string) domain.RunReport {
	q.Push(Event{Kind: EventError, Message: msg})
	rr.ErrorCode = code
	rr.ErrorMsg = msg
	rr.FinishedAt = time.Now().UTC()
	rr.Finalize()
	return rr
}
