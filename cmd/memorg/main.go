package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/John-Robertt/memorg/internal/app/run"
	"github.com/John-Robertt/memorg/internal/config"
	"github.com/John-Robertt/memorg/internal/domain"
	"github.com/John-Robertt/memorg/internal/infra/fsx"
)

func main() {
	args := os.Args[1:]
	if len(args) == 0 || isHelp(args[0]) {
		printUsage()
		return
	}

	switch args[0] {
	case "run":
		if code := runCmd(args[1:]); code != 0 {
			os.Exit(code)
		}
	default:
		fmt.Fprintf(os.Stderr, "未知命令：%q\n\n", args[0])
		printUsage()
		os.Exit(2)
	}
}

func runCmd(args []string) int {
	for _, a := range args {
		if isHelp(a) {
			printRunUsage()
			return 0
		}
	}

	ra, err := parseRunArgs(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "参数错误：%v\n\n", err)
		printRunUsage()
		return 2
	}

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "读取当前目录失败：%v\n", err)
		return 1
	}

	eff, err := config.LoadEffective(cwd, config.CLIArgs{
		HTML:     ra.HTML,
		Out:      ra.Out,
		OutSet:   ra.OutSet,
		Apply:    ra.Apply,
		ApplySet: ra.ApplySet,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "配置错误：%v\n", err)
		return 1
	}

	// Ctrl-C 触发协作式取消：worker 在每个条目开头检查一次，
	// 不抢占正在进行的单文件复制。
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	progressW, interactive := pickProgressWriter()
	if interactive {
		printEffective(progressW, eff)
	}

	q := run.NewQueue()
	done := make(chan domain.RunReport, 1)
	go func() { done <- run.Execute(ctx, eff, q) }()

	rr := pump(q, done, newProgressUI(progressW))

	// apply：report.json 落在输出根目录；dry-run 禁止落盘。
	if eff.Apply && rr.ErrorCode == "" {
		if err := writeReportFile(eff.Out, rr); err != nil {
			fmt.Fprintf(os.Stderr, "写入 report.json 失败：%v\n", err)
			emitReport(rr)
			return 1
		}
	}

	emitReport(rr)

	if rr.ErrorCode != "" || rr.Cancelled || rr.Summary.FailedTotal() > 0 {
		return 1
	}
	return 0
}

// pump 以固定节拍消费事件队列，直到 worker 返回；随后再 Drain 一次清空积压。
// 展示层只读队列，绝不反压 worker。
func pump(q *run.Queue, done <-chan domain.RunReport, ui *progressUI) domain.RunReport {
	t := time.NewTicker(100 * time.Millisecond)
	defer t.Stop()

	for {
		select {
		case <-t.C:
			ui.renderAll(q.Drain())
		case rr := <-done:
			ui.renderAll(q.Drain())
			return rr
		}
	}
}

type runArgs struct {
	HTML string

	Out    string
	OutSet bool

	Apply    bool
	ApplySet bool
}

func parseRunArgs(args []string) (runArgs, error) {
	ra := runArgs{}

	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "--out":
			if i+1 >= len(args) {
				return runArgs{}, fmt.Errorf("--out 需要一个值")
			}
			i++
			ra.Out = args[i]
			ra.OutSet = true
		case strings.HasPrefix(a, "--out="):
			ra.Out = strings.TrimPrefix(a, "--out=")
			ra.OutSet = true
		case a == "--apply":
			ra.Apply = true
			ra.ApplySet = true
		case strings.HasPrefix(a, "--apply="):
			v := strings.TrimPrefix(a, "--apply=")
			switch v {
			case "true":
				ra.Apply = true
			case "false":
				ra.Apply = false
			default:
				return runArgs{}, fmt.Errorf("--apply 只能是 true 或 false，实际是 %q", v)
			}
			ra.ApplySet = true
		case strings.HasPrefix(a, "-"):
			return runArgs{}, fmt.Errorf("未知参数 %q", a)
		default:
			if ra.HTML != "" {
				return runArgs{}, fmt.Errorf("重复的 html 路径：%q 与 %q", ra.HTML, a)
			}
			ra.HTML = a
		}
	}

	if ra.OutSet && strings.TrimSpace(ra.Out) == "" {
		return runArgs{}, fmt.Errorf("--out 不能为空")
	}
	return ra, nil
}

func isHelp(s string) bool {
	return s == "-h" || s == "--help" || s == "help"
}

func printUsage() {
	fmt.Fprint(os.Stdout, `用法：
  memorg run [memories.html] [--out DIR] [--apply[=true|false]]

命令：
  run    整理一份 memories 导出（默认 dry-run）

使用 "memorg run --help" 查看详细说明。
`)
}

func printRunUsage() {
	fmt.Fprint(os.Stdout, `用法：
  memorg run [memories.html] [--out DIR] [--apply[=true|false]]

参数：
  --out       输出根目录（未指定则读配置文件；最终默认 HTML 同级的 out/）
  --apply     真正执行复制与 report 落盘（默认 dry-run）；支持 --apply=false 覆盖配置中的 apply=true
  -h, --help  显示帮助

输出布局：
  <out>/YYYY/YYYY-MM/YYYY-MM-DD_<原文件名>[_n]
`)
}

func emitReport(rr domain.RunReport) {
	if isTTY(os.Stdout) {
		fmt.Fprintf(os.Stdout, "完成：succeeded=%d failed=%d (copied=%d planned=%d missing=%d copy_failed=%d)\n",
			rr.Summary.Succeeded(), rr.Summary.FailedTotal(),
			rr.Summary.Copied, rr.Summary.Planned, rr.Summary.Missing, rr.Summary.Failed,
		)
		if rr.ErrorCode != "" {
			fmt.Fprintf(os.Stderr, "%s: %s\n", rr.ErrorCode, rr.ErrorMsg)
		}
		for _, it := range rr.Items {
			if it.Status != domain.StatusMissing && it.Status != domain.StatusFailed {
				continue
			}
			fmt.Fprintf(os.Stderr, "[%d] %s %s: %s\n", it.Index, it.Src, it.ErrorCode, it.ErrorMsg)
		}
		return
	}

	// stdout 非 TTY：stdout 必须且仅输出一个 RunReport JSON（日志/摘要走 stderr）。
	enc := json.NewEncoder(os.Stdout)
	_ = enc.Encode(rr)
	fmt.Fprintf(os.Stderr, "完成：succeeded=%d failed=%d\n",
		rr.Summary.Succeeded(), rr.Summary.FailedTotal(),
	)
}

func writeReportFile(out string, rr domain.RunReport) error {
	b, err := json.MarshalIndent(rr, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	return fsx.WriteFileAtomicReplace(out, "report.json", b)
}

func isTTY(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func pickProgressWriter() (io.Writer, bool) {
	// 进度输出只在交互终端启用；默认走 stderr（不污染 stdout JSON）。
	if isTTY(os.Stderr) {
		return os.Stderr, true
	}
	// 某些环境（例如仅重定向 stderr）下，stdout 仍是 TTY：退化输出到 stdout。
	if isTTY(os.Stdout) {
		return os.Stdout, true
	}
	return nil, false
}

func printEffective(w io.Writer, eff config.Effective) {
	mode := "dry-run"
	modeHint := " (不创建目录/不复制/不落盘)"
	if eff.Apply {
		mode = "apply"
		modeHint = ""
	}

	fmt.Fprintf(w, "[%s] memorg run (%s)\n", time.Now().Format("15:04:05"), mode)
	fmt.Fprintln(w, "配置（生效）:")
	fmt.Fprintf(w, "  html: %s\n", eff.HTML)
	fmt.Fprintf(w, "  out: %s\n", eff.Out)
	fmt.Fprintf(w, "  mode: %s%s\n", mode, modeHint)
	fmt.Fprintf(w, "  exif: %s\n", onOff(eff.Exif))
	fmt.Fprintf(w, "  missing_log: %s\n", eff.MissingLog)
	if eff.Apply {
		fmt.Fprintf(w, "  report: %s\n", filepath.Join(eff.Out, "report.json"))
	}
	fmt.Fprintln(w)
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
