package main

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/John-Robertt/memorg/internal/domain"
)

func TestCLI_NoTTY_StdoutOnlyRunReportJSON(t *testing.T) {
	// 这个测试锁定对外契约：stdout 非 TTY 时只能输出一个 RunReport JSON（进度/配置必须走 stderr 或直接禁用）。
	root := t.TempDir()

	html := `<div class="text-line">2023-05-01</div><img src="./IMG_001.jpg">`
	if err := os.WriteFile(filepath.Join(root, "memories.html"), []byte(html), 0o644); err != nil {
		t.Fatalf("写入 HTML 失败：%v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "IMG_001.jpg"), []byte("x"), 0o644); err != nil {
		t.Fatalf("写入媒体文件失败：%v", err)
	}

	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("读取 cwd 失败：%v", err)
	}
	repoRoot := filepath.Clean(filepath.Join(wd, "..", ".."))

	cmd := exec.Command("go", "run", "./cmd/memorg", "run",
		filepath.Join(root, "memories.html"), "--out", filepath.Join(root, "out"), "--apply")
	cmd.Dir = repoRoot

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		t.Fatalf("命令执行失败：%v\nstderr=%s\nstdout=%s", err, stderr.String(), stdout.String())
	}

	// stdout 必须是单个 JSON。
	var rr domain.RunReport
	if err := json.Unmarshal(stdout.Bytes(), &rr); err != nil {
		t.Fatalf("stdout 不是合法的 RunReport JSON：%v\nstdout=%q", err, stdout.String())
	}
	if rr.Summary.Copied != 1 {
		t.Fatalf("期望复制 1 条，实际 %+v", rr.Summary)
	}
	// 进度/配置不应出现在 stdout。
	if strings.Contains(stdout.String(), "配置（生效）") || strings.Contains(stdout.String(), "条目总数") {
		t.Fatalf("stdout 不应包含进度/配置输出：%q", stdout.String())
	}

	// stderr 至少应包含最终摘要行。
	if !strings.Contains(stderr.String(), "完成：succeeded=") {
		t.Fatalf("stderr 缺少完成摘要：%q", stderr.String())
	}

	// 产物与 report.json 应就位。
	if _, err := os.Stat(filepath.Join(root, "out", "2023", "2023-05", "2023-05-01_IMG_001.jpg")); err != nil {
		t.Fatalf("期望产物存在：%v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "out", "report.json")); err != nil {
		t.Fatalf("期望 report.json 存在：%v", err)
	}
}
