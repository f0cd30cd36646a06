package planner

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPlan_Layout(t *testing.T) {
	out := t.TempDir()
	p := New(out)

	d, err := p.Plan("2023-05-01", "IMG_001.jpg")
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	want := filepath.Join(out, "2023", "2023-05", "2023-05-01_IMG_001.jpg")
	if d.Path() != want {
		t.Fatalf("目标路径不符：got=%q want=%q", d.Path(), want)
	}
}

func TestPlan_CollisionWithinRun(t *testing.T) {
	p := New(t.TempDir())

	first, err := p.Plan("2023-05-01", "IMG_001.jpg")
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	second, err := p.Plan("2023-05-01", "IMG_001.jpg")
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	third, err := p.Plan("2023-05-01", "IMG_001.jpg")
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}

	if first.Name != "2023-05-01_IMG_001.jpg" {
		t.Fatalf("首个名字不符：%q", first.Name)
	}
	if second.Name != "2023-05-01_IMG_001_1.jpg" {
		t.Fatalf("冲突后缀不符：%q", second.Name)
	}
	if third.Name != "2023-05-01_IMG_001_2.jpg" {
		t.Fatalf("计数应严格递增：%q", third.Name)
	}
}

func TestPlan_CollisionWithExistingOnDisk(t *testing.T) {
	out := t.TempDir()
	dir := filepath.Join(out, "2023", "2023-05")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}
	// 上次 run 留下的产物也必须算占用。
	if err := os.WriteFile(filepath.Join(dir, "2023-05-01_IMG_001.jpg"), []byte("x"), 0o644); err != nil {
		t.Fatalf("写入失败：%v", err)
	}

	p := New(out)
	d, err := p.Plan("2023-05-01", "IMG_001.jpg")
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if d.Name != "2023-05-01_IMG_001_1.jpg" {
		t.Fatalf("应避开磁盘上的同名文件：%q", d.Name)
	}
}

func TestPlan_DifferentDatesNoConflict(t *testing.T) {
	p := New(t.TempDir())

	a, err := p.Plan("2023-05-01", "IMG_001.jpg")
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	b, err := p.Plan("2023-06-01", "IMG_001.jpg")
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if a.Name != b.Name || a.Dir == b.Dir {
		t.Fatalf("不同月份应落入不同目录且无需后缀：a=%+v b=%+v", a, b)
	}
}

func TestPlan_InvalidDate(t *testing.T) {
	if _, err := New(t.TempDir()).Plan("bad", "a.jpg"); err == nil {
		t.Fatalf("期望错误，但得到 nil")
	}
}
