package exifx

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDateTaken_UnsupportedExt(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "a.mp4")
	if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
		t.Fatalf("写入失败：%v", err)
	}
	if _, ok := DateTaken(p); ok {
		t.Fatalf("非 JPEG/TIFF 不应命中 EXIF")
	}
}

func TestDateTaken_NoExifData(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "a.jpg")
	// 不是合法 JPEG：Decode 失败应安静返回 ok=false，而不是报错。
	if err := os.WriteFile(p, []byte("not a jpeg"), 0o644); err != nil {
		t.Fatalf("写入失败：%v", err)
	}
	if _, ok := DateTaken(p); ok {
		t.Fatalf("无 EXIF 数据不应命中")
	}
}

func TestDateTaken_FileMissing(t *testing.T) {
	if _, ok := DateTaken(filepath.Join(t.TempDir(), "nope.jpg")); ok {
		t.Fatalf("文件不存在不应命中")
	}
}
