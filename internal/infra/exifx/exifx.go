package exifx

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

// goexif 只支持 JPEG/TIFF；其余扩展名直接跳过，避免按内容试错的开销。
func supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg", ".tif", ".tiff":
		return true
	default:
		return false
	}
}

// DateTaken 读取媒体文件的 EXIF 拍摄时间：优先 DateTimeOriginal，回退 DateTime。
// 任何一步失败（无 EXIF、字段缺失、格式异常）都返回 ok=false，由调用方继续兜底。
func DateTaken(path string) (time.Time, bool) {
	if !supported(path) {
		return time.Time{}, false
	}

	f, err := os.Open(path)
	if err != nil {
		return time.Time{}, false
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return time.Time{}, false
	}

	for _, field := range []exif.FieldName{exif.DateTimeOriginal, exif.DateTime} {
		tag, err := x.Get(field)
		if err != nil {
			continue
		}
		s, err := tag.StringVal()
		if err != nil {
			continue
		}
		t, err := time.ParseInLocation("2006:01:02 15:04:05", strings.TrimSpace(s), time.Local)
		if err != nil {
			continue
		}
		return t, true
	}
	return time.Time{}, false
}
