package encx

import (
	"fmt"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// 解码尝试顺序（固定契约）。latin-1 对任意字节序列都能解码成功，
// 因此后两项实际是不可达的兜底；完整保留是为了让顺序本身可读、可测。
var fallbacks = []struct {
	name string
	enc  *charmap.Charmap
}{
	{"latin-1", charmap.ISO8859_1},
	{"windows-1252", charmap.Windows1252},
	{"iso-8859-1", charmap.ISO8859_1},
}

// ReadText 读取整个文件并解码为 UTF-8 文本。
// 顺序尝试：utf-8 → latin-1 → windows-1252 → iso-8859-1，首个成功者生效。
// 返回值含命中的编码名，便于展示层提示。
func ReadText(path string) ([]byte, string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}

	if utf8.Valid(b) {
		return b, "utf-8", nil
	}

	for _, fb := range fallbacks {
		out, err := decode(fb.enc.NewDecoder(), b)
		if err != nil {
			continue
		}
		return out, fb.name, nil
	}
	return nil, "", fmt.Errorf("无法用任何支持的编码读取 %q", path)
}

func decode(d *encoding.Decoder, b []byte) ([]byte, error) {
	return d.Bytes(b)
}
