package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// ErrCodeNotFound 表示无参运行但 cwd 下没有 memorg.json。
	ErrCodeNotFound = "config_not_found"
	// ErrCodeInvalid 表示配置文件无法读取/解析，或字段不合法。
	ErrCodeInvalid = "config_invalid"
	// ErrCodeMissingHTML 表示无参运行但配置文件缺少 html 字段。
	ErrCodeMissingHTML = "config_missing_html"
)

const (
	// MissingLogAll：每个缺失文件都单独上报（缺失和失败一样可操作）。
	MissingLogAll = "all"
	// MissingLogThrottled：缺失消息与常规成功消息使用同一节流策略。
	MissingLogThrottled = "throttled"
)

// CLIArgs 只包含 CLI 暴露的入口（html/out/apply），并保留“是否显式指定”的信息。
// 这能保证覆盖优先级可实现：例如 --apply=false 必须能覆盖 config.apply=true。
type CLIArgs struct {
	HTML string

	Out    string
	OutSet bool

	Apply    bool
	ApplySet bool
}

// FileConfig 对应 memorg.json 的解析结构。
type FileConfig struct {
	HTML       string `json:"html"`
	Out        string `json:"out"`
	Apply      *bool  `json:"apply"`
	Exif       *bool  `json:"exif"`
	MissingLog string `json:"missing_log"`
}

// Effective 是合并并做最小规范化后的最终配置
//（实现层直接消费，不再做二次默认/优先级判断）。
type Effective struct {
	HTML string // 绝对路径
	Out  string // 绝对路径

	Apply bool

	// Exif 控制日期兜底链中是否启用 EXIF 拍摄时间（默认开）。
	Exif bool
	// MissingLog 是缺失文件消息的上报策略："all" | "throttled"。
	MissingLog string
}

// Error 是配置阶段的结构化错误（带 error_code）。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeNotFound:
		return fmt.Sprintf("%s：未找到配置文件 %q", e.Code, e.Path)
	case ErrCodeMissingHTML:
		return fmt.Sprintf("%s：配置文件 %q 缺少必填字段 html", e.Code, e.Path)
	case ErrCodeInvalid:
		if e.Err != nil {
			return fmt.Sprintf("%s：配置文件 %q 无效：%v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s：配置文件 %q 无效", e.Code, e.Path)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		return e.Code
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// LoadEffective 发现并读取配置文件，然后与 CLI 参数合并为最终配置。
//
// 发现规则（固定）：
// 1) CLI 提供 html：尝试读取 <cwd>/memorg.json（可选）
// 2) CLI 未提供 html：必须读取 <cwd>/memorg.json（必选），且其中必须包含 html
//
// 覆盖优先级（固定）：
// - html：CLI > config
// - out：CLI --out > config out > 默认 <html 所在目录>/out
// - apply：CLI --apply/--apply=false > config > 默认 false
// - exif/missing_log：仅由 config 控制（CLI 不暴露）
func LoadEffective(cwd string, cli CLIArgs) (Effective, error) {
	cwdAbs, err := filepath.Abs(cwd)
	if err != nil {
		return Effective{}, &Error{Code: ErrCodeInvalid, Path: cwd, Err: err}
	}

	cfgPath := filepath.Join(cwdAbs, "memorg.json")
	fc, exists, err := readFileConfig(cfgPath)
	if err != nil {
		return Effective{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}

	htmlArg := strings.TrimSpace(cli.HTML)
	if htmlArg == "" {
		if !exists {
			return Effective{}, &Error{Code: ErrCodeNotFound, Path: cfgPath, Err: os.ErrNotExist}
		}
		if strings.TrimSpace(fc.HTML) == "" {
			return Effective{}, &Error{Code: ErrCodeMissingHTML, Path: cfgPath}
		}
		htmlArg = fc.HTML
	}

	return merge(cwdAbs, htmlArg, cli, fc, cfgPath)
}

func merge(cwdAbs, htmlArg string, cli CLIArgs, fc FileConfig, cfgPath string) (Effective, error) {
	htmlAbs := absCleanFrom(cwdAbs, htmlArg)

	// out：CLI > config > 默认（与 HTML 同级的 out/）
	out := ""
	if cli.OutSet {
		out = strings.TrimSpace(cli.Out)
	} else if strings.TrimSpace(fc.Out) != "" {
		out = fc.Out
	}
	if out == "" {
		out = filepath.Join(filepath.Dir(htmlAbs), "out")
	}
	outAbs := absCleanFrom(cwdAbs, out)

	// apply：CLI > config > 默认 false
	apply := false
	if cli.ApplySet {
		apply = cli.Apply
	} else if fc.Apply != nil {
		apply = *fc.Apply
	}

	exif := true
	if fc.Exif != nil {
		exif = *fc.Exif
	}

	missingLog := strings.TrimSpace(fc.MissingLog)
	switch missingLog {
	case "":
		missingLog = MissingLogAll
	case MissingLogAll, MissingLogThrottled:
		// ok
	default:
		return Effective{}, &Error{
			Code: ErrCodeInvalid, Path: cfgPath,
			Err: fmt.Errorf("missing_log 只能是 %q 或 %q，实际是 %q", MissingLogAll, MissingLogThrottled, missingLog),
		}
	}

	return Effective{
		HTML:       htmlAbs,
		Out:        outAbs,
		Apply:      apply,
		Exif:       exif,
		MissingLog: missingLog,
	}, nil
}

// absCleanFrom 以 base 为基准，把 p 变为 clean + absolute。
func absCleanFrom(base, p string) string {
	p = filepath.Clean(strings.TrimSpace(p))
	if p == "" {
		return ""
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(base, p))
}

// readFileConfig 读取并解析 JSON 配置文件。
// 返回值 exists 表示该文件是否存在（不存在不算错误）。
func readFileConfig(path string) (fc FileConfig, exists bool, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, false, nil
		}
		return FileConfig{}, false, err
	}
	if err := json.Unmarshal(b, &fc); err != nil {
		return FileConfig{}, true, err
	}
	return fc, true, nil
}
