package domain

import (
	"encoding/json"
	"time"
)

const (
	StatusCopied  = "copied"
	StatusPlanned = "planned" // dry-run 下 copied 的对应状态
	StatusMissing = "missing"
	StatusFailed  = "failed"
)

const (
	ErrCodeReadFailed    = "read_failed"
	ErrCodeNoMedia       = "no_media"
	ErrCodeMissingSource = "missing_source"
	ErrCodeCopyFailed    = "copy_failed"
)

// RunReport 是对外稳定输出（report.json / stdout JSON）的结构。
type RunReport struct {
	HTML string `json:"html"`
	Out  string `json:"out"`

	DryRun    bool `json:"dry_run"`
	Cancelled bool `json:"cancelled"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// 致命错误（复制开始前即终止）时填写；其余情况为空。
	ErrorCode string `json:"error_code,omitempty"`
	ErrorMsg  string `json:"error_msg,omitempty"`

	Summary ReportSummary `json:"summary"`
	Items   []ItemResult  `json:"items"`
}

type ReportSummary struct {
	Copied  int `json:"copied"`
	Planned int `json:"planned"`
	Missing int `json:"missing"`
	Failed  int `json:"failed"`
}

// ItemResult 对应一条 MediaRef 的处理结果。
// Index 从 1 开始，等于该引用在文档中的序号。
type ItemResult struct {
	Index int    `json:"index"`
	Src   string `json:"src"`
	Dst   string `json:"dst"`
	Date  string `json:"date"`

	Status    string `json:"status"`
	ErrorCode string `json:"error_code"`
	ErrorMsg  string `json:"error_msg"`
}

// Finalize 做两件事：
// 1) 时间统一为 UTC（确保 JSON 为 RFC3339 且后缀 Z）
// 2) summary 由 items 计算得出
//
// items 保持文档顺序，不做排序：顺序本身是契约的一部分。
func (r *RunReport) Finalize() {
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()

	var s ReportSummary
	for _, it := range r.Items {
		switch it.Status {
		case StatusCopied:
			s.Copied++
		case StatusPlanned:
			s.Planned++
		case StatusMissing:
			s.Missing++
		case StatusFailed:
			s.Failed++
		}
	}
	r.Summary = s
}

// Succeeded/Failed 是面向用户的两类汇总口径：
// missing 与 failed 同属“失败”（与最终摘要行保持一致）。
func (s ReportSummary) Succeeded() int { return s.Copied + s.Planned }
func (s ReportSummary) FailedTotal() int { return s.Missing + s.Failed }

// MarshalJSON 仅用于集中约束输出的稳定性（避免未来不小心引入非确定字段）。
// 当前只是透传 encoding/json 的默认行为。
func (r RunReport) MarshalJSON() ([]byte, error) {
	type Alias RunReport
	return json.Marshal(Alias(r))
}
