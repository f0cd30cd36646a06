package domain

// MediaRef 是从 memories HTML 中提取的一条媒体引用。
//
// 不变量（实现必须遵守）：
// - 按文档顺序产出，产出后不再修改
// - Src 保留 HTML 属性的原始值（路径归一化/解析由 run 层完成）
// - DateHint 要么为空，要么已是校验过的 YYYY-MM-DD
type MediaRef struct {
	Src      string
	DateHint string
}

// ResolvedItem 是单条引用在处理时刻的解析结果。
// 仅存活于一次 run 之内，不做任何持久化。
type ResolvedItem struct {
	SrcAbs string
	Date   string // YYYY-MM-DD
}
