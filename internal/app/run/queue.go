package run

import (
	"sync"

	"github.com/John-Robertt/memorg/internal/domain"
)

// 事件类型（worker → 展示层，单向）。
const (
	// EventMeta：run 开始复制前发出一次，携带条目总数。
	EventMeta = "meta"
	// EventProgress：单条目的状态行（常规成功按节流策略发出）。
	EventProgress = "progress"
	// EventLog：无进度语义的一行日志（含取消提示）。
	EventLog = "log"
	// EventDone：正常完成的终态消息，携带汇总。
	EventDone = "done"
	// EventError：致命错误的终态消息（复制开始前即终止）。
	EventError = "error"
)

// Event 是一条 worker 发往展示层的消息。
// 字段按 Kind 选用：Index/Total 仅 progress/meta 有意义，Summary 仅 done 有意义。
type Event struct {
	Kind    string
	Index   int
	Total   int
	Message string
	Summary domain.ReportSummary
}

// Queue 是无界、保序的单生产者/单消费者事件队列。
//
// 约束：
// - worker 只 Push，永不阻塞（无界即是为了这一点）
// - 展示层按固定节拍 Drain，绝不反向影响 worker 的处理速度
// - 除该队列与取消信号外，worker 与展示层不共享任何可变状态
type Queue struct {
	mu     sync.Mutex
	events []Event
}

func NewQueue() *Queue {
	return &Queue{events: make([]Event, 0, 64)}
}

func (q *Queue) Push(e Event) {
	q.mu.Lock()
	q.events = append(q.events, e)
	q.mu.Unlock()
}

// Drain 取走当前积压的全部事件（保持 Push 顺序）；无积压时返回 nil。
func (q *Queue) Drain() []Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.events) == 0 {
		return nil
	}
	out := q.events
	q.events = make([]Event, 0, 64)
	return out
}
