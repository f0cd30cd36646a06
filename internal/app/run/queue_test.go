package run

import (
	"reflect"
	"testing"
)

func TestQueue_PushDrainOrder(t *testing.T) {
	q := NewQueue()
	q.Push(Event{Kind: EventMeta, Total: 3})
	q.Push(Event{Kind: EventProgress, Index: 1, Total: 3, Message: "a"})
	q.Push(Event{Kind: EventLog, Message: "b"})

	got := q.Drain()
	var kinds []string
	for _, e := range got {
		kinds = append(kinds, e.Kind)
	}
	if !reflect.DeepEqual(kinds, []string{EventMeta, EventProgress, EventLog}) {
		t.Fatalf("事件顺序不符：%v", kinds)
	}
}

func TestQueue_DrainEmpties(t *testing.T) {
	q := NewQueue()
	q.Push(Event{Kind: EventLog, Message: "x"})

	if got := q.Drain(); len(got) != 1 {
		t.Fatalf("期望 1 条事件，实际 %d", len(got))
	}
	if got := q.Drain(); got != nil {
		t.Fatalf("二次 Drain 应为空，实际 %v", got)
	}
}

func TestThrottle(t *testing.T) {
	// 小批量：逐条都发。
	th := newThrottle(5)
	for i := 1; i <= 5; i++ {
		if !th.emit(i) {
			t.Fatalf("总数 5 时第 %d 条应发出", i)
		}
	}

	// 大批量：约 100 条上限，首条与末条必发。
	th = newThrottle(1000)
	if th.interval != 10 {
		t.Fatalf("期望间隔 10，实际 %d", th.interval)
	}
	if !th.emit(1) || !th.emit(1000) {
		t.Fatalf("首条与末条必须发出")
	}
	if th.emit(7) {
		t.Fatalf("非采样点不应发出")
	}

	count := 0
	for i := 1; i <= 1000; i++ {
		if th.emit(i) {
			count++
		}
	}
	if count != 101 {
		t.Fatalf("期望 101 条（100 个采样点 + 首条），实际 %d", count)
	}
}
