package xtimer

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// State 表示定时器所处的阶段。
type State int32

const (
	// StatePending 等待触发。
	StatePending State = iota
	// StateFired 已触发。
	StateFired
	// StateCanceled 已取消。
	StateCanceled
)

// String 返回 State 的可读名称。
func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateFired:
		return "fired"
	case StateCanceled:
		return "canceled"
	default:
		return "State(" + strconv.Itoa(int(s)) + ")"
	}
}

// Timer 是一次性的延迟信号。所有方法都是并发安全的。
type Timer struct {
	clock  clockwork.Clock
	onFire func()
	done   chan struct{}

	mu       sync.Mutex
	state    State
	deadline time.Time
	timer    clockwork.Timer
	// gen 在每次重新布置底层定时器时递增。
	// 与 Speedup/Cancel 竞争失败的旧回调通过比较 gen 识别并丢弃。
	gen uint64
	err error
}

// New 创建在 d 之后触发的定时器。d < 0 按 0 处理。
func New(d time.Duration, opts ...Option) *Timer {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	if d < 0 {
		d = 0
	}

	t := &Timer{
		clock:  o.clock,
		onFire: o.onFire,
		done:   make(chan struct{}),
	}

	t.mu.Lock()
	t.deadline = t.clock.Now().Add(d)
	t.arm(d)
	t.mu.Unlock()
	return t
}

// arm 布置底层定时器，调用方必须持有 t.mu。
func (t *Timer) arm(d time.Duration) {
	t.gen++
	gen := t.gen
	t.timer = t.clock.AfterFunc(d, func() {
		t.fire(gen)
	})
}

func (t *Timer) fire(gen uint64) {
	t.mu.Lock()
	if t.state != StatePending || gen != t.gen {
		t.mu.Unlock()
		return
	}
	t.state = StateFired
	t.timer = nil
	close(t.done)
	onFire := t.onFire
	t.mu.Unlock()

	if onFire != nil {
		onFire()
	}
}

// Speedup 将触发时间提前到 min(Deadline(), now+d)。
//
// 请求的时间不早于当前触发时间时不做任何事；定时器已触发或已取消时同样是空操作。
// 返回值表示触发时间是否被提前。
func (t *Timer) Speedup(d time.Duration) bool {
	if d < 0 {
		d = 0
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != StatePending {
		return false
	}
	at := t.clock.Now().Add(d)
	if !at.Before(t.deadline) {
		return false
	}

	t.deadline = at
	t.rearm(d)
	return true
}

// Reset 把触发时间改为 now+d，可以推迟也可以提前。
// 定时器已触发或已取消时返回 false，调用方应创建新的 Timer。
func (t *Timer) Reset(d time.Duration) bool {
	if d < 0 {
		d = 0
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != StatePending {
		return false
	}
	t.deadline = t.clock.Now().Add(d)
	t.rearm(d)
	return true
}

// rearm 复用底层定时器重新布置，调用方必须持有 t.mu。
// Stop 失败说明旧回调已在路上，此时换新定时器并递增 gen，旧回调会被 fire 丢弃。
func (t *Timer) rearm(d time.Duration) {
	if t.timer.Stop() {
		t.timer.Reset(d)
		return
	}
	t.arm(d)
}

// Cancel 取消尚未触发的定时器，reason 为 nil 时使用 ErrCanceled。
// 幂等：只有真正完成取消的那次调用返回 true。
func (t *Timer) Cancel(reason error) bool {
	if reason == nil {
		reason = ErrCanceled
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != StatePending {
		return false
	}
	t.timer.Stop()
	t.timer = nil
	t.gen++
	t.state = StateCanceled
	t.err = reason
	close(t.done)
	return true
}

// Done 返回在触发或取消时关闭的 channel。
func (t *Timer) Done() <-chan struct{} {
	return t.done
}

// Err 返回取消原因。等待中或已触发时返回 nil。
func (t *Timer) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// State 返回当前状态的快照。
func (t *Timer) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Deadline 返回当前计划的触发时间。
// 定时器结束后返回最后一次计划的时间。
func (t *Timer) Deadline() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.deadline
}

// Wait 阻塞直到定时器结束或 ctx 结束。
// 触发时返回 nil，取消时返回取消原因，ctx 结束时返回 ctx.Err()。
func (t *Timer) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}
