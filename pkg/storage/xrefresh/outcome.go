package xrefresh

import "context"

// Outcome 是一次加载结果的只读快照：可能尚未完成，完成后不可变。
// 调用方拿到的 Outcome 不引用 entry 的可变状态。
type Outcome[V any] struct {
	done chan struct{}
	val  V
	err  error
}

func newOutcome[V any]() *Outcome[V] {
	return &Outcome[V]{done: make(chan struct{})}
}

func resolvedOutcome[V any](val V, err error) *Outcome[V] {
	o := newOutcome[V]()
	o.resolve(val, err)
	return o
}

// resolve 只能调用一次，由持有者保证。
func (o *Outcome[V]) resolve(val V, err error) {
	o.val = val
	o.err = err
	close(o.done)
}

// Done 返回结果就绪时关闭的 channel。
func (o *Outcome[V]) Done() <-chan struct{} {
	return o.done
}

// Ready 报告结果是否已就绪。
func (o *Outcome[V]) Ready() bool {
	select {
	case <-o.done:
		return true
	default:
		return false
	}
}

// Wait 等待结果就绪。ctx 结束时返回 ctx.Err()，不影响在途加载。
func (o *Outcome[V]) Wait(ctx context.Context) (V, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case <-o.done:
		return o.val, o.err
	case <-ctx.Done():
		var zero V
		return zero, ctx.Err()
	}
}

// Peek 非阻塞读取结果，ok 为 false 表示仍在加载。
func (o *Outcome[V]) Peek() (val V, ok bool, err error) {
	if !o.Ready() {
		return val, false, nil
	}
	return o.val, true, o.err
}
