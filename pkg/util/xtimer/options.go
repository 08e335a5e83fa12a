package xtimer

import "github.com/jonboulle/clockwork"

type options struct {
	clock  clockwork.Clock
	onFire func()
}

// Option 定义 Timer 的配置选项。
type Option func(*options)

func defaultOptions() *options {
	return &options{
		clock: clockwork.NewRealClock(),
	}
}

// WithClock 设置时间源。
// 传入 nil 将被忽略，继续使用真实时钟。
func WithClock(clock clockwork.Clock) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithOnFire 设置触发回调。
// 回调只会在定时器真正触发时执行一次，取消时不会执行。
func WithOnFire(fn func()) Option {
	return func(o *options) {
		o.onFire = fn
	}
}
