package xrefresh

import (
	"math"
	"time"
)

// Backoff 根据基础间隔和上一次间隔计算成功刷新后的下一次间隔。
type Backoff func(base, prev time.Duration) time.Duration

// Additive 返回 prev + base 的线性增长策略（默认策略），不设上限。
// 结果溢出时饱和为最大的 time.Duration。
func Additive() Backoff {
	return func(base, prev time.Duration) time.Duration {
		if prev > time.Duration(math.MaxInt64)-base {
			return time.Duration(math.MaxInt64)
		}
		return prev + base
	}
}

// Constant 返回始终为 base 的固定间隔策略，适合读多、不允许节奏漂移的共享数据。
func Constant() Backoff {
	return func(base, _ time.Duration) time.Duration {
		return base
	}
}

// Capped 用 max 限制 b 的结果。max <= 0 时不做限制。
// 结果不会小于 base。
func Capped(b Backoff, max time.Duration) Backoff {
	if b == nil {
		b = Additive()
	}
	if max <= 0 {
		return b
	}
	return func(base, prev time.Duration) time.Duration {
		next := b(base, prev)
		if next > max {
			next = max
		}
		if next < base {
			next = base
		}
		return next
	}
}
