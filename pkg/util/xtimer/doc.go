// Package xtimer 提供可取消、可提前（speedup）的一次性延迟信号。
//
// # 核心语义
//
//   - [New] 创建一个在 d 之后触发的 [Timer]，触发后 Done() 关闭
//   - [Timer.Speedup] 只会把触发时间提前到 min(当前触发时间, now+d)，永不推迟
//   - [Timer.Reset] 把触发时间改为 now+d，唯一可以推迟触发的操作
//   - [Timer.Cancel] 取消尚未触发的定时器，Err() 返回取消原因
//   - 触发与取消互斥：已取消的定时器永不触发，已触发的定时器不可再取消或提前
//
// # 时间源
//
// 默认使用 [clockwork.NewRealClock]。测试中通过 [WithClock] 注入
// [clockwork.FakeClock]，配合 Advance 精确推进时间。
//
// # 回调
//
// [WithOnFire] 注册的回调在定时器触发后、于底层时钟的回调 goroutine 中执行，
// 执行时不持有任何内部锁，回调内可以安全地调用同一个 Timer 的方法。
package xtimer
