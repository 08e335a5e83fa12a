// Package xrefresh 提供按 key 隔离、后台自刷新的 producer 结果缓存。
//
// # 核心语义
//
// 每个 key 对应一个 entry：首次访问时立即调用 producer 加载；之后 entry 按
// Backoff 计算出的间隔在后台重新调用 producer，调用方读到的总是最近一次成功的值，
// 不会因为刷新而阻塞。一段时间（IdleLifetime）无人访问的 entry 会被淘汰，
// 下一次访问重新从首次加载开始。
//
//   - 同一 key 任意时刻最多一个 producer 调用在途，并发的首次访问共享同一个 [Outcome]
//   - 每次访问把刷新间隔重置为基础间隔，并把过远的下次刷新提前到基础间隔之内（只提前，不推迟）
//   - 首次加载失败会返回给等待的调用方；一旦成功过，后续刷新失败只上报给 [ErrorSink]，
//     调用方继续拿到上一次的成功值；[WithFirstLoadReports] 让首次失败也上报
//   - 默认 key 推导（[DefaultKey]）拒绝含未导出字段的结构体，这类 key 需要 [WithKeyFunc]
//   - 刷新失败不推进 Backoff，下一次尝试固定在基础间隔之后
//
// # 快速开始
//
//	cache, err := xrefresh.New(func(ctx context.Context, group string) (*Schedule, error) {
//		return fetchSchedule(ctx, group)
//	}, time.Minute)
//	defer cache.Close()
//
//	schedule, err := cache.Get(ctx, "KB-11")
//
// # 刷新节奏
//
// 默认 [Additive]：成功刷新的间隔依次为 base、2×base、3×base…，无上限；
// 任何一次访问都会把它拉回 base。需要固定节奏时使用 [Constant]，需要上限时用 [Capped] 包装。
//
// # 淘汰
//
// 默认 IdleLifetime 为 10×base；[WithIdleLifetime]([Infinite]) 关闭淘汰。
// 淘汰在同一把锁下取消刷新与淘汰两个定时器并从注册表移除，被淘汰的 entry 不会再触发任何定时器。
//
// # 生命周期
//
// [Cache.Close] 取消全部定时器、取消在途 producer 的 context，并等待在途加载返回。
package xrefresh
