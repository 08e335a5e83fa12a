// Package xrun 协调一组长时间运行的服务。
//
// Group 基于 errgroup：任一服务返回错误时其余服务随之取消。
// Run/RunWithOptions 在此之上自动监听系统信号，收到信号后
// 取消全部服务并返回 *SignalError。
//
//	err := xrun.RunWithOptions(ctx, []xrun.Option{xrun.WithName("watch")},
//	    xrun.Ticker(time.Second, true, poll),
//	)
//	if errors.Is(err, xrun.ErrSignal) {
//	    // 正常退出
//	}
package xrun
