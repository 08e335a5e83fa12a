package xtimer_test

import (
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/omeyang/xrefresh/pkg/util/xtimer"
)

func ExampleTimer_Speedup() {
	clock := clockwork.NewFakeClock()
	start := clock.Now()

	tm := xtimer.New(10*time.Minute, xtimer.WithClock(clock))

	fmt.Println(tm.Speedup(time.Minute))     // 提前到 1 分钟后
	fmt.Println(tm.Speedup(5 * time.Minute)) // 更晚的请求被忽略
	fmt.Println(tm.Deadline().Sub(start))

	clock.Advance(time.Minute)
	<-tm.Done()
	fmt.Println(tm.State())
	// Output:
	// true
	// false
	// 1m0s
	// fired
}
