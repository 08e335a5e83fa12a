package xrefresh_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/omeyang/xrefresh/pkg/observability/xlog"
	"github.com/omeyang/xrefresh/pkg/storage/xrefresh"
)

func ExampleNew() {
	cache, err := xrefresh.New(func(_ context.Context, group string) (string, error) {
		return strings.ToUpper(group), nil
	}, time.Minute, xrefresh.WithLogger(xlog.Discard()))
	if err != nil {
		fmt.Println(err)
		return
	}
	defer func() { _ = cache.Close() }()

	v, err := cache.Get(context.Background(), "kb-11")
	fmt.Println(v, err)
	fmt.Println(cache.Len())
	// Output:
	// KB-11 <nil>
	// 1
}

func ExampleCache_Invoke() {
	cache, err := xrefresh.New(func(_ context.Context, day int) (string, error) {
		return time.Weekday(day).String(), nil
	}, time.Minute, xrefresh.WithIdleLifetime(xrefresh.Infinite), xrefresh.WithLogger(xlog.Discard()))
	if err != nil {
		fmt.Println(err)
		return
	}
	defer func() { _ = cache.Close() }()

	outcome := cache.Invoke(1)
	v, err := outcome.Wait(context.Background())
	fmt.Println(v, err)

	// 已就绪的 entry 直接返回同一个结果，不再调用 producer
	v, ok, err := cache.Invoke(1).Peek()
	fmt.Println(v, ok, err)
	// Output:
	// Monday <nil>
	// Monday true <nil>
}

func ExampleProducerError() {
	errUpstream := errors.New("upstream unavailable")
	cache, err := xrefresh.New(func(context.Context, string) (int, error) {
		return 0, errUpstream
	}, time.Minute, xrefresh.WithLogger(xlog.Discard()))
	if err != nil {
		fmt.Println(err)
		return
	}
	defer func() { _ = cache.Close() }()

	_, err = cache.Get(context.Background(), "schedule")
	var perr *xrefresh.ProducerError
	fmt.Println(errors.As(err, &perr), perr.Key)
	fmt.Println(errors.Is(err, errUpstream))
	// Output:
	// true s:schedule
	// true
}

func ExampleProfile() {
	interval, opts, err := xrefresh.Profile{
		Interval:     4 * time.Minute,
		Backoff:      xrefresh.BackoffConstant,
		IdleLifetime: "infinite",
	}.Options()
	if err != nil {
		fmt.Println(err)
		return
	}

	cache, err := xrefresh.New(func(context.Context, string) (int, error) {
		return 1, nil
	}, interval, append(opts, xrefresh.WithLogger(xlog.Discard()))...)
	if err != nil {
		fmt.Println(err)
		return
	}
	defer func() { _ = cache.Close() }()

	fmt.Println(cache.Interval(), cache.IdleLifetime() == xrefresh.Infinite)
	// Output:
	// 4m0s true
}
