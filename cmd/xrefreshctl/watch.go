package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/omeyang/xrefresh/internal/fetch"
	"github.com/omeyang/xrefresh/pkg/lifecycle/xrun"
	"github.com/omeyang/xrefresh/pkg/observability/xlog"
	"github.com/omeyang/xrefresh/pkg/storage/xrefresh"
)

var errWatchDone = errors.New("watch: done")

// watch 预热全部 URL，之后每个 poll 周期打印一次状态。
// count > 0 时打印 count 轮后返回；ctx 结束或收到退出信号时返回 nil。
func watch(ctx context.Context, cache *xrefresh.Cache[string, *fetch.Document], urls []string,
	poll time.Duration, count int, w io.Writer, logger xlog.Logger) error {
	if err := cache.Warm(ctx, urls...); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		// 首次拉取失败的 URL 仍会按基础间隔重试，状态表里可以看到
		logger.Warn(ctx, "initial fetch failed", xlog.Err(err))
	}

	round := 0
	err := xrun.RunWithOptions(ctx, []xrun.Option{xrun.WithName("watch"), xrun.WithLogger(logger)},
		xrun.Ticker(poll, true, func(context.Context) error {
			if err := printStatus(w, cache, urls); err != nil {
				return err
			}
			round++
			if count > 0 && round >= count {
				return errWatchDone
			}
			return nil
		}),
	)
	if err == nil || errors.Is(err, errWatchDone) || errors.Is(err, xrun.ErrSignal) {
		return nil
	}
	return err
}

// printStatus 打印每个 URL 的当前状态。读取本身是一次访问，会把刷新间隔拉回基础间隔。
func printStatus(w io.Writer, cache *xrefresh.Cache[string, *fetch.Document], urls []string) error {
	tw := newTable(w, "URL", "STATE", "INTERVAL", "NEXT", "DIGEST", "BYTES", "ERROR")
	for _, url := range urls {
		doc, ready, err := cache.Invoke(url).Peek()
		info, ok := cache.Inspect(url)
		if !ok {
			tw.row(url, "evicted", "-", "-", "-", "-", "-")
			continue
		}

		digest, size := "-", "-"
		if ready && err == nil && doc != nil {
			digest = doc.Digest
			size = strconv.Itoa(len(doc.Body))
		}
		errText := "-"
		if err != nil {
			errText = oneLine(err)
		}
		tw.row(url, info.State.String(), info.Interval.String(), untilOrDash(info.NextRefresh),
			digest, size, errText)
	}
	return tw.flush()
}

func untilOrDash(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return time.Until(t).Round(time.Second).String()
}

func oneLine(err error) string {
	var se *fetch.StatusError
	if errors.As(err, &se) {
		return "status " + strconv.Itoa(se.Code)
	}
	return strings.ReplaceAll(err.Error(), "\n", " ")
}

// table 是对 tabwriter 的简单封装。
type table struct {
	tw  *tabwriter.Writer
	err error
}

func newTable(w io.Writer, header ...string) *table {
	t := &table{tw: tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)}
	t.row(header...)
	return t
}

func (t *table) row(cols ...string) {
	if t.err != nil {
		return
	}
	_, t.err = fmt.Fprintln(t.tw, strings.Join(cols, "\t"))
}

func (t *table) flush() error {
	if t.err != nil {
		return t.err
	}
	return t.tw.Flush()
}
