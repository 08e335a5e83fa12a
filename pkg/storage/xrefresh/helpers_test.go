package xrefresh

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/xrefresh/pkg/observability/xlog"
)

// recorder 记录 producer 每次被调用时的（假）时间。
type recorder struct {
	clock clockwork.Clock

	mu    sync.Mutex
	times []time.Time
}

func newRecorder(clock clockwork.Clock) *recorder {
	return &recorder{clock: clock}
}

func (r *recorder) record() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.times = append(r.times, r.clock.Now())
	return len(r.times)
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.times)
}

// gaps 返回相邻两次调用之间的间隔。
func (r *recorder) gaps() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []time.Duration
	for i := 1; i < len(r.times); i++ {
		out = append(out, r.times[i].Sub(r.times[i-1]))
	}
	return out
}

func waitCalls(t *testing.T, r *recorder, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return r.count() >= n },
		time.Second, time.Millisecond, "expected %d producer calls", n)
}

// blockUntil 等待假时钟上至少有 n 个待触发的定时器。
func blockUntil(t *testing.T, clock *clockwork.FakeClock, n int) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, clock.BlockUntilContext(ctx, n), "waiting for %d timers", n)
}

// noTimers 断言假时钟上没有待触发的定时器。
func noTimers(t *testing.T, clock *clockwork.FakeClock) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	require.Error(t, clock.BlockUntilContext(ctx, 1), "expected no pending timers")
}

func newTestCache[K, V any](t *testing.T, producer Producer[K, V], interval time.Duration, opts ...Option) *Cache[K, V] {
	t.Helper()
	opts = append([]Option{WithLogger(xlog.Discard())}, opts...)
	c, err := New(producer, interval, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

// sinkRecorder 收集 ErrorSink 的上报。
type sinkRecorder struct {
	mu   sync.Mutex
	keys []string
	errs []error
}

func (s *sinkRecorder) sink(_ context.Context, key string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys = append(s.keys, key)
	s.errs = append(s.errs, err)
}

func (s *sinkRecorder) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.errs)
}

func (s *sinkRecorder) snapshot() ([]string, []error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.keys...), append([]error(nil), s.errs...)
}

// syncBuffer 是并发安全的日志输出。
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
