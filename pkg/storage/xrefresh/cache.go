package xrefresh

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/avast/retry-go/v5"
	"github.com/cespare/xxhash/v2"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/omeyang/xrefresh/pkg/observability/xlog"
	"github.com/omeyang/xrefresh/pkg/observability/xmetrics"
)

const componentName = "xrefresh"

// Producer 产生 key 对应的值。
//
// ctx 由缓存持有而不是来自调用方：调用方放弃等待不会中断加载，
// Close 会取消它，配置了 [WithLoadTimeout] 时带超时。
type Producer[K, V any] func(ctx context.Context, key K) (V, error)

type shard[K, V any] struct {
	mu      sync.Mutex
	entries map[string]*entry[K, V]
}

// Cache 是按 key 隔离的自刷新缓存。所有方法都是并发安全的。
//
// 锁顺序固定为 shard → entry。
type Cache[K, V any] struct {
	producer      Producer[K, V]
	base          time.Duration
	idleLifetime  time.Duration
	backoff       Backoff
	keyFunc       KeyFunc
	sink          ErrorSink
	reportFirst   bool
	logger        xlog.Logger
	observer      xmetrics.Observer
	clock         clockwork.Clock
	name          string
	loadTimeout   time.Duration
	retryAttempts uint
	retryDelay    time.Duration

	shards []shard[K, V]
	mask   uint64

	// ctx 是所有 producer 调用的根 context，Close 时取消
	ctx      context.Context
	cancel   context.CancelFunc
	inflight sync.WaitGroup
	closed   atomic.Bool
	counters counters
}

// New 创建缓存。interval 为基础刷新间隔，必须为正数。
func New[K, V any](producer Producer[K, V], interval time.Duration, opts ...Option) (*Cache[K, V], error) {
	if producer == nil {
		return nil, ErrNilProducer
	}
	if interval <= 0 {
		return nil, ErrInvalidInterval
	}

	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	if err := o.validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Cache[K, V]{
		producer:      producer,
		base:          interval,
		idleLifetime:  o.resolveIdle(interval),
		backoff:       o.Backoff,
		keyFunc:       o.KeyFunc,
		sink:          o.ErrorSink,
		reportFirst:   o.ReportFirstLoad,
		logger:        o.resolveLogger(),
		observer:      o.Observer,
		clock:         o.Clock,
		name:          o.Name,
		loadTimeout:   o.LoadTimeout,
		retryAttempts: o.RetryAttempts,
		retryDelay:    o.RetryDelay,
		shards:        make([]shard[K, V], o.ShardCount),
		mask:          uint64(o.ShardCount - 1),
		ctx:           ctx,
		cancel:        cancel,
	}
	for i := range c.shards {
		c.shards[i].entries = make(map[string]*entry[K, V])
	}
	return c, nil
}

// Interval 返回基础刷新间隔。
func (c *Cache[K, V]) Interval() time.Duration {
	return c.base
}

// IdleLifetime 返回实际生效的淘汰时间，[Infinite] 表示永不淘汰。
func (c *Cache[K, V]) IdleLifetime() time.Duration {
	return c.idleLifetime
}

// Invoke 返回 key 当前的结果，从不阻塞在 producer 上。
//
// key 不存在时创建 entry 并立即发起首次加载，返回的 Outcome 就是这次加载的结果；
// 并发的首次访问共享同一个 Outcome。key 已存在时返回最近一次成功的值
// （从未成功过则返回首次加载的失败），同时执行访问转换：
// 刷新间隔重置为基础间隔、过远的下次刷新提前、淘汰计时重新开始。
func (c *Cache[K, V]) Invoke(key K) *Outcome[V] {
	var zero V
	k, err := c.derive(key)
	if err != nil {
		return resolvedOutcome(zero, err)
	}

	s := c.shardFor(k)
	s.mu.Lock()
	if c.closed.Load() {
		s.mu.Unlock()
		return resolvedOutcome(zero, ErrClosed)
	}

	if e, ok := s.entries[k]; ok {
		e.mu.Lock()
		out := e.touch()
		e.mu.Unlock()
		s.mu.Unlock()
		c.counters.hits.Add(1)
		return out
	}

	e := newEntry(c, k, key)
	s.entries[k] = e
	e.mu.Lock()
	e.beginLoad()
	out := e.touch()
	e.mu.Unlock()
	s.mu.Unlock()

	c.counters.misses.Add(1)
	c.logger.Debug(c.ctx, "entry created", xlog.CacheKey(k))
	go e.load()
	return out
}

// Get 等待 key 的结果。ctx 只约束本次等待，不影响加载本身。
func (c *Cache[K, V]) Get(ctx context.Context, key K) (V, error) {
	return c.Invoke(key).Wait(ctx)
}

// Refresh 让已存在的 key 立即刷新。
// key 不存在、加载在途或已关闭时返回 false；刷新永远不会与在途加载重叠。
func (c *Cache[K, V]) Refresh(key K) bool {
	k, err := c.derive(key)
	if err != nil {
		return false
	}
	s := c.shardFor(k)
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[k]
	if !ok {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.loading || e.refresh == nil {
		return false
	}
	return e.refresh.Speedup(0)
}

// Evict 立即淘汰 key，返回 key 是否存在。
// 在途加载不会被中断，但其结果会被丢弃。
func (c *Cache[K, V]) Evict(key K) bool {
	k, err := c.derive(key)
	if err != nil {
		return false
	}
	s := c.shardFor(k)
	s.mu.Lock()
	e, ok := s.entries[k]
	if !ok {
		s.mu.Unlock()
		return false
	}
	e.mu.Lock()
	c.removeLocked(s, e, ErrEvicted)
	e.mu.Unlock()
	s.mu.Unlock()

	c.evicted(k, "manual")
	return true
}

// Warm 并发访问多个 key 并等待全部就绪，返回第一个错误。
func (c *Cache[K, V]) Warm(ctx context.Context, keys ...K) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, key := range keys {
		g.Go(func() error {
			_, err := c.Get(gctx, key)
			return err
		})
	}
	return g.Wait()
}

// Inspect 返回 key 的快照，不算作访问。
func (c *Cache[K, V]) Inspect(key K) (EntryInfo, bool) {
	k, err := c.derive(key)
	if err != nil {
		return EntryInfo{}, false
	}
	s := c.shardFor(k)
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[k]
	if !ok {
		return EntryInfo{}, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.info(), true
}

// Len 返回当前 entry 数量。
func (c *Cache[K, V]) Len() int {
	n := 0
	for i := range c.shards {
		s := &c.shards[i]
		s.mu.Lock()
		n += len(s.entries)
		s.mu.Unlock()
	}
	return n
}

// Keys 返回当前全部推导后的 key，按字典序排列。
func (c *Cache[K, V]) Keys() []string {
	var keys []string
	for i := range c.shards {
		s := &c.shards[i]
		s.mu.Lock()
		for k := range s.entries {
			keys = append(keys, k)
		}
		s.mu.Unlock()
	}
	slices.Sort(keys)
	return keys
}

// Close 关闭缓存：取消全部定时器和在途 producer 的 context，并等待在途加载返回。
// 重复调用是安全的。关闭后 Invoke 返回 [ErrClosed]。
func (c *Cache[K, V]) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	for i := range c.shards {
		s := &c.shards[i]
		s.mu.Lock()
		for k, e := range s.entries {
			e.mu.Lock()
			e.retire(ErrClosed)
			e.mu.Unlock()
			delete(s.entries, k)
		}
		s.mu.Unlock()
	}
	c.cancel()
	c.inflight.Wait()
	c.logger.Debug(context.Background(), "cache closed")
	return nil
}

func (c *Cache[K, V]) derive(key K) (string, error) {
	k, err := c.keyFunc(key)
	if err != nil {
		if errors.Is(err, ErrKey) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", ErrKey, err)
	}
	return k, nil
}

func (c *Cache[K, V]) shardFor(k string) *shard[K, V] {
	return &c.shards[xxhash.Sum64String(k)&c.mask]
}

// expire 是淘汰定时器的回调。gen 不匹配说明触发后又发生了访问，放弃本次淘汰。
func (c *Cache[K, V]) expire(e *entry[K, V], gen uint64) {
	s := c.shardFor(e.key)
	s.mu.Lock()
	e.mu.Lock()
	if e.evicted || e.idleGen != gen {
		e.mu.Unlock()
		s.mu.Unlock()
		return
	}
	c.removeLocked(s, e, ErrEvicted)
	e.mu.Unlock()
	s.mu.Unlock()

	c.evicted(e.key, "idle")
}

// removeLocked 取消 e 的定时器并从注册表移除，调用方必须持有 s.mu 和 e.mu。
func (c *Cache[K, V]) removeLocked(s *shard[K, V], e *entry[K, V], reason error) {
	e.retire(reason)
	if s.entries[e.key] == e {
		delete(s.entries, e.key)
	}
}

func (c *Cache[K, V]) evicted(key, reason string) {
	c.counters.evictions.Add(1)
	_, span := xmetrics.Start(c.ctx, c.observer, xmetrics.SpanOptions{
		Component: componentName,
		Operation: "evict",
		Kind:      xmetrics.KindInternal,
		Attrs: []xmetrics.Attr{
			xmetrics.String("cache.name", c.name),
			xmetrics.String("evict.reason", reason),
		},
	})
	span.End(xmetrics.Result{})
	c.logger.Debug(c.ctx, "entry evicted", xlog.CacheKey(key), slog.String("reason", reason))
}

func (c *Cache[K, V]) next(prev time.Duration) time.Duration {
	n := c.backoff(c.base, prev)
	if n <= 0 {
		return c.base
	}
	return n
}

func (c *Cache[K, V]) report(key string, err error) {
	c.counters.reports.Add(1)
	if c.sink != nil {
		c.sink(c.ctx, key, err)
		return
	}
	c.logger.Warn(c.ctx, "background refresh failed", xlog.CacheKey(key), xlog.Err(err))
}

// produce 执行一次加载（可能包含多次重试），返回值对外算作一次加载。
func (c *Cache[K, V]) produce(key string, arg K) (V, error) {
	ctx, cancel := c.loadContext()
	defer cancel()

	ctx, span := xmetrics.Start(ctx, c.observer, xmetrics.SpanOptions{
		Component: componentName,
		Operation: "load",
		Kind:      xmetrics.KindClient,
		Attrs:     []xmetrics.Attr{xmetrics.String("cache.name", c.name)},
	})
	start := c.clock.Now()
	val, err := c.attempt(ctx, arg)
	elapsed := c.clock.Since(start)
	span.End(xmetrics.Result{
		Err:   err,
		Attrs: []xmetrics.Attr{xmetrics.Duration("load.elapsed", elapsed)},
	})

	c.counters.loads.Add(1)
	if err != nil {
		c.counters.loadFailures.Add(1)
		c.logger.Debug(ctx, "load failed", xlog.CacheKey(key), xlog.Err(err), xlog.Duration(elapsed))
	}
	return val, err
}

func (c *Cache[K, V]) loadContext() (context.Context, context.CancelFunc) {
	if c.loadTimeout > 0 {
		return context.WithTimeout(c.ctx, c.loadTimeout)
	}
	return context.WithCancel(c.ctx)
}

func (c *Cache[K, V]) attempt(ctx context.Context, arg K) (V, error) {
	if c.retryAttempts <= 1 {
		return c.call(ctx, arg)
	}
	return retry.NewWithData[V](
		retry.Context(ctx),
		retry.Attempts(c.retryAttempts),
		retry.Delay(c.retryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return !errors.Is(err, ErrProducerPanic)
		}),
	).Do(func() (V, error) {
		return c.call(ctx, arg)
	})
}

// call 调用 producer，panic 被恢复为 ErrProducerPanic。
func (c *Cache[K, V]) call(ctx context.Context, arg K) (val V, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero V
			val = zero
			err = fmt.Errorf("%w: %v", ErrProducerPanic, r)
		}
	}()
	return c.producer(ctx, arg)
}
