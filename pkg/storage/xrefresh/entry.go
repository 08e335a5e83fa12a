package xrefresh

import (
	"strconv"
	"sync"
	"time"

	"github.com/omeyang/xrefresh/pkg/util/xtimer"
)

// State 表示 entry 的状态。
type State int32

const (
	// StateLoading 首次加载在途，尚无结果。
	StateLoading State = iota
	// StateReady 至少成功过一次，持有最近一次成功的值。
	StateReady
	// StateFailed 从未成功过，持有首次加载的失败。
	StateFailed
)

// String 返回 State 的可读名称。
func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "State(" + strconv.Itoa(int(s)) + ")"
	}
}

// EntryInfo 是某个 entry 在某一时刻的快照。
type EntryInfo struct {
	Key      string
	State    State
	Interval time.Duration
	// Loading 表示有 producer 调用在途（首次加载或后台刷新）。
	Loading bool
	// NextRefresh 为零值表示当前没有待触发的刷新（加载在途）。
	NextRefresh time.Time
	// IdleDeadline 为零值表示永不淘汰。
	IdleDeadline time.Time
	Loads        uint64
	Failures     uint64
}

type entry[K, V any] struct {
	cache *Cache[K, V]
	key   string
	arg   K

	mu       sync.Mutex
	state    State
	outcome  *Outcome[V]
	interval time.Duration
	loading  bool
	refresh  *xtimer.Timer
	idle     *xtimer.Timer
	// idleGen 在每次换新淘汰定时器时递增，
	// 与访问竞争失败的旧淘汰回调据此识别并放弃。
	idleGen  uint64
	evicted  bool
	loads    uint64
	failures uint64
}

func newEntry[K, V any](c *Cache[K, V], key string, arg K) *entry[K, V] {
	return &entry[K, V]{
		cache:    c,
		key:      key,
		arg:      arg,
		state:    StateLoading,
		outcome:  newOutcome[V](),
		interval: c.base,
	}
}

// touch 执行访问转换并返回当前结果，调用方必须持有 e.mu。
func (e *entry[K, V]) touch() *Outcome[V] {
	c := e.cache
	e.interval = c.base
	if e.refresh != nil {
		e.refresh.Speedup(c.base)
	}
	if c.idleLifetime >= 0 {
		if e.idle != nil && e.idle.Reset(c.idleLifetime) {
			return e.outcome
		}
		// 旧定时器已触发：换新定时器并递增 idleGen，在途的 expire 据此放弃
		e.idleGen++
		gen := e.idleGen
		e.idle = xtimer.New(c.idleLifetime,
			xtimer.WithClock(c.clock),
			xtimer.WithOnFire(func() { c.expire(e, gen) }),
		)
	}
	return e.outcome
}

// beginLoad 标记一次加载开始，调用方必须持有 e.mu。
// 已淘汰的 entry 返回 false，不再发起加载。
func (e *entry[K, V]) beginLoad() bool {
	if e.evicted {
		return false
	}
	e.loading = true
	e.cache.inflight.Add(1)
	return true
}

// onRefresh 是刷新定时器的回调，运行在定时器自己的 goroutine 中。
func (e *entry[K, V]) onRefresh() {
	e.mu.Lock()
	ok := e.beginLoad()
	e.mu.Unlock()
	if ok {
		e.load()
	}
}

func (e *entry[K, V]) load() {
	defer e.cache.inflight.Done()
	val, err := e.cache.produce(e.key, e.arg)
	e.complete(val, err)
}

// complete 应用一次加载的结果并布置下一次刷新。
func (e *entry[K, V]) complete(val V, err error) {
	c := e.cache

	e.mu.Lock()
	e.loading = false
	e.loads++
	if err != nil {
		e.failures++
		err = &ProducerError{Key: e.key, Err: err}
	}

	if e.evicted {
		// 首次加载的等待者仍需拿到结果，其余结果丢弃
		if e.state == StateLoading {
			e.outcome.resolve(val, err)
		}
		e.mu.Unlock()
		return
	}

	var report error
	delay := c.base
	switch {
	case err == nil:
		if e.state == StateLoading {
			e.outcome.resolve(val, nil)
		} else {
			e.outcome = resolvedOutcome(val, nil)
		}
		e.state = StateReady
		delay = e.interval
		e.interval = c.next(e.interval)
	case e.state == StateLoading:
		var zero V
		e.outcome.resolve(zero, err)
		e.state = StateFailed
		if c.reportFirst {
			report = err
		}
	default:
		report = err
	}
	e.refresh = xtimer.New(delay,
		xtimer.WithClock(c.clock),
		xtimer.WithOnFire(e.onRefresh),
	)
	e.mu.Unlock()

	if report != nil {
		c.report(e.key, report)
	}
}

// retire 取消全部定时器并标记为已淘汰，调用方必须持有 e.mu。
// 返回 false 表示已经淘汰过。
func (e *entry[K, V]) retire(reason error) bool {
	if e.evicted {
		return false
	}
	e.evicted = true
	if e.refresh != nil {
		e.refresh.Cancel(reason)
	}
	if e.idle != nil {
		e.idle.Cancel(reason)
	}
	return true
}

// info 返回快照，调用方必须持有 e.mu。
func (e *entry[K, V]) info() EntryInfo {
	info := EntryInfo{
		Key:      e.key,
		State:    e.state,
		Interval: e.interval,
		Loading:  e.loading,
		Loads:    e.loads,
		Failures: e.failures,
	}
	if e.refresh != nil && e.refresh.State() == xtimer.StatePending {
		info.NextRefresh = e.refresh.Deadline()
	}
	if e.idle != nil && e.idle.State() == xtimer.StatePending {
		info.IdleDeadline = e.idle.Deadline()
	}
	return info
}
