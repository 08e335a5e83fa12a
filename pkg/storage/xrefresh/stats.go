package xrefresh

import "sync/atomic"

// Stats 缓存运行统计。
type Stats struct {
	// Entries 当前 entry 数量。
	Entries int
	// Hits 命中已存在 entry 的访问次数。
	Hits uint64
	// Misses 创建新 entry 的访问次数。
	Misses uint64
	// Loads 完成的加载次数（含失败），一次加载内的重试不单独计数。
	Loads uint64
	// LoadFailures 失败的加载次数。
	LoadFailures uint64
	// Reports 交给 ErrorSink 的失败次数。
	Reports uint64
	// Evictions 淘汰次数（空闲淘汰与手动淘汰）。
	Evictions uint64
}

// HitRatio 返回命中率，无访问时为 0。
func (s Stats) HitRatio() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

type counters struct {
	hits         atomic.Uint64
	misses       atomic.Uint64
	loads        atomic.Uint64
	loadFailures atomic.Uint64
	reports      atomic.Uint64
	evictions    atomic.Uint64
}

// Stats 返回当前统计快照。
func (c *Cache[K, V]) Stats() Stats {
	return Stats{
		Entries:      c.Len(),
		Hits:         c.counters.hits.Load(),
		Misses:       c.counters.misses.Load(),
		Loads:        c.counters.loads.Load(),
		LoadFailures: c.counters.loadFailures.Load(),
		Reports:      c.counters.reports.Load(),
		Evictions:    c.counters.evictions.Load(),
	}
}
