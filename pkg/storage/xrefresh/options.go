package xrefresh

import (
	"context"
	"fmt"
	"log/slog"
	"math/bits"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/omeyang/xrefresh/pkg/observability/xlog"
	"github.com/omeyang/xrefresh/pkg/observability/xmetrics"
)

const (
	// Infinite 作为 IdleLifetime 表示永不淘汰。
	Infinite time.Duration = -1

	// DefaultIdleFactor 是未指定 IdleLifetime 时相对基础间隔的倍数。
	DefaultIdleFactor = 10

	// DefaultShardCount 默认注册表分片数。
	DefaultShardCount = 32

	// MaxShardCount 分片数上限。
	MaxShardCount = 1 << 16

	// DefaultName 默认缓存名称，用于日志和指标。
	DefaultName = "default"
)

// ErrorSink 接收后台刷新失败。key 为推导后的字符串 key，err 为 [*ProducerError]。
//
// 首次加载失败会直接交给调用方，默认不进入 ErrorSink（见 [WithFirstLoadReports]）；
// 此后每一次失败的刷新恰好上报一次。
// ErrorSink 在刷新 goroutine 中同步调用，不应长时间阻塞。
type ErrorSink func(ctx context.Context, key string, err error)

// Options 缓存配置。构造时一次性读取，之后不可变。
type Options struct {
	Backoff         Backoff
	IdleLifetime    time.Duration
	ErrorSink       ErrorSink
	ReportFirstLoad bool
	Logger          xlog.Logger
	Observer        xmetrics.Observer
	Clock           clockwork.Clock
	LoadTimeout     time.Duration
	RetryAttempts   uint
	RetryDelay      time.Duration
	KeyFunc         KeyFunc
	ShardCount      int
	Name            string
}

// Option 定义缓存的配置选项。
type Option func(*Options)

func defaultOptions() *Options {
	return &Options{
		Backoff:    Additive(),
		Observer:   xmetrics.NoopObserver{},
		Clock:      clockwork.NewRealClock(),
		KeyFunc:    DefaultKey,
		ShardCount: DefaultShardCount,
		Name:       DefaultName,
	}
}

// WithBackoff 设置成功刷新后的间隔增长策略。nil 被忽略。
func WithBackoff(b Backoff) Option {
	return func(o *Options) {
		if b != nil {
			o.Backoff = b
		}
	}
}

// WithIdleLifetime 设置无访问淘汰时间。
// 0 表示使用默认值（基础间隔的 10 倍），负数（如 [Infinite]）表示永不淘汰。
func WithIdleLifetime(d time.Duration) Option {
	return func(o *Options) {
		o.IdleLifetime = d
	}
}

// WithErrorSink 设置后台失败的接收者。
// 不设置时失败以 Warn 级别写入日志。
func WithErrorSink(sink ErrorSink) Option {
	return func(o *Options) {
		o.ErrorSink = sink
	}
}

// WithFirstLoadReports 让首次加载的失败也上报给 ErrorSink（或默认日志），
// 使每一次失败的加载都恰好上报一次。调用方仍会从 Outcome 拿到同一个错误。
func WithFirstLoadReports() Option {
	return func(o *Options) {
		o.ReportFirstLoad = true
	}
}

// WithLogger 设置日志记录器。nil 被忽略。
func WithLogger(logger xlog.Logger) Option {
	return func(o *Options) {
		if logger != nil {
			o.Logger = logger
		}
	}
}

// WithObserver 设置统一观测接口（用于 load / evict 的指标与追踪）。
func WithObserver(observer xmetrics.Observer) Option {
	return func(o *Options) {
		if observer != nil {
			o.Observer = observer
		}
	}
}

// WithClock 设置时间源，测试中传入 clockwork.NewFakeClock()。nil 被忽略。
func WithClock(clock clockwork.Clock) Option {
	return func(o *Options) {
		if clock != nil {
			o.Clock = clock
		}
	}
}

// WithLoadTimeout 设置单次加载的超时时间。
// producer 的 context 与调用方无关，这是唯一能约束 producer 耗时的方式。0 表示不限制。
func WithLoadTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.LoadTimeout = d
	}
}

// WithRetry 设置单次加载内的重试。attempts 为总尝试次数（含第一次），
// delay 为两次尝试之间的固定等待。
// 整个重试过程对外算作一次加载：全部失败时 ErrorSink 只收到一次上报。
func WithRetry(attempts uint, delay time.Duration) Option {
	return func(o *Options) {
		o.RetryAttempts = attempts
		o.RetryDelay = delay
	}
}

// WithKeyFunc 设置 key 推导函数。nil 被忽略。
func WithKeyFunc(fn KeyFunc) Option {
	return func(o *Options) {
		if fn != nil {
			o.KeyFunc = fn
		}
	}
}

// WithShardCount 设置注册表分片数，必须是 2 的幂且不超过 [MaxShardCount]。
func WithShardCount(n int) Option {
	return func(o *Options) {
		o.ShardCount = n
	}
}

// WithName 设置缓存名称。空字符串被忽略。
func WithName(name string) Option {
	return func(o *Options) {
		if name != "" {
			o.Name = name
		}
	}
}

func (o *Options) validate() error {
	if o.LoadTimeout < 0 {
		return fmt.Errorf("%w: load timeout must not be negative", ErrInvalidConfig)
	}
	if o.RetryDelay < 0 {
		return fmt.Errorf("%w: retry delay must not be negative", ErrInvalidConfig)
	}
	if o.ShardCount <= 0 || o.ShardCount > MaxShardCount || bits.OnesCount(uint(o.ShardCount)) != 1 {
		return fmt.Errorf("%w: shard count %d must be a power of two in [1, %d]",
			ErrInvalidConfig, o.ShardCount, MaxShardCount)
	}
	return nil
}

// resolveIdle 返回实际生效的淘汰时间，负数表示永不淘汰。
func (o *Options) resolveIdle(base time.Duration) time.Duration {
	switch {
	case o.IdleLifetime < 0:
		return Infinite
	case o.IdleLifetime > 0:
		return o.IdleLifetime
	}
	if base > time.Duration(1<<63-1)/DefaultIdleFactor {
		return Infinite
	}
	return base * DefaultIdleFactor
}

func (o *Options) resolveLogger() xlog.Logger {
	logger := o.Logger
	if logger == nil {
		logger = xlog.Default()
	}
	return logger.With(xlog.Component("xrefresh"), slog.String("cache", o.Name))
}
