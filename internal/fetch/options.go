package fetch

import (
	"net/http"
	"time"

	"github.com/omeyang/xrefresh/pkg/observability/xlog"
)

const (
	// DefaultMaxBodySize 默认响应体上限 8MB。
	DefaultMaxBodySize int64 = 8 << 20

	// DefaultFailureThreshold 默认连续失败多少次后熔断。
	DefaultFailureThreshold uint32 = 5

	// DefaultOpenTimeout 默认熔断打开持续时间。
	DefaultOpenTimeout = 30 * time.Second

	// DefaultRequestTimeout 默认 HTTP 客户端超时。
	DefaultRequestTimeout = 10 * time.Second

	// DefaultUserAgent 默认 User-Agent。
	DefaultUserAgent = "xrefreshctl"
)

type options struct {
	client           *http.Client
	maxBodySize      int64
	failureThreshold uint32
	openTimeout      time.Duration
	userAgent        string
	name             string
	logger           xlog.Logger
}

// Option 定义 Client 的配置选项。
type Option func(*options)

func defaultOptions() *options {
	return &options{
		client:           &http.Client{Timeout: DefaultRequestTimeout},
		maxBodySize:      DefaultMaxBodySize,
		failureThreshold: DefaultFailureThreshold,
		openTimeout:      DefaultOpenTimeout,
		userAgent:        DefaultUserAgent,
		name:             "fetch",
	}
}

// WithHTTPClient 设置底层 HTTP 客户端。nil 被忽略。
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		if client != nil {
			o.client = client
		}
	}
}

// WithMaxBodySize 设置响应体上限，<= 0 被忽略。
func WithMaxBodySize(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.maxBodySize = n
		}
	}
}

// WithFailureThreshold 设置连续失败多少次后熔断，0 被忽略。
func WithFailureThreshold(n uint32) Option {
	return func(o *options) {
		if n > 0 {
			o.failureThreshold = n
		}
	}
}

// WithOpenTimeout 设置熔断打开后多久进入半开状态，<= 0 被忽略。
func WithOpenTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.openTimeout = d
		}
	}
}

// WithUserAgent 设置 User-Agent，空字符串被忽略。
func WithUserAgent(ua string) Option {
	return func(o *options) {
		if ua != "" {
			o.userAgent = ua
		}
	}
}

// WithName 设置熔断器名称，用于日志。
func WithName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.name = name
		}
	}
}

// WithLogger 设置日志记录器，用于记录熔断状态变化。
func WithLogger(logger xlog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}
