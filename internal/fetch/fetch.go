package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/sony/gobreaker/v2"

	"github.com/omeyang/xrefresh/pkg/observability/xlog"
	"github.com/omeyang/xrefresh/pkg/storage/xrefresh"
)

// Document 是一次成功拉取的结果。
type Document struct {
	URL         string
	Body        []byte
	ContentType string
	// Digest 是 Body 的 xxhash64 十六进制摘要，用于判断内容是否变化。
	Digest    string
	FetchedAt time.Time
}

// Client 通过熔断器拉取远端文档。并发安全。
type Client struct {
	http        *http.Client
	breaker     *gobreaker.CircuitBreaker[*Document]
	maxBodySize int64
	userAgent   string
	logger      xlog.Logger
	now         func() time.Time
}

// New 创建 Client。
func New(opts ...Option) *Client {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	logger := o.logger
	if logger == nil {
		logger = xlog.Default()
	}
	logger = logger.With(xlog.Component("fetch"))

	threshold := o.failureThreshold
	c := &Client{
		http:        o.client,
		maxBodySize: o.maxBodySize,
		userAgent:   o.userAgent,
		logger:      logger,
		now:         time.Now,
	}
	c.breaker = gobreaker.NewCircuitBreaker[*Document](gobreaker.Settings{
		Name:    o.name,
		Timeout: o.openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsExcluded: func(err error) bool {
			return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		},
		IsSuccessful: func(err error) bool {
			// 4xx 说明上游健康，只是请求本身有问题
			var se *StatusError
			if errors.As(err, &se) {
				return !se.Temporary()
			}
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn(context.Background(), "circuit state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	})
	return c
}

// State 返回熔断器当前状态（"closed" / "half-open" / "open"）。
func (c *Client) State() string {
	return c.breaker.State().String()
}

// Fetch 拉取 url。熔断打开时返回 [ErrCircuitOpen]。
func (c *Client) Fetch(ctx context.Context, url string) (*Document, error) {
	if url == "" {
		return nil, ErrEmptyURL
	}
	doc, err := c.breaker.Execute(func() (*Document, error) {
		return c.do(ctx, url)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %w", ErrCircuitOpen, err)
	}
	return doc, err
}

// Producer 返回可直接交给 xrefresh.New 的 producer。
func (c *Client) Producer() xrefresh.Producer[string, *Document] {
	return c.Fetch
}

func (c *Client) do(ctx context.Context, url string) (*Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch: build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil, &StatusError{URL: url, Code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("fetch: read body: %w", err)
	}
	if int64(len(body)) > c.maxBodySize {
		return nil, fmt.Errorf("%w: limit %d bytes", ErrBodyTooLarge, c.maxBodySize)
	}

	return &Document{
		URL:         url,
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
		Digest:      Digest(body),
		FetchedAt:   c.now(),
	}, nil
}

// Digest 返回 data 的 xxhash64 十六进制摘要。
func Digest(data []byte) string {
	return strconv.FormatUint(xxhash.Sum64(data), 16)
}
