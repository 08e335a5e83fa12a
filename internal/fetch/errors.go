package fetch

import (
	"errors"
	"strconv"
)

var (
	// ErrBodyTooLarge 表示响应体超过了限制。
	ErrBodyTooLarge = errors.New("fetch: response body too large")

	// ErrCircuitOpen 表示熔断器处于打开状态，请求被短路。
	ErrCircuitOpen = errors.New("fetch: circuit open")

	// ErrEmptyURL 表示 URL 为空。
	ErrEmptyURL = errors.New("fetch: empty url")
)

// StatusError 表示上游返回了非 2xx 状态码。
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return "fetch: " + strconv.Quote(e.URL) + ": unexpected status " + strconv.Itoa(e.Code)
}

// Temporary 报告该状态码是否值得稍后重试（5xx 和 429）。
func (e *StatusError) Temporary() bool {
	return e.Code >= 500 || e.Code == 429
}
