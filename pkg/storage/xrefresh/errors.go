package xrefresh

import (
	"errors"
	"strconv"
)

var (
	// ErrNilProducer 表示 producer 为 nil。
	ErrNilProducer = errors.New("xrefresh: nil producer")

	// ErrInvalidInterval 表示基础刷新间隔不是正数。
	ErrInvalidInterval = errors.New("xrefresh: interval must be positive")

	// ErrInvalidConfig 表示配置参数无效。
	ErrInvalidConfig = errors.New("xrefresh: invalid configuration")

	// ErrClosed 表示缓存已关闭。
	ErrClosed = errors.New("xrefresh: cache closed")

	// ErrKey 表示无法从参数推导出缓存 key。
	ErrKey = errors.New("xrefresh: cannot derive key")

	// ErrProducerPanic 表示 producer 发生了 panic，已被恢复为错误。
	ErrProducerPanic = errors.New("xrefresh: producer panicked")

	// ErrEvicted 是 entry 被淘汰时定时器的取消原因。
	ErrEvicted = errors.New("xrefresh: entry evicted")
)

// ProducerError 包装 producer 返回的错误。
// Unwrap 返回原始错误，errors.Is / errors.As 可以穿透。
type ProducerError struct {
	Key string
	Err error
}

func (e *ProducerError) Error() string {
	if e.Err == nil {
		return "xrefresh: producer failed for key " + strconv.Quote(e.Key)
	}
	return "xrefresh: producer failed for key " + strconv.Quote(e.Key) + ": " + e.Err.Error()
}

func (e *ProducerError) Unwrap() error {
	return e.Err
}
