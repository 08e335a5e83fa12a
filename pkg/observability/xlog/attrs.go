package xlog

import (
	"log/slog"
	"time"
)

// 常用属性 key。
const (
	KeyError     = "error"
	KeyDuration  = "duration"
	KeyComponent = "component"
	KeyCacheKey  = "cache_key"
	KeyInterval  = "interval"
	KeyAttempt   = "attempt"
)

// Err 创建错误属性，err 为 nil 时返回空属性（slog 会忽略）。
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// Duration 创建耗时属性，输出 "1.5s" 这类可读格式。
func Duration(d time.Duration) slog.Attr {
	return slog.String(KeyDuration, d.String())
}

// Component 创建组件名属性。
func Component(name string) slog.Attr {
	return slog.String(KeyComponent, name)
}

// CacheKey 创建缓存 key 属性。
func CacheKey(key string) slog.Attr {
	return slog.String(KeyCacheKey, key)
}

// Interval 创建刷新间隔属性。
func Interval(d time.Duration) slog.Attr {
	return slog.String(KeyInterval, d.String())
}

// Attempt 创建尝试次数属性。
func Attempt(n int) slog.Attr {
	return slog.Int(KeyAttempt, n)
}
