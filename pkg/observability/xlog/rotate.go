package xlog

import "gopkg.in/natefinch/lumberjack.v2"

// RotationOption 定义文件轮转配置。
type RotationOption func(*lumberjack.Logger)

// WithMaxSizeMB 设置单个日志文件的最大大小（MB），n <= 0 时忽略。
func WithMaxSizeMB(n int) RotationOption {
	return func(l *lumberjack.Logger) {
		if n > 0 {
			l.MaxSize = n
		}
	}
}

// WithMaxBackups 设置保留的旧文件数量，n < 0 时忽略。
func WithMaxBackups(n int) RotationOption {
	return func(l *lumberjack.Logger) {
		if n >= 0 {
			l.MaxBackups = n
		}
	}
}

// WithMaxAgeDays 设置旧文件保留天数，n < 0 时忽略。
func WithMaxAgeDays(n int) RotationOption {
	return func(l *lumberjack.Logger) {
		if n >= 0 {
			l.MaxAge = n
		}
	}
}

// WithCompress 设置是否 gzip 压缩旧文件。
func WithCompress(enable bool) RotationOption {
	return func(l *lumberjack.Logger) {
		l.Compress = enable
	}
}

func newRotator(filename string, opts ...RotationOption) *lumberjack.Logger {
	l := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    100,
		MaxBackups: 7,
		MaxAge:     30,
		LocalTime:  true,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}
