package xlog

import "errors"

var (
	// ErrUnknownLevel 表示无法识别的日志级别字符串。
	ErrUnknownLevel = errors.New("xlog: unknown level")

	// ErrUnknownFormat 表示无法识别的输出格式。
	ErrUnknownFormat = errors.New("xlog: unknown format")

	// ErrEmptyFilename 表示 SetRotation 传入了空文件名。
	ErrEmptyFilename = errors.New("xlog: empty rotation filename")

	// ErrNilOutput 表示 SetOutput 传入了 nil writer。
	ErrNilOutput = errors.New("xlog: nil output")
)
