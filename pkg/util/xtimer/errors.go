package xtimer

import "errors"

// ErrCanceled 是 Cancel(nil) 时使用的默认取消原因。
var ErrCanceled = errors.New("xtimer: canceled")
