package xmetrics

import "time"

func String(key, value string) Attr { return Attr{Key: key, Value: value} }

func Bool(key string, value bool) Attr { return Attr{Key: key, Value: value} }

func Int(key string, value int) Attr { return Attr{Key: key, Value: value} }

func Int64(key string, value int64) Attr { return Attr{Key: key, Value: value} }

// Duration 创建时间间隔属性，OTel 中以纳秒整数记录。
func Duration(key string, value time.Duration) Attr { return Attr{Key: key, Value: value} }
