package xrefresh

import (
	"fmt"
	"strings"
	"time"
)

// Backoff 策略名称，用于 [Profile]。
const (
	BackoffAdditive = "additive"
	BackoffConstant = "constant"
)

// Profile 是可从配置文件加载的缓存参数。
//
// 典型的两种配置：
//
//	# 全局共享数据：固定节奏，永不淘汰
//	global:
//	  interval: 1m
//	  backoff: constant
//	  idle_lifetime: infinite
//
//	# 按分组隔离的数据：线性退避，默认淘汰
//	group:
//	  interval: 1m
type Profile struct {
	// Interval 基础刷新间隔，必须为正数。
	Interval time.Duration `koanf:"interval" json:"interval" yaml:"interval"`
	// Backoff 为 "additive"（默认）或 "constant"。
	Backoff string `koanf:"backoff" json:"backoff" yaml:"backoff"`
	// MaxInterval 大于 0 时限制刷新间隔的上限。
	MaxInterval time.Duration `koanf:"max_interval" json:"max_interval" yaml:"max_interval"`
	// IdleLifetime 为空表示默认值，"infinite" 表示永不淘汰，其余按 time.ParseDuration 解析。
	IdleLifetime string `koanf:"idle_lifetime" json:"idle_lifetime" yaml:"idle_lifetime"`
	// LoadTimeout 单次加载超时，0 表示不限制。
	LoadTimeout time.Duration `koanf:"load_timeout" json:"load_timeout" yaml:"load_timeout"`
}

// Options 把 Profile 转换为 [New] 的参数。
func (p Profile) Options() (time.Duration, []Option, error) {
	if p.Interval <= 0 {
		return 0, nil, ErrInvalidInterval
	}

	var backoff Backoff
	switch strings.ToLower(strings.TrimSpace(p.Backoff)) {
	case "", BackoffAdditive:
		backoff = Additive()
	case BackoffConstant:
		backoff = Constant()
	default:
		return 0, nil, fmt.Errorf("%w: unknown backoff %q", ErrInvalidConfig, p.Backoff)
	}
	if p.MaxInterval < 0 {
		return 0, nil, fmt.Errorf("%w: max interval must not be negative", ErrInvalidConfig)
	}
	if p.MaxInterval > 0 {
		backoff = Capped(backoff, p.MaxInterval)
	}

	idle, err := parseIdleLifetime(p.IdleLifetime)
	if err != nil {
		return 0, nil, err
	}

	opts := []Option{
		WithBackoff(backoff),
		WithIdleLifetime(idle),
		WithLoadTimeout(p.LoadTimeout),
	}
	return p.Interval, opts, nil
}

// NewFromProfile 使用 Profile 创建缓存，opts 追加在 Profile 生成的选项之后。
func NewFromProfile[K, V any](producer Producer[K, V], p Profile, opts ...Option) (*Cache[K, V], error) {
	interval, base, err := p.Options()
	if err != nil {
		return nil, err
	}
	return New(producer, interval, append(base, opts...)...)
}

func parseIdleLifetime(s string) (time.Duration, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "":
		return 0, nil
	case "infinite", "never", "inf":
		return Infinite, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%w: idle lifetime %q: %w", ErrInvalidConfig, s, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: idle lifetime %q must be positive", ErrInvalidConfig, s)
	}
	return d, nil
}
