// Package xconf 基于 koanf 加载 YAML/JSON 配置。
//
// xconf 只负责"读文件 → 解析 → 反序列化到结构体"，不做配置热更新推送：
// 缓存等组件的配置在构造时一次性消费，之后不可变。
//
//	cfg, err := xconf.New("config.yaml")
//	var profiles map[string]xrefresh.Profile
//	err = cfg.Unmarshal("caches", &profiles)
//
// 结构体字段使用 `koanf` 标签映射；time.Duration 字段支持 "90s"、"5m" 这类字符串。
package xconf
