// Package util 提供通用工具相关的子包。
//
// 子包列表：
//   - xtimer: 可提前触发（Speedup）与取消的一次性定时器
package util
