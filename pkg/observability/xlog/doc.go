// Package xlog 基于 log/slog 的结构化日志库。
//
// # 核心功能
//
//   - Builder 模式配置（输出目标、级别、格式、轮转）
//   - 自动从 context 注入 OpenTelemetry 的 trace_id、span_id（默认启用）
//   - 动态级别调整
//   - 全局 Logger 便利函数
//
// # 创建 Logger
//
// Builder 采用 first-error-wins：遇到第一个配置错误后，后续 Set 操作的结果
// 都会在 Build 时以该错误返回。
//
//	logger, cleanup, err := xlog.New().
//		SetLevel(xlog.LevelDebug).
//		SetFormat("json").
//		SetRotation("/var/log/app.log", xlog.WithMaxSizeMB(50)).
//		Build()
//
// # 全局 Logger
//
// [Default] 惰性初始化为 stderr、Info 级别、text 格式。库内部组件在未注入
// Logger 时使用它；服务端推荐依赖注入。
package xlog
