// Package fetch 提供拉取远端文档的 HTTP producer，供 xrefresh 缓存使用。
//
// 请求经过熔断器（sony/gobreaker）：上游连续失败达到阈值后短路，
// 刷新直接失败并由缓存继续提供上一次的成功值，直到熔断器进入半开状态再试探。
// 调用方取消（context 取消或超时）不计入熔断统计。
package fetch
