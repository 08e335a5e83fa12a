// Package storage 提供数据存储相关的子包。
//
// 子包列表：
//   - xrefresh: 按 key 自刷新的缓存，空闲自动淘汰
package storage
