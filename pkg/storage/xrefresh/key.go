package xrefresh

import (
	"encoding"
	"encoding/json"
	"fmt"
	"reflect"
)

// KeyFunc 把调用参数转换为稳定的字符串 key。
// 相等的参数必须得到相同的 key，且跨调用稳定。
type KeyFunc func(arg any) (string, error)

// DefaultKey 是默认的 key 推导：
//   - string 参数直接使用，前缀 "s:"
//   - 其余参数为 "j:" + 动态类型 + ":" + JSON（encoding/json 对 map 按 key 排序，结果稳定）
//
// 前缀保证 string "1" 与整数 1 不会落到同一个 entry，类型名保证 JSON 相同的不同类型互不干扰。
// JSON 会静默丢弃未导出字段，含未导出字段的结构体会让不同参数得到同一个 key，
// 因此这类参数返回 [ErrKey]；需要时请通过 [WithKeyFunc] 自行推导。
// 实现了 json.Marshaler 或 encoding.TextMarshaler 的类型（如 time.Time）按其自身编码处理。
func DefaultKey(arg any) (string, error) {
	if s, ok := arg.(string); ok {
		return "s:" + s, nil
	}
	if err := checkKeyValue(reflect.ValueOf(arg), make(map[visit]struct{})); err != nil {
		return "", err
	}
	data, err := json.Marshal(arg)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrKey, err)
	}
	return fmt.Sprintf("j:%T:%s", arg, data), nil
}

var (
	jsonMarshalerType = reflect.TypeFor[json.Marshaler]()
	textMarshalerType = reflect.TypeFor[encoding.TextMarshaler]()
)

// marshalsItself 报告 encoding/json 是否会对 v 调用它自己的编码方法。
// 指针接收者的方法只在 v 可寻址时生效，与 encoding/json 一致。
func marshalsItself(v reflect.Value) bool {
	t := v.Type()
	if t.Implements(jsonMarshalerType) || t.Implements(textMarshalerType) {
		return true
	}
	if !v.CanAddr() {
		return false
	}
	pt := reflect.PointerTo(t)
	return pt.Implements(jsonMarshalerType) || pt.Implements(textMarshalerType)
}

// visit 标识已检查过的引用值，用于跳过环。
type visit struct {
	ptr uintptr
	typ reflect.Type
	n   int
}

// enter 记录引用值 v，已记录过时返回 false。
func enter(v reflect.Value, seen map[visit]struct{}) bool {
	n := 0
	if v.Kind() == reflect.Slice {
		n = v.Len()
	}
	k := visit{ptr: v.Pointer(), typ: v.Type(), n: n}
	if _, ok := seen[k]; ok {
		return false
	}
	seen[k] = struct{}{}
	return true
}

// checkKeyValue 确认 v 的每个组成部分都会进入 JSON 编码。
func checkKeyValue(v reflect.Value, seen map[visit]struct{}) error {
	if !v.IsValid() {
		return nil
	}
	if v.Kind() != reflect.Interface && marshalsItself(v) {
		return nil
	}

	switch v.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			return nil
		}
		return checkKeyValue(v.Elem(), seen)
	case reflect.Pointer:
		if v.IsNil() || !enter(v, seen) {
			return nil
		}
		return checkKeyValue(v.Elem(), seen)
	case reflect.Struct:
		t := v.Type()
		for i := range t.NumField() {
			f := t.Field(i)
			if !f.IsExported() && !embeddedStruct(f) {
				return fmt.Errorf("%w: %s has unexported field %q", ErrKey, t, f.Name)
			}
			if err := checkKeyValue(v.Field(i), seen); err != nil {
				return err
			}
		}
	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && (v.IsNil() || !enter(v, seen)) {
			return nil
		}
		for i := range v.Len() {
			if err := checkKeyValue(v.Index(i), seen); err != nil {
				return err
			}
		}
	case reflect.Map:
		if v.IsNil() || !enter(v, seen) {
			return nil
		}
		iter := v.MapRange()
		for iter.Next() {
			if err := checkKeyValue(iter.Value(), seen); err != nil {
				return err
			}
		}
	}
	return nil
}

// embeddedStruct 报告 f 是否为匿名嵌入的结构体（或结构体指针）。
// encoding/json 会提升这类未导出嵌入字段中的导出字段。
func embeddedStruct(f reflect.StructField) bool {
	if !f.Anonymous {
		return false
	}
	t := f.Type
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct
}
